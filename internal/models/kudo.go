package models

import (
	"time"

	"github.com/google/uuid"
)

// Kudo is a peer-to-peer recognition event between two employees of the
// same tenant. Sending kudos to yourself is rejected.
type Kudo struct {
	KudoID       uuid.UUID
	TenantID     uuid.UUID
	SenderID     uuid.UUID // employee id
	ReceiverID   uuid.UUID // employee id
	CategoryCode string
	Message      string
	CreatedAt    time.Time

	// Display fields populated by joined queries.
	SenderName   string
	ReceiverName string
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// System roles.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Identity providers.
const (
	ProviderLocal     = "LOCAL"
	ProviderMicrosoft = "MICROSOFT"
)

// User is a login identity scoped to a tenant. Email is unique per tenant,
// not globally. A user owns zero or one Employee profile.
type User struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     string
	IsActive bool

	// PasswordHash is empty for federated accounts.
	PasswordHash string

	// Provider is LOCAL for password accounts; ProviderID holds the external
	// subject id (e.g. Entra object id) for federated accounts.
	Provider   string
	ProviderID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

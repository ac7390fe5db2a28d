package models

import (
	"time"

	"github.com/google/uuid"
)

// Document types.
const (
	DocumentTypeAvatar = "AVATAR"
	DocumentTypeOther  = "OTHER"
)

// Document is stored-object metadata attached to an employee (avatar,
// contract scan, ...). Path is the object key inside Container.
type Document struct {
	DocumentID uuid.UUID
	EmployeeID uuid.UUID
	TenantID   uuid.UUID
	Type       string
	Container  string
	Path       string
	FileName   string
	MimeType   string
	Size       int64
	CreatedAt  time.Time
}

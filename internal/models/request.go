package models

import (
	"time"

	"github.com/google/uuid"
)

// Request types.
const (
	RequestTypeVacation      = "VACATION"
	RequestTypePermit        = "PERMIT"
	RequestTypeSickLeave     = "SICK_LEAVE"
	RequestTypeHomeOffice    = "HOME_OFFICE"
	RequestTypeProfileUpdate = "PROFILE_UPDATE"
)

// Request statuses. PENDING transitions exactly once to APPROVED or
// REJECTED; both are terminal.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ValidRequestType reports whether t is one of the closed set of types.
func ValidRequestType(t string) bool {
	switch t {
	case RequestTypeVacation, RequestTypePermit, RequestTypeSickLeave,
		RequestTypeHomeOffice, RequestTypeProfileUpdate:
		return true
	}
	return false
}

// Request is an employee-submitted workflow item awaiting admin review.
// StartDate/EndDate apply to leave-style types; Data carries the proposed
// profile changes for PROFILE_UPDATE.
type Request struct {
	RequestID uuid.UUID
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Type      string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	Data      []byte // raw JSON payload, schema depends on Type
	CreatedAt time.Time
	UpdatedAt time.Time

	// Requester identity for admin listings, populated by joined queries.
	RequesterEmail      string
	RequesterFirstName  *string
	RequesterLastName   *string
	RequesterDocumentID *string
	RequesterPosition   *string
}

// ProfilePatch is a ProfileChanges payload with date fields parsed, ready to
// persist onto an Employee row.
type ProfilePatch struct {
	FirstName      *string
	MiddleName     *string
	LastName       *string
	SecondLastName *string
	BirthDate      *time.Time
	PersonalEmail  *string
	Phone          *string
	Address        *string
	EmergencyName  *string
	EmergencyPhone *string
}

// IsZero reports whether the patch carries no changes.
func (p *ProfilePatch) IsZero() bool {
	if p == nil {
		return true
	}
	return p.FirstName == nil && p.MiddleName == nil && p.LastName == nil &&
		p.SecondLastName == nil && p.BirthDate == nil && p.PersonalEmail == nil &&
		p.Phone == nil && p.Address == nil && p.EmergencyName == nil && p.EmergencyPhone == nil
}

// ProfileChanges is the typed shape of Request.Data for PROFILE_UPDATE.
// BirthDate arrives as a serialized string and must be parsed before it
// touches a typed date column.
type ProfileChanges struct {
	FirstName      *string `json:"firstName,omitempty"`
	MiddleName     *string `json:"middleName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	SecondLastName *string `json:"secondLastName,omitempty"`
	BirthDate      *string `json:"birthDate,omitempty"`
	PersonalEmail  *string `json:"personalEmail,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	EmergencyName  *string `json:"emergencyName,omitempty"`
	EmergencyPhone *string `json:"emergencyPhone,omitempty"`
}

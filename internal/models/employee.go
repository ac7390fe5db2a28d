package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employee statuses.
const (
	EmployeeStatusActive   = "ACTIVE"
	EmployeeStatusInactive = "INACTIVE"
)

// Employee is the HR profile owned by a User. DocumentID (national id) is
// unique per tenant. SupervisorID references another employee in the same
// tenant; self-supervision is rejected on assignment, cycles are not checked.
type Employee struct {
	EmployeeID uuid.UUID
	UserID     uuid.UUID
	TenantID   uuid.UUID

	FirstName      string
	MiddleName     *string
	LastName       string
	SecondLastName *string

	DocumentID *string
	BirthDate  *time.Time
	HireDate   time.Time
	Status     string

	PersonalEmail  *string
	Phone          *string
	Address        *string
	EmergencyName  *string
	EmergencyPhone *string

	DepartmentID *uuid.UUID
	PositionID   *uuid.UUID
	SupervisorID *uuid.UUID

	// Denormalized display names, populated by list queries only.
	DepartmentName *string
	PositionName   *string
	SupervisorName *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last" for display.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Initials returns the upper-cased first letters of first and last name.
func (e *Employee) Initials() string {
	initials := ""
	if e.FirstName != "" {
		initials += string([]rune(e.FirstName)[0])
	}
	if e.LastName != "" {
		initials += string([]rune(e.LastName)[0])
	}
	return strings.ToUpper(initials)
}

// LaborData holds an employee's contract details. One row per employee,
// maintained with an explicit update-or-create (defaults only apply on create).
type LaborData struct {
	LaborDataID    uuid.UUID
	EmployeeID     uuid.UUID
	TenantID       uuid.UUID
	ContractTypeID *uuid.UUID
	WorkShiftID    *uuid.UUID
	Salary         *string // stored as text to avoid float drift, parsed by reporting
	StartDate      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

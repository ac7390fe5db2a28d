package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already registered for tenant")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrDuplicateDocumentID = errors.New("document id already registered for tenant")
	ErrLaborDataNotFound   = errors.New("labor data not found")
	ErrAttendanceExists    = errors.New("attendance record already exists for day")
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrAlreadyCheckedOut   = errors.New("attendance record already checked out")
	ErrRequestNotFound     = errors.New("request not found")
	ErrRequestWrongTenant  = errors.New("request belongs to another tenant")
	ErrRequestProcessed    = errors.New("request already processed")
	ErrDocumentNotFound    = errors.New("document not found")
)

// TenantStore defines tenant lookup and provisioning operations.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// UserStore defines user storage operations. All lookups are scoped by
// tenant id; there is deliberately no lookup by user id alone.
type UserStore interface {
	// CreateWithEmployee atomically creates a user, its employee profile and
	// optional labor data. Partial creation must never be observable.
	CreateWithEmployee(ctx context.Context, user *models.User, employee *models.Employee, labor *models.LaborData) error

	Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)

	// LinkProvider attaches an external identity to an existing account.
	LinkProvider(ctx context.Context, tenantID, userID uuid.UUID, provider, providerID string) error
}

// EmployeeStore defines employee and labor-data storage operations.
type EmployeeStore interface {
	Get(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error)
	GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*models.Employee, error)

	// ListActive returns ACTIVE employees of the tenant ordered by last name,
	// with department/position/supervisor display names populated.
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error)

	// AssignAdministrative sets department, position and supervisor. Nil
	// clears the corresponding reference.
	AssignAdministrative(ctx context.Context, tenantID, employeeID uuid.UUID, departmentID, positionID, supervisorID *uuid.UUID) (*models.Employee, error)

	GetLaborData(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.LaborData, error)
	CreateLaborData(ctx context.Context, labor *models.LaborData) error
	UpdateLaborData(ctx context.Context, labor *models.LaborData) error
}

// AttendanceStore defines clock record storage. The (employee_id, date)
// uniqueness guard lives here, not in application code, so duplicate
// clock-ins racing each other resolve to exactly one success.
type AttendanceStore interface {
	Create(ctx context.Context, att *models.Attendance) error
	GetByDay(ctx context.Context, tenantID, employeeID uuid.UUID, day time.Time) (*models.Attendance, error)

	// SetCheckOut records the check-out time. Fails with
	// ErrAlreadyCheckedOut if the record already has one.
	SetCheckOut(ctx context.Context, tenantID, attendanceID uuid.UUID, at time.Time) error

	// ListRange returns records in [from, to] newest first.
	ListRange(ctx context.Context, tenantID, employeeID uuid.UUID, from, to time.Time) ([]*models.Attendance, error)

	// ListByDate returns all tenant records for one calendar day.
	ListByDate(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Attendance, error)
}

// RequestUpdate describes a single status transition, including the
// already-parsed profile patch to apply when approving a PROFILE_UPDATE.
type RequestUpdate struct {
	TenantID  uuid.UUID
	RequestID uuid.UUID
	NewStatus string

	// Reason overrides the stored reason when non-nil.
	Reason *string

	// Profile, when non-nil, is applied to the requester's employee row in
	// the same transaction as the status flip.
	Profile *models.ProfilePatch
}

// RequestFilters narrows admin listings.
type RequestFilters struct {
	Status string
	Type   string
}

// RequestStore defines workflow request storage operations.
type RequestStore interface {
	Create(ctx context.Context, req *models.Request) error

	// Get loads a request by id without tenant filtering; callers must
	// check tenant ownership explicitly.
	Get(ctx context.Context, requestID uuid.UUID) (*models.Request, error)

	// UpdateStatus atomically re-validates (exists, same tenant, still
	// PENDING), applies the optional profile patch and flips the status.
	// Either everything commits or nothing does.
	UpdateStatus(ctx context.Context, upd RequestUpdate) (*models.Request, error)

	ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error)

	// List returns tenant requests newest first with requester identity
	// populated for display.
	List(ctx context.Context, tenantID uuid.UUID, filters RequestFilters) ([]*models.Request, error)

	// ListApprovedVacations returns the user's APPROVED VACATION requests.
	ListApprovedVacations(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error)
}

// KudoStore defines recognition event storage operations.
type KudoStore interface {
	Create(ctx context.Context, kudo *models.Kudo) error

	// ListByEmployee returns events where the employee is sender or
	// receiver, newest first, with display names populated.
	ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Kudo, error)

	// ListByTenant returns every event of the tenant for aggregation.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Kudo, error)
}

// DocumentStore defines stored-object metadata operations.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, tenantID, documentID uuid.UUID) (*models.Document, error)
}

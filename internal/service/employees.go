package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// EmployeeService owns the directory, admin-side employee onboarding,
// administrative assignment and labor data.
type EmployeeService struct {
	users     store.UserStore
	employees store.EmployeeStore
	now       func() time.Time
}

// NewEmployeeService creates an employee service.
func NewEmployeeService(users store.UserStore, employees store.EmployeeStore) *EmployeeService {
	return &EmployeeService{
		users:     users,
		employees: employees,
		now:       time.Now,
	}
}

// List returns the tenant's ACTIVE employees ordered by last name.
func (s *EmployeeService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	return s.employees.ListActive(ctx, tenantID)
}

// Get loads one employee of the tenant.
func (s *EmployeeService) Get(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error) {
	emp, err := s.employees.Get(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return emp, nil
}

// CreateEmployeeInput is the admin-side onboarding payload. The account is
// created alongside the profile; labor data is optional.
type CreateEmployeeInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	DocumentID *string
	HireDate   *time.Time
	Phone      *string

	ContractTypeID *uuid.UUID
	WorkShiftID    *uuid.UUID
	Salary         *string
	StartDate      *time.Time
}

func (in *CreateEmployeeInput) validate() error {
	verr := &ValidationError{}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		verr.add("email", "email", "must be a valid email address")
	}
	if len(in.Password) < 8 {
		verr.add("password", "min_length", "must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.add("firstName", "required", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.add("lastName", "required", "is required")
	}
	return verr.errOrNil()
}

// Create onboards an employee: user account, profile and optional labor
// data in one atomic write.
func (s *EmployeeService) Create(ctx context.Context, tenantID uuid.UUID, in CreateEmployeeInput) (*models.Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hireDate := models.NormalizeDate(now)
	if in.HireDate != nil {
		hireDate = models.NormalizeDate(*in.HireDate)
	}

	user := &models.User{
		UserID:       uuid.New(),
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         models.RoleUser,
		IsActive:     true,
		PasswordHash: hash,
		Provider:     models.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	employee := &models.Employee{
		EmployeeID: uuid.New(),
		UserID:     user.UserID,
		TenantID:   tenantID,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		DocumentID: in.DocumentID,
		HireDate:   hireDate,
		Status:     models.EmployeeStatusActive,
		Phone:      in.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var labor *models.LaborData
	if in.ContractTypeID != nil || in.WorkShiftID != nil || in.Salary != nil || in.StartDate != nil {
		labor = &models.LaborData{
			LaborDataID:    uuid.New(),
			EmployeeID:     employee.EmployeeID,
			TenantID:       tenantID,
			ContractTypeID: in.ContractTypeID,
			WorkShiftID:    in.WorkShiftID,
			Salary:         in.Salary,
			StartDate:      in.StartDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	if err := s.users.CreateWithEmployee(ctx, user, employee, labor); err != nil {
		return nil, err
	}

	log.Info().
		Str("employee_id", employee.EmployeeID.String()).
		Str("tenant_id", tenantID.String()).
		Msg("Employee onboarded")

	return employee, nil
}

// AssignInput sets the administrative placement of an employee. Nil fields
// clear the corresponding reference.
type AssignInput struct {
	DepartmentID *uuid.UUID
	PositionID   *uuid.UUID
	SupervisorID *uuid.UUID
}

// Assign sets department, position and supervisor. The supervisor must be a
// different employee of the same tenant.
func (s *EmployeeService) Assign(ctx context.Context, tenantID, employeeID uuid.UUID, in AssignInput) (*models.Employee, error) {
	if in.SupervisorID != nil {
		if *in.SupervisorID == employeeID {
			return nil, ErrSelfSupervision
		}
		if _, err := s.employees.Get(ctx, tenantID, *in.SupervisorID); err != nil {
			if errors.Is(err, store.ErrEmployeeNotFound) {
				verr := &ValidationError{}
				verr.add("supervisorId", "exists", "supervisor not found in tenant")
				return nil, verr
			}
			return nil, err
		}
	}

	emp, err := s.employees.AssignAdministrative(ctx, tenantID, employeeID, in.DepartmentID, in.PositionID, in.SupervisorID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return emp, nil
}

// LaborDataInput is the contract-details payload for upsert.
type LaborDataInput struct {
	ContractTypeID *uuid.UUID
	WorkShiftID    *uuid.UUID
	Salary         *string
	StartDate      *time.Time
}

// GetLaborData loads the employee's contract details.
func (s *EmployeeService) GetLaborData(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.LaborData, error) {
	labor, err := s.employees.GetLaborData(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrLaborDataNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return labor, nil
}

// UpsertLaborData creates the employee's labor data row or updates the
// existing one. The start date defaults to the hire date only on create;
// updates never overwrite fields the caller did not send.
func (s *EmployeeService) UpsertLaborData(ctx context.Context, tenantID, employeeID uuid.UUID, in LaborDataInput) (*models.LaborData, error) {
	emp, err := s.employees.Get(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	existing, err := s.employees.GetLaborData(ctx, tenantID, employeeID)
	switch {
	case errors.Is(err, store.ErrLaborDataNotFound):
		startDate := in.StartDate
		if startDate == nil {
			hire := emp.HireDate
			startDate = &hire
		}
		labor := &models.LaborData{
			LaborDataID:    uuid.New(),
			EmployeeID:     employeeID,
			TenantID:       tenantID,
			ContractTypeID: in.ContractTypeID,
			WorkShiftID:    in.WorkShiftID,
			Salary:         in.Salary,
			StartDate:      startDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.employees.CreateLaborData(ctx, labor); err != nil {
			return nil, err
		}
		return labor, nil
	case err != nil:
		return nil, err
	}

	if in.ContractTypeID != nil {
		existing.ContractTypeID = in.ContractTypeID
	}
	if in.WorkShiftID != nil {
		existing.WorkShiftID = in.WorkShiftID
	}
	if in.Salary != nil {
		existing.Salary = in.Salary
	}
	if in.StartDate != nil {
		existing.StartDate = in.StartDate
	}
	existing.UpdatedAt = now

	if err := s.employees.UpdateLaborData(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

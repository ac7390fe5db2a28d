package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryEmployeeStore is an in-memory implementation of EmployeeStore for
// development and testing. MemoryUserStore and MemoryRequestStore share it
// so the cross-entity operations stay consistent.
type MemoryEmployeeStore struct {
	mu        sync.RWMutex
	employees map[uuid.UUID]*models.Employee
	labor     map[uuid.UUID]*models.LaborData // keyed by employee id
}

// NewMemoryEmployeeStore creates a new in-memory employee store.
func NewMemoryEmployeeStore() *MemoryEmployeeStore {
	return &MemoryEmployeeStore{
		employees: make(map[uuid.UUID]*models.Employee),
		labor:     make(map[uuid.UUID]*models.LaborData),
	}
}

// Get retrieves an employee by id within a tenant.
func (s *MemoryEmployeeStore) Get(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[employeeID]
	if !ok || emp.TenantID != tenantID {
		return nil, ErrEmployeeNotFound
	}
	c := *emp
	return &c, nil
}

// GetByUserID retrieves the employee profile owned by a user.
func (s *MemoryEmployeeStore) GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, emp := range s.employees {
		if emp.TenantID == tenantID && emp.UserID == userID {
			c := *emp
			return &c, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

// ListActive returns ACTIVE employees of the tenant ordered by last name.
func (s *MemoryEmployeeStore) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Employee
	for _, emp := range s.employees {
		if emp.TenantID == tenantID && emp.Status == models.EmployeeStatusActive {
			c := *emp
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

// AssignAdministrative sets department, position and supervisor references.
func (s *MemoryEmployeeStore) AssignAdministrative(ctx context.Context, tenantID, employeeID uuid.UUID, departmentID, positionID, supervisorID *uuid.UUID) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[employeeID]
	if !ok || emp.TenantID != tenantID {
		return nil, ErrEmployeeNotFound
	}
	emp.DepartmentID = departmentID
	emp.PositionID = positionID
	emp.SupervisorID = supervisorID

	c := *emp
	return &c, nil
}

// GetLaborData retrieves the labor data row for an employee.
func (s *MemoryEmployeeStore) GetLaborData(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.LaborData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labor, ok := s.labor[employeeID]
	if !ok || labor.TenantID != tenantID {
		return nil, ErrLaborDataNotFound
	}
	c := *labor
	return &c, nil
}

// CreateLaborData creates a labor data row.
func (s *MemoryEmployeeStore) CreateLaborData(ctx context.Context, labor *models.LaborData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *labor
	s.labor[labor.EmployeeID] = &c
	return nil
}

// UpdateLaborData updates an existing labor data row.
func (s *MemoryEmployeeStore) UpdateLaborData(ctx context.Context, labor *models.LaborData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.labor[labor.EmployeeID]
	if !ok || existing.TenantID != labor.TenantID {
		return ErrLaborDataNotFound
	}
	c := *labor
	s.labor[labor.EmployeeID] = &c
	return nil
}

// put stores an employee without validation; used by the sibling memory
// stores that create employees inside their combined operations.
func (s *MemoryEmployeeStore) put(emp *models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *emp
	s.employees[emp.EmployeeID] = &c
}

// applyPatch mutates the employee owned by userID with the given patch.
func (s *MemoryEmployeeStore) applyPatch(tenantID, userID uuid.UUID, patch *models.ProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, emp := range s.employees {
		if emp.TenantID != tenantID || emp.UserID != userID {
			continue
		}
		if patch.FirstName != nil {
			emp.FirstName = *patch.FirstName
		}
		if patch.MiddleName != nil {
			emp.MiddleName = patch.MiddleName
		}
		if patch.LastName != nil {
			emp.LastName = *patch.LastName
		}
		if patch.SecondLastName != nil {
			emp.SecondLastName = patch.SecondLastName
		}
		if patch.BirthDate != nil {
			emp.BirthDate = patch.BirthDate
		}
		if patch.PersonalEmail != nil {
			emp.PersonalEmail = patch.PersonalEmail
		}
		if patch.Phone != nil {
			emp.Phone = patch.Phone
		}
		if patch.Address != nil {
			emp.Address = patch.Address
		}
		if patch.EmergencyName != nil {
			emp.EmergencyName = patch.EmergencyName
		}
		if patch.EmergencyPhone != nil {
			emp.EmergencyPhone = patch.EmergencyPhone
		}
		return nil
	}
	return ErrEmployeeNotFound
}

// nameOf returns the employee's display name, used by the kudo store.
func (s *MemoryEmployeeStore) nameOf(employeeID uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if emp, ok := s.employees[employeeID]; ok {
		return emp.FullName()
	}
	return ""
}

// hasDocumentID reports whether a document id is already taken in a tenant.
func (s *MemoryEmployeeStore) hasDocumentID(tenantID uuid.UUID, documentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, emp := range s.employees {
		if emp.TenantID == tenantID && emp.DocumentID != nil && *emp.DocumentID == documentID {
			return true
		}
	}
	return false
}

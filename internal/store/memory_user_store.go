package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryUserStore is an in-memory implementation of UserStore for
// development and testing.
type MemoryUserStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*models.User
	employees *MemoryEmployeeStore
}

// NewMemoryUserStore creates a new in-memory user store. The employee store
// is shared so CreateWithEmployee lands the profile where the rest of the
// system will look for it.
func NewMemoryUserStore(employees *MemoryEmployeeStore) *MemoryUserStore {
	return &MemoryUserStore{
		users:     make(map[uuid.UUID]*models.User),
		employees: employees,
	}
}

// CreateWithEmployee creates a user with its employee profile and optional
// labor data in one step.
func (s *MemoryUserStore) CreateWithEmployee(ctx context.Context, user *models.User, employee *models.Employee, labor *models.LaborData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.TenantID == user.TenantID && strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	if employee.DocumentID != nil && s.employees.hasDocumentID(user.TenantID, *employee.DocumentID) {
		return ErrDuplicateDocumentID
	}

	c := *user
	s.users[user.UserID] = &c
	s.employees.put(employee)
	if labor != nil {
		l := *labor
		s.employees.mu.Lock()
		s.employees.labor[labor.EmployeeID] = &l
		s.employees.mu.Unlock()
	}
	return nil
}

// Get retrieves a user by id within a tenant.
func (s *MemoryUserStore) Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok || user.TenantID != tenantID {
		return nil, ErrUserNotFound
	}
	c := *user
	return &c, nil
}

// GetByEmail retrieves a user by email within a tenant.
func (s *MemoryUserStore) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.TenantID == tenantID && strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

// LinkProvider attaches an external identity to an existing account.
func (s *MemoryUserStore) LinkProvider(ctx context.Context, tenantID, userID uuid.UUID, provider, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.TenantID != tenantID {
		return ErrUserNotFound
	}
	user.Provider = provider
	user.ProviderID = &providerID
	return nil
}

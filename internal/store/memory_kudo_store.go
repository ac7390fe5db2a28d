package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryKudoStore is an in-memory implementation of KudoStore for
// development and testing.
type MemoryKudoStore struct {
	mu        sync.RWMutex
	kudos     []*models.Kudo
	employees *MemoryEmployeeStore
}

// NewMemoryKudoStore creates a new in-memory kudo store.
func NewMemoryKudoStore(employees *MemoryEmployeeStore) *MemoryKudoStore {
	return &MemoryKudoStore{employees: employees}
}

// Create persists a recognition event.
func (s *MemoryKudoStore) Create(ctx context.Context, kudo *models.Kudo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *kudo
	s.kudos = append(s.kudos, &c)
	return nil
}

// ListByEmployee returns events where the employee is sender or receiver.
func (s *MemoryKudoStore) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Kudo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Kudo
	for _, kudo := range s.kudos {
		if kudo.TenantID != tenantID {
			continue
		}
		if kudo.SenderID != employeeID && kudo.ReceiverID != employeeID {
			continue
		}
		c := *kudo
		c.SenderName = s.employees.nameOf(kudo.SenderID)
		c.ReceiverName = s.employees.nameOf(kudo.ReceiverID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByTenant returns every event of the tenant.
func (s *MemoryKudoStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Kudo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Kudo
	for _, kudo := range s.kudos {
		if kudo.TenantID == tenantID {
			c := *kudo
			c.SenderName = s.employees.nameOf(kudo.SenderID)
			c.ReceiverName = s.employees.nameOf(kudo.ReceiverID)
			out = append(out, &c)
		}
	}
	return out, nil
}

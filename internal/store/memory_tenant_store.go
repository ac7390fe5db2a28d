package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryTenantStore is an in-memory implementation of TenantStore for
// development and testing.
type MemoryTenantStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*models.Tenant
	bySlug  map[string]uuid.UUID
}

// NewMemoryTenantStore creates a new in-memory tenant store.
func NewMemoryTenantStore() *MemoryTenantStore {
	return &MemoryTenantStore{
		tenants: make(map[uuid.UUID]*models.Tenant),
		bySlug:  make(map[string]uuid.UUID),
	}
}

// Create creates a new tenant.
func (s *MemoryTenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *tenant
	s.tenants[tenant.TenantID] = &c
	s.bySlug[tenant.Slug] = tenant.TenantID
	return nil
}

// Get retrieves a tenant by id.
func (s *MemoryTenantStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return nil, ErrTenantNotFound
	}
	c := *tenant
	return &c, nil
}

// GetBySlug retrieves a tenant by its unique slug.
func (s *MemoryTenantStore) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrTenantNotFound
	}
	c := *s.tenants[id]
	return &c, nil
}

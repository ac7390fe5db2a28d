package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryRequestStore is an in-memory implementation of RequestStore for
// development and testing. UpdateStatus runs under a single lock so the
// status flip and profile mutation are observed together, matching the
// transaction of the postgres store.
type MemoryRequestStore struct {
	mu        sync.RWMutex
	requests  map[uuid.UUID]*models.Request
	employees *MemoryEmployeeStore
}

// NewMemoryRequestStore creates a new in-memory request store.
func NewMemoryRequestStore(employees *MemoryEmployeeStore) *MemoryRequestStore {
	return &MemoryRequestStore{
		requests:  make(map[uuid.UUID]*models.Request),
		employees: employees,
	}
}

// Create creates a new request.
func (s *MemoryRequestStore) Create(ctx context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *req
	s.requests[req.RequestID] = &c
	return nil
}

// Get loads a request by id without tenant filtering.
func (s *MemoryRequestStore) Get(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[requestID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	c := *req
	return &c, nil
}

// UpdateStatus atomically validates and applies a status transition.
func (s *MemoryRequestStore) UpdateStatus(ctx context.Context, upd RequestUpdate) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[upd.RequestID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if req.TenantID != upd.TenantID {
		return nil, ErrRequestWrongTenant
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrRequestProcessed
	}

	if upd.Profile != nil && !upd.Profile.IsZero() {
		if err := s.employees.applyPatch(req.TenantID, req.UserID, upd.Profile); err != nil {
			return nil, err
		}
	}

	req.Status = upd.NewStatus
	if upd.Reason != nil {
		req.Reason = upd.Reason
	}

	c := *req
	return &c, nil
}

// ListByUser returns the user's requests newest first.
func (s *MemoryRequestStore) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Request
	for _, req := range s.requests {
		if req.TenantID == tenantID && req.UserID == userID {
			c := *req
			out = append(out, &c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// List returns tenant requests newest first, optionally filtered.
func (s *MemoryRequestStore) List(ctx context.Context, tenantID uuid.UUID, filters RequestFilters) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Request
	for _, req := range s.requests {
		if req.TenantID != tenantID {
			continue
		}
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		if filters.Type != "" && req.Type != filters.Type {
			continue
		}
		c := *req
		out = append(out, &c)
	}
	sortNewestFirst(out)
	return out, nil
}

// ListApprovedVacations returns the user's APPROVED VACATION requests.
func (s *MemoryRequestStore) ListApprovedVacations(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Request
	for _, req := range s.requests {
		if req.TenantID == tenantID && req.UserID == userID &&
			req.Type == models.RequestTypeVacation && req.Status == models.RequestStatusApproved {
			c := *req
			out = append(out, &c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(reqs []*models.Request) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
}

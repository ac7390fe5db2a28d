package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryDocumentStore is an in-memory implementation of DocumentStore for
// development and testing.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*models.Document
}

// NewMemoryDocumentStore creates a new in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[uuid.UUID]*models.Document)}
}

// Create persists document metadata.
func (s *MemoryDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *doc
	s.docs[doc.DocumentID] = &c
	return nil
}

// ListByEmployee returns an employee's documents newest first.
func (s *MemoryDocumentStore) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Document
	for _, doc := range s.docs {
		if doc.TenantID == tenantID && doc.EmployeeID == employeeID {
			c := *doc
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes document metadata and returns it so the caller can delete
// the underlying object.
func (s *MemoryDocumentStore) Delete(ctx context.Context, tenantID, documentID uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok || doc.TenantID != tenantID {
		return nil, ErrDocumentNotFound
	}
	delete(s.docs, documentID)
	c := *doc
	return &c, nil
}

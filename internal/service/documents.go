package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/storage"
	"github.com/emplix/emplix/internal/store"
)

// signedURLTTL bounds how long a document download link stays valid.
const signedURLTTL = 15 * time.Minute

// DocumentService stores employee files and hands out expiring download
// links. Objects live in one container per tenant.
type DocumentService struct {
	documents store.DocumentStore
	employees store.EmployeeStore
	objects   storage.Storage
	now       func() time.Time
}

// NewDocumentService creates a document service.
func NewDocumentService(documents store.DocumentStore, employees store.EmployeeStore, objects storage.Storage) *DocumentService {
	return &DocumentService{
		documents: documents,
		employees: employees,
		objects:   objects,
		now:       time.Now,
	}
}

// container is the per-tenant object namespace.
func container(tenantID uuid.UUID) string {
	return "tenant-" + tenantID.String()
}

// Upload stores the file and records its metadata against the employee.
func (s *DocumentService) Upload(ctx context.Context, tenantID, employeeID uuid.UUID, docType, fileName, mimeType string, size int64, content io.Reader) (*models.Document, error) {
	verr := &ValidationError{}
	if docType != models.DocumentTypeAvatar && docType != models.DocumentTypeOther {
		verr.add("type", "enum", "must be AVATAR or OTHER")
	}
	if strings.TrimSpace(fileName) == "" {
		verr.add("fileName", "required", "is required")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	if _, err := s.employees.Get(ctx, tenantID, employeeID); err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	key, err := s.objects.Upload(ctx, container(tenantID), fileName, content)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		DocumentID: uuid.New(),
		EmployeeID: employeeID,
		TenantID:   tenantID,
		Type:       docType,
		Container:  container(tenantID),
		Path:       key,
		FileName:   fileName,
		MimeType:   mimeType,
		Size:       size,
		CreatedAt:  s.now(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		// The metadata row is the source of truth; orphan the object
		// rather than leave a dangling row.
		if derr := s.objects.Delete(ctx, doc.Container, doc.Path); derr != nil {
			log.Warn().Err(derr).Str("key", doc.Path).Msg("Failed to clean up orphaned object")
		}
		return nil, err
	}

	return doc, nil
}

// DocumentLink is document metadata plus a fresh expiring download URL.
type DocumentLink struct {
	Document *models.Document
	URL      string
}

// List returns the employee's documents with signed download links.
func (s *DocumentService) List(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*DocumentLink, error) {
	docs, err := s.documents.ListByEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}

	links := make([]*DocumentLink, 0, len(docs))
	for _, doc := range docs {
		u, err := s.objects.SignedURL(doc.Container, doc.Path, signedURLTTL)
		if err != nil {
			return nil, err
		}
		links = append(links, &DocumentLink{Document: doc, URL: u})
	}
	return links, nil
}

// Delete removes the metadata row and the stored object.
func (s *DocumentService) Delete(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.documents.Delete(ctx, tenantID, documentID)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.objects.Delete(ctx, doc.Container, doc.Path); err != nil {
		log.Warn().Err(err).Str("key", doc.Path).Msg("Failed to delete stored object")
	}
	return nil
}

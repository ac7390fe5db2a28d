package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// DocumentStore implements store.DocumentStore using PostgreSQL.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore creates a new PostgreSQL-backed document store.
// It shares the connection pool with other stores.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// Create persists document metadata.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			document_id, employee_id, tenant_id, type,
			container, path, file_name, mime_type, size, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		doc.DocumentID,
		doc.EmployeeID,
		doc.TenantID,
		doc.Type,
		doc.Container,
		doc.Path,
		doc.FileName,
		doc.MimeType,
		doc.Size,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	log.Debug().
		Str("document_id", doc.DocumentID.String()).
		Str("path", doc.Path).
		Msg("Created document")

	return nil
}

// ListByEmployee returns an employee's documents newest first.
func (s *DocumentStore) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT document_id, employee_id, tenant_id, type,
			container, path, file_name, mime_type, size, created_at
		FROM documents
		WHERE tenant_id = $1 AND employee_id = $2
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var d models.Document
		err := rows.Scan(
			&d.DocumentID,
			&d.EmployeeID,
			&d.TenantID,
			&d.Type,
			&d.Container,
			&d.Path,
			&d.FileName,
			&d.MimeType,
			&d.Size,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes document metadata and returns it so the caller can delete
// the underlying object.
func (s *DocumentStore) Delete(ctx context.Context, tenantID, documentID uuid.UUID) (*models.Document, error) {
	query := `
		DELETE FROM documents
		WHERE tenant_id = $1 AND document_id = $2
		RETURNING document_id, employee_id, tenant_id, type,
			container, path, file_name, mime_type, size, created_at
	`

	var d models.Document
	err := s.pool.QueryRow(ctx, query, tenantID, documentID).Scan(
		&d.DocumentID,
		&d.EmployeeID,
		&d.TenantID,
		&d.Type,
		&d.Container,
		&d.Path,
		&d.FileName,
		&d.MimeType,
		&d.Size,
		&d.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}

	return &d, nil
}

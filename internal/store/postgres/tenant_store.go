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

// TenantStore implements store.TenantStore using PostgreSQL.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a new PostgreSQL-backed tenant store.
// It shares the connection pool with other stores.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

// Create creates a new tenant in the database.
func (s *TenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (tenant_id, slug, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		tenant.TenantID,
		tenant.Slug,
		tenant.Name,
		tenant.Status,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant slug already taken: %w", err)
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	log.Debug().
		Str("tenant_id", tenant.TenantID.String()).
		Str("slug", tenant.Slug).
		Msg("Created tenant")

	return nil
}

// Get retrieves a tenant by ID.
func (s *TenantStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT tenant_id, slug, name, status, created_at, updated_at
		FROM tenants
		WHERE tenant_id = $1
	`

	var t models.Tenant
	err := s.pool.QueryRow(ctx, query, tenantID).Scan(
		&t.TenantID,
		&t.Slug,
		&t.Name,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

// GetBySlug retrieves a tenant by its unique slug.
func (s *TenantStore) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `
		SELECT tenant_id, slug, name, status, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`

	var t models.Tenant
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&t.TenantID,
		&t.Slug,
		&t.Name,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by slug: %w", err)
	}

	return &t, nil
}

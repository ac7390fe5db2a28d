package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// RequestStore implements store.RequestStore using PostgreSQL.
type RequestStore struct {
	pool *pgxpool.Pool
}

// NewRequestStore creates a new PostgreSQL-backed request store.
// It shares the connection pool with other stores.
func NewRequestStore(pool *pgxpool.Pool) *RequestStore {
	return &RequestStore{pool: pool}
}

const requestColumns = `
	r.request_id, r.user_id, r.tenant_id, r.type, r.status,
	r.start_date, r.end_date, r.reason, r.data, r.created_at, r.updated_at
`

func scanRequest(row pgx.Row) (*models.Request, error) {
	var r models.Request
	err := row.Scan(
		&r.RequestID,
		&r.UserID,
		&r.TenantID,
		&r.Type,
		&r.Status,
		&r.StartDate,
		&r.EndDate,
		&r.Reason,
		&r.Data,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create creates a new request.
func (s *RequestStore) Create(ctx context.Context, req *models.Request) error {
	query := `
		INSERT INTO requests (
			request_id, user_id, tenant_id, type, status,
			start_date, end_date, reason, data, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	data := req.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	_, err := s.pool.Exec(ctx, query,
		req.RequestID,
		req.UserID,
		req.TenantID,
		req.Type,
		req.Status,
		req.StartDate,
		req.EndDate,
		req.Reason,
		data,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().
		Str("request_id", req.RequestID.String()).
		Str("type", req.Type).
		Msg("Created request")

	return nil
}

// Get loads a request by id without tenant filtering; callers must check
// tenant ownership explicitly.
func (s *RequestStore) Get(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests r WHERE r.request_id = $1`

	req, err := scanRequest(s.pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// UpdateStatus applies a status transition inside a single transaction.
// The row is locked first so two admins processing the same request cannot
// both pass the PENDING check; the loser sees ErrRequestProcessed.
func (s *RequestStore) UpdateStatus(ctx context.Context, upd store.RequestUpdate) (*models.Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	lockQuery := `SELECT ` + requestColumns + ` FROM requests r WHERE r.request_id = $1 FOR UPDATE`

	req, err := scanRequest(tx.QueryRow(ctx, lockQuery, upd.RequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}

	if req.TenantID != upd.TenantID {
		return nil, store.ErrRequestWrongTenant
	}
	if req.Status != models.RequestStatusPending {
		return nil, store.ErrRequestProcessed
	}

	if upd.Profile != nil && !upd.Profile.IsZero() {
		if err := applyProfilePatch(ctx, tx, req.TenantID, req.UserID, upd.Profile); err != nil {
			return nil, err
		}
	}

	reason := req.Reason
	if upd.Reason != nil {
		reason = upd.Reason
	}

	updateQuery := `
		UPDATE requests r SET status = $2, reason = $3, updated_at = $4
		WHERE r.request_id = $1
		RETURNING ` + requestColumns

	updated, err := scanRequest(tx.QueryRow(ctx, updateQuery, upd.RequestID, upd.NewStatus, reason, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	log.Info().
		Str("request_id", upd.RequestID.String()).
		Str("status", upd.NewStatus).
		Msg("Processed request")

	return updated, nil
}

// applyProfilePatch mutates the requester's employee row inside the open
// transaction. COALESCE keeps columns untouched when the patch field is nil.
func applyProfilePatch(ctx context.Context, tx pgx.Tx, tenantID, userID uuid.UUID, patch *models.ProfilePatch) error {
	query := `
		UPDATE employees SET
			first_name = COALESCE($3, first_name),
			middle_name = COALESCE($4, middle_name),
			last_name = COALESCE($5, last_name),
			second_last_name = COALESCE($6, second_last_name),
			birth_date = COALESCE($7, birth_date),
			personal_email = COALESCE($8, personal_email),
			phone = COALESCE($9, phone),
			address = COALESCE($10, address),
			emergency_name = COALESCE($11, emergency_name),
			emergency_phone = COALESCE($12, emergency_phone),
			updated_at = $13
		WHERE tenant_id = $1 AND user_id = $2
	`

	result, err := tx.Exec(ctx, query,
		tenantID,
		userID,
		patch.FirstName,
		patch.MiddleName,
		patch.LastName,
		patch.SecondLastName,
		patch.BirthDate,
		patch.PersonalEmail,
		patch.Phone,
		patch.Address,
		patch.EmergencyName,
		patch.EmergencyPhone,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to apply profile changes: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrEmployeeNotFound
	}

	return nil
}

// ListByUser returns the user's requests newest first.
func (s *RequestStore) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		WHERE r.tenant_id = $1 AND r.user_id = $2
		ORDER BY r.created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// List returns tenant requests newest first with requester identity
// populated for the admin view.
func (s *RequestStore) List(ctx context.Context, tenantID uuid.UUID, filters store.RequestFilters) ([]*models.Request, error) {
	query := `
		SELECT ` + requestColumns + `,
			u.email, e.first_name, e.last_name, e.document_id, p.name
		FROM requests r
		JOIN users u ON u.user_id = r.user_id
		LEFT JOIN employees e ON e.user_id = r.user_id AND e.tenant_id = r.tenant_id
		LEFT JOIN positions p ON p.position_id = e.position_id
		WHERE r.tenant_id = $1
	`

	args := []any{tenantID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		query += fmt.Sprintf(" AND r.type = $%d", len(args))
	}

	query += " ORDER BY r.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		var r models.Request
		err := rows.Scan(
			&r.RequestID,
			&r.UserID,
			&r.TenantID,
			&r.Type,
			&r.Status,
			&r.StartDate,
			&r.EndDate,
			&r.Reason,
			&r.Data,
			&r.CreatedAt,
			&r.UpdatedAt,
			&r.RequesterEmail,
			&r.RequesterFirstName,
			&r.RequesterLastName,
			&r.RequesterDocumentID,
			&r.RequesterPosition,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// ListApprovedVacations returns the user's APPROVED VACATION requests for
// the accrual calculation.
func (s *RequestStore) ListApprovedVacations(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		WHERE r.tenant_id = $1 AND r.user_id = $2 AND r.type = $3 AND r.status = $4
		ORDER BY r.created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, userID,
		models.RequestTypeVacation, models.RequestStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved vacations: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// KudoStore implements store.KudoStore using PostgreSQL.
type KudoStore struct {
	pool *pgxpool.Pool
}

// NewKudoStore creates a new PostgreSQL-backed kudo store.
// It shares the connection pool with other stores.
func NewKudoStore(pool *pgxpool.Pool) *KudoStore {
	return &KudoStore{pool: pool}
}

// Create persists a recognition event.
func (s *KudoStore) Create(ctx context.Context, kudo *models.Kudo) error {
	query := `
		INSERT INTO kudos (kudo_id, tenant_id, sender_id, receiver_id, category_code, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		kudo.KudoID,
		kudo.TenantID,
		kudo.SenderID,
		kudo.ReceiverID,
		kudo.CategoryCode,
		kudo.Message,
		kudo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create kudo: %w", err)
	}

	log.Debug().
		Str("kudo_id", kudo.KudoID.String()).
		Str("category", kudo.CategoryCode).
		Msg("Created kudo")

	return nil
}

// ListByEmployee returns events where the employee is sender or receiver,
// newest first, with display names populated.
func (s *KudoStore) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Kudo, error) {
	query := `
		SELECT k.kudo_id, k.tenant_id, k.sender_id, k.receiver_id,
			k.category_code, k.message, k.created_at,
			snd.first_name || ' ' || snd.last_name,
			rcv.first_name || ' ' || rcv.last_name
		FROM kudos k
		JOIN employees snd ON snd.employee_id = k.sender_id
		JOIN employees rcv ON rcv.employee_id = k.receiver_id
		WHERE k.tenant_id = $1 AND (k.sender_id = $2 OR k.receiver_id = $2)
		ORDER BY k.created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kudos: %w", err)
	}
	defer rows.Close()

	var kudos []*models.Kudo
	for rows.Next() {
		var k models.Kudo
		err := rows.Scan(
			&k.KudoID,
			&k.TenantID,
			&k.SenderID,
			&k.ReceiverID,
			&k.CategoryCode,
			&k.Message,
			&k.CreatedAt,
			&k.SenderName,
			&k.ReceiverName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kudo: %w", err)
		}
		kudos = append(kudos, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kudos: %w", err)
	}

	return kudos, nil
}

// ListByTenant returns every event of the tenant for aggregation.
func (s *KudoStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Kudo, error) {
	query := `
		SELECT k.kudo_id, k.tenant_id, k.sender_id, k.receiver_id,
			k.category_code, k.message, k.created_at,
			snd.first_name || ' ' || snd.last_name,
			rcv.first_name || ' ' || rcv.last_name
		FROM kudos k
		JOIN employees snd ON snd.employee_id = k.sender_id
		JOIN employees rcv ON rcv.employee_id = k.receiver_id
		WHERE k.tenant_id = $1
	`

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant kudos: %w", err)
	}
	defer rows.Close()

	var kudos []*models.Kudo
	for rows.Next() {
		var k models.Kudo
		err := rows.Scan(
			&k.KudoID,
			&k.TenantID,
			&k.SenderID,
			&k.ReceiverID,
			&k.CategoryCode,
			&k.Message,
			&k.CreatedAt,
			&k.SenderName,
			&k.ReceiverName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kudo: %w", err)
		}
		kudos = append(kudos, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kudos: %w", err)
	}

	return kudos, nil
}

var _ store.KudoStore = (*KudoStore)(nil)

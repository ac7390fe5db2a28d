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

// AttendanceStore implements store.AttendanceStore using PostgreSQL.
// The attendance_employee_date_key unique index is the guard against
// concurrent clock-ins; the store surfaces it as ErrAttendanceExists.
type AttendanceStore struct {
	pool *pgxpool.Pool
}

// NewAttendanceStore creates a new PostgreSQL-backed attendance store.
// It shares the connection pool with other stores.
func NewAttendanceStore(pool *pgxpool.Pool) *AttendanceStore {
	return &AttendanceStore{pool: pool}
}

const attendanceColumns = `attendance_id, employee_id, tenant_id, date, check_in, check_out, created_at`

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(
		&a.AttendanceID,
		&a.EmployeeID,
		&a.TenantID,
		&a.Date,
		&a.CheckIn,
		&a.CheckOut,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a clock record. The date is stored as a calendar day.
func (s *AttendanceStore) Create(ctx context.Context, att *models.Attendance) error {
	query := `
		INSERT INTO attendance (attendance_id, employee_id, tenant_id, date, check_in, check_out, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		att.AttendanceID,
		att.EmployeeID,
		att.TenantID,
		models.NormalizeDate(att.Date),
		att.CheckIn,
		att.CheckOut,
		att.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAttendanceExists
		}
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	log.Debug().
		Str("employee_id", att.EmployeeID.String()).
		Time("date", att.Date).
		Msg("Created attendance record")

	return nil
}

// GetByDay retrieves the record for one employee and calendar day.
func (s *AttendanceStore) GetByDay(ctx context.Context, tenantID, employeeID uuid.UUID, day time.Time) (*models.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE tenant_id = $1 AND employee_id = $2 AND date = $3
	`

	att, err := scanAttendance(s.pool.QueryRow(ctx, query, tenantID, employeeID, models.NormalizeDate(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return att, nil
}

// SetCheckOut records the check-out time. The check_out IS NULL condition
// makes the update single-shot even under concurrent requests.
func (s *AttendanceStore) SetCheckOut(ctx context.Context, tenantID, attendanceID uuid.UUID, at time.Time) error {
	query := `
		UPDATE attendance
		SET check_out = $3
		WHERE tenant_id = $1 AND attendance_id = $2 AND check_out IS NULL
	`

	result, err := s.pool.Exec(ctx, query, tenantID, attendanceID, at)
	if err != nil {
		return fmt.Errorf("failed to set check-out: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing record from one already closed.
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM attendance WHERE tenant_id = $1 AND attendance_id = $2)`,
			tenantID, attendanceID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check attendance record: %w", err)
		}
		if exists {
			return store.ErrAlreadyCheckedOut
		}
		return store.ErrAttendanceNotFound
	}

	return nil
}

// ListRange returns records in [from, to] newest first.
func (s *AttendanceStore) ListRange(ctx context.Context, tenantID, employeeID uuid.UUID, from, to time.Time) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE tenant_id = $1 AND employee_id = $2 AND date >= $3 AND date <= $4
		ORDER BY date DESC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, employeeID,
		models.NormalizeDate(from), models.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

// ListByDate returns all tenant records for one calendar day.
func (s *AttendanceStore) ListByDate(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE tenant_id = $1 AND date = $2
	`

	rows, err := s.pool.Query(ctx, query, tenantID, models.NormalizeDate(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

func collectAttendance(rows pgx.Rows) ([]*models.Attendance, error) {
	var records []*models.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}

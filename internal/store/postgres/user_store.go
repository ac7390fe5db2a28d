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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// CreateWithEmployee creates a user, its employee profile and optional labor
// data inside a single transaction so partial creation is never observable.
func (s *UserStore) CreateWithEmployee(ctx context.Context, user *models.User, employee *models.Employee, labor *models.LaborData) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	userQuery := `
		INSERT INTO users (
			user_id, tenant_id, email, role, is_active,
			password_hash, provider, provider_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var passwordHash any
	if user.PasswordHash != "" {
		passwordHash = user.PasswordHash
	}

	_, err = tx.Exec(ctx, userQuery,
		user.UserID,
		user.TenantID,
		user.Email,
		user.Role,
		user.IsActive,
		passwordHash,
		user.Provider,
		user.ProviderID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if uniqueConstraint(err) == "users_tenant_email_key" {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	employeeQuery := `
		INSERT INTO employees (
			employee_id, user_id, tenant_id,
			first_name, middle_name, last_name, second_last_name,
			document_id, birth_date, hire_date, status,
			personal_email, phone, address, emergency_name, emergency_phone,
			department_id, position_id, supervisor_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err = tx.Exec(ctx, employeeQuery,
		employee.EmployeeID,
		employee.UserID,
		employee.TenantID,
		employee.FirstName,
		employee.MiddleName,
		employee.LastName,
		employee.SecondLastName,
		employee.DocumentID,
		employee.BirthDate,
		employee.HireDate,
		employee.Status,
		employee.PersonalEmail,
		employee.Phone,
		employee.Address,
		employee.EmergencyName,
		employee.EmergencyPhone,
		employee.DepartmentID,
		employee.PositionID,
		employee.SupervisorID,
		employee.CreatedAt,
		employee.UpdatedAt,
	)
	if err != nil {
		if uniqueConstraint(err) == "employees_tenant_document_key" {
			return store.ErrDuplicateDocumentID
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	if labor != nil {
		laborQuery := `
			INSERT INTO labor_data (
				labor_data_id, employee_id, tenant_id,
				contract_type_id, work_shift_id, salary, start_date,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err = tx.Exec(ctx, laborQuery,
			labor.LaborDataID,
			labor.EmployeeID,
			labor.TenantID,
			labor.ContractTypeID,
			labor.WorkShiftID,
			labor.Salary,
			labor.StartDate,
			labor.CreatedAt,
			labor.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create labor data: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", user.TenantID.String()).
		Msg("Created user with employee profile")

	return nil
}

const userColumns = `
	user_id, tenant_id, email, role, is_active,
	COALESCE(password_hash, ''), provider, provider_id, created_at, updated_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID,
		&u.TenantID,
		&u.Email,
		&u.Role,
		&u.IsActive,
		&u.PasswordHash,
		&u.Provider,
		&u.ProviderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get retrieves a user by id, scoped by tenant. Both filters are applied so
// a stale token for another tenant can never read this tenant's identity.
func (s *UserStore) Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND user_id = $2`

	user, err := scanUser(s.pool.QueryRow(ctx, query, tenantID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email within a tenant.
func (s *UserStore) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND lower(email) = lower($2)`

	user, err := scanUser(s.pool.QueryRow(ctx, query, tenantID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// LinkProvider attaches an external identity to an existing account.
func (s *UserStore) LinkProvider(ctx context.Context, tenantID, userID uuid.UUID, provider, providerID string) error {
	query := `
		UPDATE users
		SET provider = $3, provider_id = $4, updated_at = $5
		WHERE tenant_id = $1 AND user_id = $2
	`

	result, err := s.pool.Exec(ctx, query, tenantID, userID, provider, providerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link provider: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("provider", provider).
		Msg("Linked external identity")

	return nil
}

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

// EmployeeStore implements store.EmployeeStore using PostgreSQL.
type EmployeeStore struct {
	pool *pgxpool.Pool
}

// NewEmployeeStore creates a new PostgreSQL-backed employee store.
// It shares the connection pool with other stores.
func NewEmployeeStore(pool *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{pool: pool}
}

const employeeColumns = `
	e.employee_id, e.user_id, e.tenant_id,
	e.first_name, e.middle_name, e.last_name, e.second_last_name,
	e.document_id, e.birth_date, e.hire_date, e.status,
	e.personal_email, e.phone, e.address, e.emergency_name, e.emergency_phone,
	e.department_id, e.position_id, e.supervisor_id, e.created_at, e.updated_at
`

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	err := row.Scan(
		&e.EmployeeID,
		&e.UserID,
		&e.TenantID,
		&e.FirstName,
		&e.MiddleName,
		&e.LastName,
		&e.SecondLastName,
		&e.DocumentID,
		&e.BirthDate,
		&e.HireDate,
		&e.Status,
		&e.PersonalEmail,
		&e.Phone,
		&e.Address,
		&e.EmergencyName,
		&e.EmergencyPhone,
		&e.DepartmentID,
		&e.PositionID,
		&e.SupervisorID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get retrieves an employee by id within a tenant.
func (s *EmployeeStore) Get(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.tenant_id = $1 AND e.employee_id = $2`

	emp, err := scanEmployee(s.pool.QueryRow(ctx, query, tenantID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// GetByUserID retrieves the employee profile owned by a user.
func (s *EmployeeStore) GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.tenant_id = $1 AND e.user_id = $2`

	emp, err := scanEmployee(s.pool.QueryRow(ctx, query, tenantID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by user id: %w", err)
	}

	return emp, nil
}

// ListActive returns ACTIVE employees of the tenant ordered by last name,
// with department, position and supervisor display names populated.
func (s *EmployeeStore) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `,
			d.name, p.name,
			CASE WHEN sup.employee_id IS NULL THEN NULL
			     ELSE sup.first_name || ' ' || sup.last_name END
		FROM employees e
		LEFT JOIN departments d ON d.department_id = e.department_id
		LEFT JOIN positions p ON p.position_id = e.position_id
		LEFT JOIN employees sup ON sup.employee_id = e.supervisor_id
		WHERE e.tenant_id = $1 AND e.status = $2
		ORDER BY e.last_name ASC
	`

	rows, err := s.pool.Query(ctx, query, tenantID, models.EmployeeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		err := rows.Scan(
			&e.EmployeeID,
			&e.UserID,
			&e.TenantID,
			&e.FirstName,
			&e.MiddleName,
			&e.LastName,
			&e.SecondLastName,
			&e.DocumentID,
			&e.BirthDate,
			&e.HireDate,
			&e.Status,
			&e.PersonalEmail,
			&e.Phone,
			&e.Address,
			&e.EmergencyName,
			&e.EmergencyPhone,
			&e.DepartmentID,
			&e.PositionID,
			&e.SupervisorID,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.DepartmentName,
			&e.PositionName,
			&e.SupervisorName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// AssignAdministrative sets department, position and supervisor references.
// Nil clears the corresponding reference.
func (s *EmployeeStore) AssignAdministrative(ctx context.Context, tenantID, employeeID uuid.UUID, departmentID, positionID, supervisorID *uuid.UUID) (*models.Employee, error) {
	query := `
		UPDATE employees e SET
			department_id = $3,
			position_id = $4,
			supervisor_id = $5,
			updated_at = $6
		WHERE e.tenant_id = $1 AND e.employee_id = $2
		RETURNING ` + employeeColumns

	emp, err := scanEmployee(s.pool.QueryRow(ctx, query,
		tenantID, employeeID, departmentID, positionID, supervisorID, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to assign administrative data: %w", err)
	}

	log.Debug().
		Str("employee_id", employeeID.String()).
		Msg("Assigned administrative data")

	return emp, nil
}

// GetLaborData retrieves the labor data row for an employee.
func (s *EmployeeStore) GetLaborData(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.LaborData, error) {
	query := `
		SELECT labor_data_id, employee_id, tenant_id,
			contract_type_id, work_shift_id, salary, start_date,
			created_at, updated_at
		FROM labor_data
		WHERE tenant_id = $1 AND employee_id = $2
	`

	var l models.LaborData
	err := s.pool.QueryRow(ctx, query, tenantID, employeeID).Scan(
		&l.LaborDataID,
		&l.EmployeeID,
		&l.TenantID,
		&l.ContractTypeID,
		&l.WorkShiftID,
		&l.Salary,
		&l.StartDate,
		&l.CreatedAt,
		&l.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrLaborDataNotFound
		}
		return nil, fmt.Errorf("failed to get labor data: %w", err)
	}

	return &l, nil
}

// CreateLaborData creates a labor data row for an employee.
func (s *EmployeeStore) CreateLaborData(ctx context.Context, labor *models.LaborData) error {
	query := `
		INSERT INTO labor_data (
			labor_data_id, employee_id, tenant_id,
			contract_type_id, work_shift_id, salary, start_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
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

	return nil
}

// UpdateLaborData updates an existing labor data row.
func (s *EmployeeStore) UpdateLaborData(ctx context.Context, labor *models.LaborData) error {
	labor.UpdatedAt = time.Now()

	query := `
		UPDATE labor_data SET
			contract_type_id = $3,
			work_shift_id = $4,
			salary = $5,
			start_date = $6,
			updated_at = $7
		WHERE tenant_id = $1 AND employee_id = $2
	`

	result, err := s.pool.Exec(ctx, query,
		labor.TenantID,
		labor.EmployeeID,
		labor.ContractTypeID,
		labor.WorkShiftID,
		labor.Salary,
		labor.StartDate,
		labor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update labor data: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrLaborDataNotFound
	}

	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/store"
)

func TestEmployeeCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewEmployeeService(f.users, f.employees)

	docID := "30123456"
	salary := "1500000.00"
	emp, err := svc.Create(ctx, f.tenantID, CreateEmployeeInput{
		Email:      "bruno@example.com",
		Password:   "s3cret-enough",
		FirstName:  "Bruno",
		LastName:   "Mora",
		DocumentID: &docID,
		Salary:     &salary,
	})
	require.NoError(t, err)

	// Labor data was created in the same operation.
	labor, err := svc.GetLaborData(ctx, f.tenantID, emp.EmployeeID)
	require.NoError(t, err)
	require.NotNil(t, labor.Salary)
	require.Equal(t, salary, *labor.Salary)

	t.Run("duplicate document id", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, CreateEmployeeInput{
			Email:      "clara@example.com",
			Password:   "s3cret-enough",
			FirstName:  "Clara",
			LastName:   "Nunez",
			DocumentID: &docID,
		})
		require.ErrorIs(t, err, store.ErrDuplicateDocumentID)
	})
}

func TestEmployeeAssign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, anaEmp := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	_, brunoEmp := f.seedEmployee(t, "Bruno", "Mora", date(2023, 2, 1))
	svc := NewEmployeeService(f.users, f.employees)

	t.Run("assign supervisor", func(t *testing.T) {
		emp, err := svc.Assign(ctx, f.tenantID, anaEmp, AssignInput{SupervisorID: &brunoEmp})
		require.NoError(t, err)
		require.NotNil(t, emp.SupervisorID)
		require.Equal(t, brunoEmp, *emp.SupervisorID)
	})

	t.Run("self supervision rejected", func(t *testing.T) {
		_, err := svc.Assign(ctx, f.tenantID, anaEmp, AssignInput{SupervisorID: &anaEmp})
		require.ErrorIs(t, err, ErrSelfSupervision)
	})

	t.Run("unknown supervisor rejected", func(t *testing.T) {
		ghost := uuid.New()
		_, err := svc.Assign(ctx, f.tenantID, anaEmp, AssignInput{SupervisorID: &ghost})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("nil clears references", func(t *testing.T) {
		emp, err := svc.Assign(ctx, f.tenantID, anaEmp, AssignInput{})
		require.NoError(t, err)
		require.Nil(t, emp.SupervisorID)
		require.Nil(t, emp.DepartmentID)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Assign(ctx, f.tenantID, uuid.New(), AssignInput{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpsertLaborData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, employeeID := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewEmployeeService(f.users, f.employees)

	t.Run("create defaults start date to hire date", func(t *testing.T) {
		salary := "1200000.00"
		labor, err := svc.UpsertLaborData(ctx, f.tenantID, employeeID, LaborDataInput{Salary: &salary})
		require.NoError(t, err)
		require.NotNil(t, labor.StartDate)
		require.Equal(t, date(2023, 1, 15), *labor.StartDate)
	})

	t.Run("update touches only sent fields", func(t *testing.T) {
		shift := uuid.New()
		labor, err := svc.UpsertLaborData(ctx, f.tenantID, employeeID, LaborDataInput{WorkShiftID: &shift})
		require.NoError(t, err)
		require.NotNil(t, labor.WorkShiftID)
		require.Equal(t, shift, *labor.WorkShiftID)
		// Salary from the create step survives.
		require.NotNil(t, labor.Salary)
		require.Equal(t, "1200000.00", *labor.Salary)
		// Start date was not re-defaulted.
		require.Equal(t, date(2023, 1, 15), *labor.StartDate)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.UpsertLaborData(ctx, f.tenantID, uuid.New(), LaborDataInput{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

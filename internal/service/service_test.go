package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// fixture wires the shared memory stores the way the server command does.
type fixture struct {
	tenantID  uuid.UUID
	tenants   *store.MemoryTenantStore
	users     *store.MemoryUserStore
	employees *store.MemoryEmployeeStore
	requests  *store.MemoryRequestStore
	kudos     *store.MemoryKudoStore
	records   *store.MemoryAttendanceStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	employees := store.NewMemoryEmployeeStore()
	f := &fixture{
		tenantID:  uuid.New(),
		tenants:   store.NewMemoryTenantStore(),
		users:     store.NewMemoryUserStore(employees),
		employees: employees,
		requests:  store.NewMemoryRequestStore(employees),
		kudos:     store.NewMemoryKudoStore(employees),
		records:   store.NewMemoryAttendanceStore(),
	}

	require.NoError(t, f.tenants.Create(context.Background(), &models.Tenant{
		TenantID: f.tenantID,
		Slug:     "conexa",
		Name:     "Conexa",
		Status:   models.TenantStatusActive,
	}))

	return f
}

// seedEmployee creates a user with an employee profile and returns both ids.
func (f *fixture) seedEmployee(t *testing.T, firstName, lastName string, hireDate time.Time) (userID, employeeID uuid.UUID) {
	t.Helper()

	user := &models.User{
		UserID:   uuid.New(),
		TenantID: f.tenantID,
		Email:    firstName + "." + lastName + "@example.com",
		Role:     models.RoleUser,
		IsActive: true,
		Provider: models.ProviderLocal,
	}
	employee := &models.Employee{
		EmployeeID: uuid.New(),
		UserID:     user.UserID,
		TenantID:   f.tenantID,
		FirstName:  firstName,
		LastName:   lastName,
		HireDate:   hireDate,
		Status:     models.EmployeeStatusActive,
	}
	require.NoError(t, f.users.CreateWithEmployee(context.Background(), user, employee, nil))
	return user.UserID, employee.EmployeeID
}

// at builds a clock function frozen at the given instant.
func at(instant time.Time) func() time.Time {
	return func() time.Time { return instant }
}

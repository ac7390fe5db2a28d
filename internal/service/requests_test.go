package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

func TestCreateRequestValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)

	start := date(2024, 6, 10)
	end := date(2024, 6, 14)

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{Type: "LOTTERY"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("leave without dates", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{Type: models.RequestTypeVacation})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
			Type: models.RequestTypeVacation, StartDate: &end, EndDate: &start,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("profile update with unknown field", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
			Type: models.RequestTypeProfileUpdate,
			Data: json.RawMessage(`{"salary":"999999"}`),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("profile update with bad birth date", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
			Type: models.RequestTypeProfileUpdate,
			Data: json.RawMessage(`{"birthDate":"31/12/1990"}`),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("valid vacation", func(t *testing.T) {
		req, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
			Type: models.RequestTypeVacation, StartDate: &start, EndDate: &end,
		})
		require.NoError(t, err)
		require.Equal(t, models.RequestStatusPending, req.Status)
	})
}

func TestUpdateStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)

	start := date(2024, 6, 10)
	end := date(2024, 6, 14)
	req, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeVacation, StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	t.Run("invalid target status", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, f.tenantID, req.RequestID, "PENDING", nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("cross tenant", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, uuid.New(), req.RequestID, models.RequestStatusApproved, nil)
		require.ErrorIs(t, err, ErrCrossTenantAccess)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, f.tenantID, uuid.New(), models.RequestStatusApproved, nil)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("approve then approve again", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, f.tenantID, req.RequestID, models.RequestStatusApproved, nil)
		require.NoError(t, err)
		require.Equal(t, models.RequestStatusApproved, updated.Status)

		_, err = svc.UpdateStatus(ctx, f.tenantID, req.RequestID, models.RequestStatusRejected, nil)
		require.ErrorIs(t, err, ErrAlreadyProcessed)
	})
}

func TestUpdateStatusReasonOverride(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)

	start := date(2024, 6, 10)
	original := "family trip"
	req, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeVacation, StartDate: &start, EndDate: &start, Reason: &original,
	})
	require.NoError(t, err)

	t.Run("nil keeps original reason", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, f.tenantID, req.RequestID, models.RequestStatusRejected, nil)
		require.NoError(t, err)
		require.NotNil(t, updated.Reason)
		require.Equal(t, original, *updated.Reason)
	})

	t.Run("override replaces reason", func(t *testing.T) {
		other, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
			Type: models.RequestTypeVacation, StartDate: &start, EndDate: &start, Reason: &original,
		})
		require.NoError(t, err)

		override := "overlaps team offsite"
		updated, err := svc.UpdateStatus(ctx, f.tenantID, other.RequestID, models.RequestStatusRejected, &override)
		require.NoError(t, err)
		require.Equal(t, override, *updated.Reason)
	})
}

func TestApproveProfileUpdateAppliesChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, employeeID := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)

	req, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeProfileUpdate,
		Data: json.RawMessage(`{"phone":"+54 11 5555-1234","birthDate":"1990-12-31","address":"Av. Siempre Viva 742"}`),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.tenantID, req.RequestID, models.RequestStatusApproved, nil)
	require.NoError(t, err)

	emp, err := f.employees.Get(ctx, f.tenantID, employeeID)
	require.NoError(t, err)
	require.NotNil(t, emp.Phone)
	require.Equal(t, "+54 11 5555-1234", *emp.Phone)
	require.NotNil(t, emp.Address)
	require.Equal(t, "Av. Siempre Viva 742", *emp.Address)
	require.NotNil(t, emp.BirthDate)
	require.Equal(t, date(1990, 12, 31), models.NormalizeDate(*emp.BirthDate))
	// Untouched fields stay as they were.
	require.Equal(t, "Ana", emp.FirstName)
}

func TestRejectProfileUpdateLeavesProfileAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, employeeID := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)

	req, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeProfileUpdate,
		Data: json.RawMessage(`{"firstName":"Anna"}`),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.tenantID, req.RequestID, models.RequestStatusRejected, nil)
	require.NoError(t, err)

	emp, err := f.employees.Get(ctx, f.tenantID, employeeID)
	require.NoError(t, err)
	require.Equal(t, "Ana", emp.FirstName)
}

func TestListAllFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)
	svc.now = at(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	start := date(2024, 6, 10)
	_, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeVacation, StartDate: &start, EndDate: &start,
	})
	require.NoError(t, err)
	svc.now = at(time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC))
	_, err = svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeHomeOffice, StartDate: &start, EndDate: &start,
	})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx, f.tenantID, store.RequestFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	require.Equal(t, models.RequestTypeHomeOffice, all[0].Type)

	vacations, err := svc.ListAll(ctx, f.tenantID, store.RequestFilters{Type: models.RequestTypeVacation})
	require.NoError(t, err)
	require.Len(t, vacations, 1)

	_, err = svc.ListAll(ctx, f.tenantID, store.RequestFilters{Status: "MAYBE"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBalanceUsesApprovedVacationsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	svc := NewRequestService(f.requests, f.employees)
	svc.now = at(date(2023, 7, 15))

	start := date(2023, 3, 6)
	end := date(2023, 3, 10)

	approved, err := svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeVacation, StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, f.tenantID, approved.RequestID, models.RequestStatusApproved, nil)
	require.NoError(t, err)

	// A pending vacation must not count.
	_, err = svc.Create(ctx, f.tenantID, userID, CreateRequestInput{
		Type: models.RequestTypeVacation, StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.Equal(t, 6, balance.MonthsWorked)
	require.Equal(t, "15", balance.DaysEarned.String())
	require.Equal(t, 5, balance.DaysUsed)
	require.Equal(t, "10", balance.Balance.String())
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsWorked(t *testing.T) {
	tests := []struct {
		name  string
		hire  time.Time
		today time.Time
		want  int
	}{
		{name: "exact anniversary day", hire: date(2023, 1, 15), today: date(2023, 7, 15), want: 6},
		{name: "day before anniversary", hire: date(2023, 1, 15), today: date(2023, 7, 14), want: 5},
		{name: "day after anniversary", hire: date(2023, 1, 15), today: date(2023, 7, 16), want: 6},
		{name: "same month", hire: date(2023, 1, 15), today: date(2023, 1, 20), want: 0},
		{name: "hired in the future", hire: date(2024, 6, 1), today: date(2024, 1, 1), want: 0},
		{name: "year boundary", hire: date(2022, 11, 10), today: date(2023, 2, 10), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MonthsWorked(tt.hire, tt.today))
		})
	}
}

func TestDaysEarned(t *testing.T) {
	require.Equal(t, "15", DaysEarned(6).String())
	require.Equal(t, "2.5", DaysEarned(1).String())
	require.Equal(t, "0", DaysEarned(0).String())
}

func TestRequestDays(t *testing.T) {
	start := date(2023, 3, 6)
	end := date(2023, 3, 10)

	t.Run("inclusive of both endpoints", func(t *testing.T) {
		req := &models.Request{StartDate: &start, EndDate: &end}
		require.Equal(t, 5, RequestDays(req))
	})

	t.Run("single day", func(t *testing.T) {
		req := &models.Request{StartDate: &start, EndDate: &start}
		require.Equal(t, 1, RequestDays(req))
	})

	t.Run("reversed dates", func(t *testing.T) {
		req := &models.Request{StartDate: &end, EndDate: &start}
		require.Equal(t, 5, RequestDays(req))
	})

	t.Run("missing dates", func(t *testing.T) {
		require.Equal(t, 0, RequestDays(&models.Request{StartDate: &start}))
		require.Equal(t, 0, RequestDays(&models.Request{}))
	})
}

func TestComputeVacationBalance(t *testing.T) {
	// Hired 2023-01-15, asking on 2023-07-15: six full months at 2.5
	// days/month, with one approved five-day vacation already taken.
	start := date(2023, 3, 6)
	end := date(2023, 3, 10)
	approved := []*models.Request{{
		Type:      models.RequestTypeVacation,
		Status:    models.RequestStatusApproved,
		StartDate: &start,
		EndDate:   &end,
	}}

	balance := ComputeVacationBalance(date(2023, 1, 15), date(2023, 7, 15), approved)
	require.Equal(t, 6, balance.MonthsWorked)
	require.Equal(t, "15", balance.DaysEarned.String())
	require.Equal(t, 5, balance.DaysUsed)
	require.Equal(t, "10", balance.Balance.String())
}

func TestComputeVacationBalanceNoHistory(t *testing.T) {
	balance := ComputeVacationBalance(date(2023, 1, 15), date(2023, 7, 15), nil)
	require.Equal(t, 0, balance.DaysUsed)
	require.Equal(t, "15", balance.Balance.String())
}

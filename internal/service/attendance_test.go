package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
)

func TestPunctuality(t *testing.T) {
	tests := []struct {
		name    string
		checkIn time.Time
		want    string
	}{
		{name: "early", checkIn: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), want: models.PunctualityOnTime},
		{name: "boundary is on time", checkIn: time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC), want: models.PunctualityOnTime},
		{name: "boundary with seconds is on time", checkIn: time.Date(2024, 3, 4, 9, 15, 59, 0, time.UTC), want: models.PunctualityOnTime},
		{name: "one minute past", checkIn: time.Date(2024, 3, 4, 9, 16, 0, 0, time.UTC), want: models.PunctualityLate},
		{name: "afternoon", checkIn: time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC), want: models.PunctualityLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Punctuality(tt.checkIn))
		})
	}
}

func TestWorkedHours(t *testing.T) {
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	out := in.Add(8*time.Hour + 20*time.Minute)

	att := &models.Attendance{CheckIn: &in, CheckOut: &out}
	require.Equal(t, "8.33", WorkedHours(att).String())

	require.True(t, WorkedHours(&models.Attendance{CheckIn: &in}).IsZero())
	require.True(t, WorkedHours(nil).IsZero())
}

func TestClockCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))

	svc := NewAttendanceService(f.records, f.employees)
	morning := time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)
	svc.now = at(morning)

	status, err := svc.TodayStatus(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceNotStarted, status.Status)

	att, err := svc.ClockIn(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.NotNil(t, att.CheckIn)
	require.Equal(t, morning, *att.CheckIn)

	status, err = svc.TodayStatus(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceWorking, status.Status)

	evening := morning.Add(8 * time.Hour)
	svc.now = at(evening)

	att, err = svc.ClockOut(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.NotNil(t, att.CheckOut)
	require.Equal(t, evening, *att.CheckOut)

	status, err = svc.TodayStatus(ctx, f.tenantID, userID)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceCompleted, status.Status)
}

func TestClockInTwiceSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))

	svc := NewAttendanceService(f.records, f.employees)
	svc.now = at(time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC))

	_, err := svc.ClockIn(ctx, f.tenantID, userID)
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, f.tenantID, userID)
	require.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))

	svc := NewAttendanceService(f.records, f.employees)
	svc.now = at(time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC))

	_, err := svc.ClockOut(ctx, f.tenantID, userID)
	require.ErrorIs(t, err, ErrNoClockIn)
}

func TestClockOutTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))

	svc := NewAttendanceService(f.records, f.employees)
	svc.now = at(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))

	_, err := svc.ClockIn(ctx, f.tenantID, userID)
	require.NoError(t, err)

	svc.now = at(time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC))
	_, err = svc.ClockOut(ctx, f.tenantID, userID)
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, f.tenantID, userID)
	require.ErrorIs(t, err, ErrAlreadyClockedOut)
}

func TestClockInUnknownEmployee(t *testing.T) {
	f := newFixture(t)
	svc := NewAttendanceService(f.records, f.employees)

	_, err := svc.ClockIn(context.Background(), f.tenantID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDailyReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	punctualUser, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	lateUser, _ := f.seedEmployee(t, "Bruno", "Mora", date(2023, 2, 1))
	f.seedEmployee(t, "Clara", "Nunez", date(2023, 3, 1)) // never clocks in

	svc := NewAttendanceService(f.records, f.employees)

	svc.now = at(time.Date(2024, 3, 4, 9, 10, 0, 0, time.UTC))
	_, err := svc.ClockIn(ctx, f.tenantID, punctualUser)
	require.NoError(t, err)

	svc.now = at(time.Date(2024, 3, 4, 9, 40, 0, 0, time.UTC))
	_, err = svc.ClockIn(ctx, f.tenantID, lateUser)
	require.NoError(t, err)

	entries, err := svc.DailyReport(ctx, f.tenantID, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]string{}
	for _, e := range entries {
		byName[e.Name] = e.Status
	}
	require.Equal(t, models.PunctualityOnTime, byName["Ana Lopez"])
	require.Equal(t, models.PunctualityLate, byName["Bruno Mora"])
	require.Equal(t, models.PunctualityAbsent, byName["Clara Nunez"])
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID, _ := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))

	svc := NewAttendanceService(f.records, f.employees)

	svc.now = at(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	_, err := svc.ClockIn(ctx, f.tenantID, userID)
	require.NoError(t, err)
	svc.now = at(time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC))
	_, err = svc.ClockOut(ctx, f.tenantID, userID)
	require.NoError(t, err)

	svc.now = at(time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC))
	_, err = svc.ClockIn(ctx, f.tenantID, userID)
	require.NoError(t, err)

	entries, err := svc.History(ctx, f.tenantID, userID, date(2024, 3, 1), date(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, models.PunctualityLate, entries[0].Status)
	require.True(t, entries[0].WorkedHours.IsZero())
	require.Equal(t, models.PunctualityOnTime, entries[1].Status)
	require.Equal(t, "8.5", entries[1].WorkedHours.String())

	t.Run("reversed range rejected", func(t *testing.T) {
		_, err := svc.History(ctx, f.tenantID, userID, date(2024, 3, 31), date(2024, 3, 1))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

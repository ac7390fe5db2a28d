package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// lateAfterMinutes is the punctuality cutoff as minutes since midnight.
// A check-in at the boundary itself still counts as on time.
const lateAfterMinutes = 9*60 + 15

// AttendanceService runs the daily clock cycle and the reports derived
// from it.
type AttendanceService struct {
	attendance store.AttendanceStore
	employees  store.EmployeeStore
	now        func() time.Time
}

// NewAttendanceService creates an attendance service.
func NewAttendanceService(attendance store.AttendanceStore, employees store.EmployeeStore) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		employees:  employees,
		now:        time.Now,
	}
}

// DayStatus is today's clock state for one employee.
type DayStatus struct {
	Status     string
	Attendance *models.Attendance
}

// Punctuality classifies a check-in time against the cutoff.
func Punctuality(checkIn time.Time) string {
	if checkIn.Hour()*60+checkIn.Minute() > lateAfterMinutes {
		return models.PunctualityLate
	}
	return models.PunctualityOnTime
}

// WorkedHours returns the hours between check-in and check-out rounded to
// two decimals, or zero when the day is still open.
func WorkedHours(att *models.Attendance) decimal.Decimal {
	if att == nil || att.CheckIn == nil || att.CheckOut == nil {
		return decimal.Zero
	}
	hours := att.CheckOut.Sub(*att.CheckIn).Hours()
	return decimal.NewFromFloat(hours).Round(2)
}

// TodayStatus reports the caller's clock state for the current day.
func (s *AttendanceService) TodayStatus(ctx context.Context, tenantID, userID uuid.UUID) (*DayStatus, error) {
	emp, err := s.employee(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	att, err := s.attendance.GetByDay(ctx, tenantID, emp.EmployeeID, models.NormalizeDate(s.now()))
	if err != nil {
		if errors.Is(err, store.ErrAttendanceNotFound) {
			return &DayStatus{Status: models.AttendanceNotStarted}, nil
		}
		return nil, err
	}

	return &DayStatus{Status: att.Status(), Attendance: att}, nil
}

// ClockIn records the day's check-in. Exactly one record per employee per
// day can exist; the storage layer's uniqueness guard decides races.
func (s *AttendanceService) ClockIn(ctx context.Context, tenantID, userID uuid.UUID) (*models.Attendance, error) {
	emp, err := s.employee(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	att := &models.Attendance{
		AttendanceID: uuid.New(),
		EmployeeID:   emp.EmployeeID,
		TenantID:     tenantID,
		Date:         models.NormalizeDate(now),
		CheckIn:      &now,
		CreatedAt:    now,
	}

	if err := s.attendance.Create(ctx, att); err != nil {
		if errors.Is(err, store.ErrAttendanceExists) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}

	log.Info().
		Str("employee_id", emp.EmployeeID.String()).
		Str("punctuality", Punctuality(now)).
		Msg("Clock-in recorded")

	return att, nil
}

// ClockOut closes the day's record. Requires an open check-in.
func (s *AttendanceService) ClockOut(ctx context.Context, tenantID, userID uuid.UUID) (*models.Attendance, error) {
	emp, err := s.employee(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	att, err := s.attendance.GetByDay(ctx, tenantID, emp.EmployeeID, models.NormalizeDate(now))
	if err != nil {
		if errors.Is(err, store.ErrAttendanceNotFound) {
			return nil, ErrNoClockIn
		}
		return nil, err
	}
	if att.CheckOut != nil {
		return nil, ErrAlreadyClockedOut
	}

	if err := s.attendance.SetCheckOut(ctx, tenantID, att.AttendanceID, now); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyCheckedOut):
			return nil, ErrAlreadyClockedOut
		case errors.Is(err, store.ErrAttendanceNotFound):
			return nil, ErrNoClockIn
		}
		return nil, err
	}

	att.CheckOut = &now
	return att, nil
}

// ReportEntry is one employee's row in the daily report. Employees without
// a record for the day appear as AUSENTE.
type ReportEntry struct {
	EmployeeID uuid.UUID
	Name       string
	Initials   string
	Department string
	Position   string
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     string
}

// DailyReport returns one row per ACTIVE employee for the given day.
func (s *AttendanceService) DailyReport(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*ReportEntry, error) {
	employees, err := s.employees.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := s.attendance.ListByDate(ctx, tenantID, models.NormalizeDate(day))
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[uuid.UUID]*models.Attendance, len(records))
	for _, att := range records {
		byEmployee[att.EmployeeID] = att
	}

	entries := make([]*ReportEntry, 0, len(employees))
	for _, emp := range employees {
		entry := &ReportEntry{
			EmployeeID: emp.EmployeeID,
			Name:       emp.FullName(),
			Initials:   emp.Initials(),
			Department: "General",
			Position:   "S/C",
			Status:     models.PunctualityAbsent,
		}
		if emp.DepartmentName != nil {
			entry.Department = *emp.DepartmentName
		}
		if emp.PositionName != nil {
			entry.Position = *emp.PositionName
		}
		if att, ok := byEmployee[emp.EmployeeID]; ok {
			entry.CheckIn = att.CheckIn
			entry.CheckOut = att.CheckOut
			if att.CheckIn != nil {
				entry.Status = Punctuality(*att.CheckIn)
			} else {
				entry.Status = models.PunctualityNoCheck
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// HistoryEntry is one past day in the caller's own history.
type HistoryEntry struct {
	Date        time.Time
	CheckIn     *time.Time
	CheckOut    *time.Time
	Status      string
	WorkedHours decimal.Decimal
}

// History returns the caller's records in [from, to] newest first.
func (s *AttendanceService) History(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]*HistoryEntry, error) {
	if to.Before(from) {
		verr := &ValidationError{}
		verr.add("to", "range", "must not be before from")
		return nil, verr
	}

	emp, err := s.employee(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.attendance.ListRange(ctx, tenantID, emp.EmployeeID, models.NormalizeDate(from), models.NormalizeDate(to))
	if err != nil {
		return nil, err
	}

	entries := make([]*HistoryEntry, 0, len(records))
	for _, att := range records {
		entry := &HistoryEntry{
			Date:        att.Date,
			CheckIn:     att.CheckIn,
			CheckOut:    att.CheckOut,
			Status:      models.PunctualityNoCheck,
			WorkedHours: WorkedHours(att),
		}
		if att.CheckIn != nil {
			entry.Status = Punctuality(*att.CheckIn)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *AttendanceService) employee(ctx context.Context, tenantID, userID uuid.UUID) (*models.Employee, error) {
	emp, err := s.employees.GetByUserID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return emp, nil
}

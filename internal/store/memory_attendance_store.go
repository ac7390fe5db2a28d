package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
)

// MemoryAttendanceStore is an in-memory implementation of AttendanceStore
// for development and testing. It enforces the one-record-per-day rule
// under a single lock, mirroring the unique index of the postgres store.
type MemoryAttendanceStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.Attendance
	byDay   map[dayKey]uuid.UUID
}

type dayKey struct {
	employeeID uuid.UUID
	day        string // yyyy-mm-dd
}

// NewMemoryAttendanceStore creates a new in-memory attendance store.
func NewMemoryAttendanceStore() *MemoryAttendanceStore {
	return &MemoryAttendanceStore{
		records: make(map[uuid.UUID]*models.Attendance),
		byDay:   make(map[dayKey]uuid.UUID),
	}
}

func keyFor(employeeID uuid.UUID, day time.Time) dayKey {
	return dayKey{employeeID: employeeID, day: models.NormalizeDate(day).Format("2006-01-02")}
}

// Create inserts a record, failing with ErrAttendanceExists if the employee
// already has one for that day.
func (s *MemoryAttendanceStore) Create(ctx context.Context, att *models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(att.EmployeeID, att.Date)
	if _, exists := s.byDay[key]; exists {
		return ErrAttendanceExists
	}

	c := *att
	c.Date = models.NormalizeDate(att.Date)
	s.records[att.AttendanceID] = &c
	s.byDay[key] = att.AttendanceID
	return nil
}

// GetByDay retrieves the record for one employee and calendar day.
func (s *MemoryAttendanceStore) GetByDay(ctx context.Context, tenantID, employeeID uuid.UUID, day time.Time) (*models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byDay[keyFor(employeeID, day)]
	if !ok {
		return nil, ErrAttendanceNotFound
	}
	att := s.records[id]
	if att.TenantID != tenantID {
		return nil, ErrAttendanceNotFound
	}
	c := *att
	return &c, nil
}

// SetCheckOut records the check-out time once.
func (s *MemoryAttendanceStore) SetCheckOut(ctx context.Context, tenantID, attendanceID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	att, ok := s.records[attendanceID]
	if !ok || att.TenantID != tenantID {
		return ErrAttendanceNotFound
	}
	if att.CheckOut != nil {
		return ErrAlreadyCheckedOut
	}
	t := at
	att.CheckOut = &t
	return nil
}

// ListRange returns records in [from, to] newest first.
func (s *MemoryAttendanceStore) ListRange(ctx context.Context, tenantID, employeeID uuid.UUID, from, to time.Time) ([]*models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromDay := models.NormalizeDate(from)
	toDay := models.NormalizeDate(to)

	var out []*models.Attendance
	for _, att := range s.records {
		if att.TenantID != tenantID || att.EmployeeID != employeeID {
			continue
		}
		if att.Date.Before(fromDay) || att.Date.After(toDay) {
			continue
		}
		c := *att
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ListByDate returns all tenant records for one calendar day.
func (s *MemoryAttendanceStore) ListByDate(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := models.NormalizeDate(day)
	var out []*models.Attendance
	for _, att := range s.records {
		if att.TenantID == tenantID && att.Date.Equal(target) {
			c := *att
			out = append(out, &c)
		}
	}
	return out, nil
}

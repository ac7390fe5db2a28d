package httpapi

import (
	"net/http"
	"time"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
)

// AttendanceHandler exposes the clock cycle and attendance reports.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler creates the attendance handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type attendanceResponse struct {
	AttendanceID string     `json:"attendanceId"`
	Date         string     `json:"date"`
	CheckIn      *time.Time `json:"checkIn,omitempty"`
	CheckOut     *time.Time `json:"checkOut,omitempty"`
	Status       string     `json:"status"`
}

func newAttendanceResponse(att *models.Attendance) attendanceResponse {
	return attendanceResponse{
		AttendanceID: att.AttendanceID.String(),
		Date:         att.Date.Format("2006-01-02"),
		CheckIn:      att.CheckIn,
		CheckOut:     att.CheckOut,
		Status:       att.Status(),
	}
}

func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	status, err := h.attendance.TodayStatus(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := struct {
		Status     string              `json:"status"`
		Attendance *attendanceResponse `json:"attendance,omitempty"`
	}{Status: status.Status}
	if status.Attendance != nil {
		att := newAttendanceResponse(status.Attendance)
		res.Attendance = &att
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *AttendanceHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	att, err := h.attendance.ClockIn(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAttendanceResponse(att))
}

func (h *AttendanceHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	att, err := h.attendance.ClockOut(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAttendanceResponse(att))
}

type historyEntryResponse struct {
	Date        string     `json:"date"`
	CheckIn     *time.Time `json:"checkIn,omitempty"`
	CheckOut    *time.Time `json:"checkOut,omitempty"`
	Status      string     `json:"status"`
	WorkedHours float64    `json:"workedHours"`
}

// History returns the caller's records. Query params from/to are
// YYYY-MM-DD; the range defaults to the last 30 days.
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	verr := &service.ValidationError{}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "from", Rule: "date", Message: "must be YYYY-MM-DD"})
		} else {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "to", Rule: "date", Message: "must be YYYY-MM-DD"})
		} else {
			to = parsed
		}
	}
	if len(verr.Fields) > 0 {
		writeError(w, r, verr)
		return
	}

	entries, err := h.attendance.History(r.Context(), claims.TenantID, claims.UserID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, historyEntryResponse{
			Date:        e.Date.Format("2006-01-02"),
			CheckIn:     e.CheckIn,
			CheckOut:    e.CheckOut,
			Status:      e.Status,
			WorkedHours: e.WorkedHours.InexactFloat64(),
		})
	}

	writeJSON(w, http.StatusOK, res)
}

type reportEntryResponse struct {
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Initials   string     `json:"initials"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Status     string     `json:"status"`
}

// Report returns the per-employee daily report. The date query param is
// YYYY-MM-DD and defaults to today. Admin only.
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			verr := &service.ValidationError{}
			verr.Fields = []service.FieldError{{Field: "date", Rule: "date", Message: "must be YYYY-MM-DD"}}
			writeError(w, r, verr)
			return
		}
		day = parsed
	}

	entries, err := h.attendance.DailyReport(r.Context(), claims.TenantID, day)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]reportEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, reportEntryResponse{
			EmployeeID: e.EmployeeID.String(),
			Name:       e.Name,
			Initials:   e.Initials,
			Department: e.Department,
			Position:   e.Position,
			CheckIn:    e.CheckIn,
			CheckOut:   e.CheckOut,
			Status:     e.Status,
		})
	}

	writeJSON(w, http.StatusOK, res)
}

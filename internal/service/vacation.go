package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emplix/emplix/internal/models"
)

// daysPerMonth is the vacation accrual rate.
var daysPerMonth = decimal.NewFromFloat(2.5)

// VacationBalance is the accrual summary for one employee.
type VacationBalance struct {
	HireDate     time.Time
	MonthsWorked int
	DaysEarned   decimal.Decimal
	DaysUsed     int
	Balance      decimal.Decimal
}

// MonthsWorked counts whole months of service between hireDate and today.
// A month only counts once its day-of-month has been reached; the result
// never goes below zero.
func MonthsWorked(hireDate, today time.Time) int {
	months := (today.Year()-hireDate.Year())*12 + int(today.Month()) - int(hireDate.Month())
	if today.Day() < hireDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DaysEarned converts months of service to accrued vacation days.
func DaysEarned(months int) decimal.Decimal {
	return decimal.NewFromInt(int64(months)).Mul(daysPerMonth)
}

// RequestDays counts the calendar days a leave request spans, inclusive of
// both endpoints. Requests without both dates count zero.
func RequestDays(req *models.Request) int {
	if req.StartDate == nil || req.EndDate == nil {
		return 0
	}
	start := models.NormalizeDate(*req.StartDate)
	end := models.NormalizeDate(*req.EndDate)
	if end.Before(start) {
		start, end = end, start
	}
	return int(end.Sub(start).Hours()/24+0.5) + 1
}

// ComputeVacationBalance derives the balance from the hire date and the
// already-approved vacation requests.
func ComputeVacationBalance(hireDate, today time.Time, approved []*models.Request) *VacationBalance {
	months := MonthsWorked(hireDate, today)
	earned := DaysEarned(months)

	used := 0
	for _, req := range approved {
		used += RequestDays(req)
	}

	return &VacationBalance{
		HireDate:     hireDate,
		MonthsWorked: months,
		DaysEarned:   earned,
		DaysUsed:     used,
		Balance:      earned.Sub(decimal.NewFromInt(int64(used))),
	}
}

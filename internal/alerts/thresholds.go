package alerts

import (
	"time"

	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

// Warning windows and priority sub-thresholds. These are fixed domain
// policy, not configuration: insurance renewals need ~a month of lead
// time, technical inspections two, and oil changes are booked within
// the last thousand kilometres.
const (
	insuranceWarnDays = 30
	insuranceHighDays = 7

	inspectionWarnDays = 60
	inspectionHighDays = 15

	oilWarnKm = 1000
	oilHighKm = 500
)

// DueState is the outcome of a date-based threshold predicate for one record.
type DueState struct {
	Days    int  // whole days until the due date; negative once past it
	Warning bool // inside the warning window
	Expired bool // past the due date
	Known   bool // false when the record carries no usable date
}

// DaysUntil returns the calendar-day distance from today to target.
// Both instants are truncated to their calendar date before comparing,
// so the time of day never influences the result. The same day yields 0,
// tomorrow 1, yesterday -1.
func DaysUntil(today, target time.Time) int {
	return int(truncateDay(target).Sub(truncateDay(today)) / (24 * time.Hour))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InsuranceDue classifies an insurance period against today. Periods
// without a usable end date never warn and never expire; they are
// skipped on purpose rather than by accident of date arithmetic.
func InsuranceDue(p models.InsurancePeriod, today time.Time) DueState {
	if p.EndDate.IsZero() {
		return DueState{}
	}
	d := DaysUntil(today, p.EndDate)
	return DueState{
		Days:    d,
		Warning: d >= 0 && d <= insuranceWarnDays,
		Expired: d < 0,
		Known:   true,
	}
}

// InspectionDue classifies a technical inspection against today, with
// the same no-date policy as InsuranceDue.
func InspectionDue(i models.TechnicalInspection, today time.Time) DueState {
	if i.ExpiryDate.IsZero() {
		return DueState{}
	}
	d := DaysUntil(today, i.ExpiryDate)
	return DueState{
		Days:    d,
		Warning: d >= 0 && d <= inspectionWarnDays,
		Expired: d < 0,
		Known:   true,
	}
}

// OilDue returns the kilometres left before the next oil change is due
// and whether the vehicle is inside the warning window. The window has
// no lower bound: an overdue change (negative remaining) keeps warning
// indefinitely, unlike the date-based dimensions which stop at expiry.
func OilDue(o models.OilChange, currentKm int) (remainingKm int, warning bool) {
	remainingKm = o.NextDueMileage() - currentKm
	return remainingKm, remainingKm <= oilWarnKm
}

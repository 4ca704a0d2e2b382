package alerts

import (
	"fmt"
	"time"

	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

// Badge is the dashboard presentation of one maintenance record.
type Badge struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Icon kinds and colors understood by the dashboard.
const (
	IconAlert = "alert-triangle"
	IconClock = "clock"
	IconCheck = "check-circle"
	IconCross = "x-circle"

	ColorRed    = "red"
	ColorOrange = "orange"
	ColorGreen  = "green"
)

// The three badge functions share one precedence order, first match wins:
// expired/overdue, then warning window, then the record's stored
// compliance state. A paid period whose end date is inside the warning
// window shows the countdown, not "Up to date" — time-based urgency
// overrides the stored flag.

// InsuranceBadge maps one insurance period to its dashboard badge.
func InsuranceBadge(p models.InsurancePeriod, today time.Time) Badge {
	st := InsuranceDue(p, today)
	switch {
	case st.Expired:
		return Badge{Icon: IconAlert, Label: "Expired", Color: ColorRed}
	case st.Warning:
		return Badge{Icon: IconClock, Label: fmt.Sprintf("Expires in %d days", st.Days), Color: ColorOrange}
	case p.Status == models.InsurancePaid:
		return Badge{Icon: IconCheck, Label: "Up to date", Color: ColorGreen}
	default:
		return Badge{Icon: IconCross, Label: "Unpaid", Color: ColorRed}
	}
}

// OilBadge maps one oil-change event to its dashboard badge, given the
// vehicle's current odometer reading.
func OilBadge(o models.OilChange, currentKm int) Badge {
	remaining, warning := OilDue(o, currentKm)
	switch {
	case remaining < 0:
		return Badge{Icon: IconAlert, Label: fmt.Sprintf("Overdue by %d km", -remaining), Color: ColorRed}
	case warning:
		return Badge{Icon: IconClock, Label: fmt.Sprintf("Due in %d km", remaining), Color: ColorOrange}
	case o.Status == models.OilChangeDone:
		return Badge{Icon: IconCheck, Label: "Up to date", Color: ColorGreen}
	default:
		return Badge{Icon: IconCross, Label: "Not done", Color: ColorRed}
	}
}

// InspectionBadge maps one technical inspection to its dashboard badge.
func InspectionBadge(i models.TechnicalInspection, today time.Time) Badge {
	st := InspectionDue(i, today)
	switch {
	case st.Expired:
		return Badge{Icon: IconAlert, Label: "Expired", Color: ColorRed}
	case st.Warning:
		return Badge{Icon: IconClock, Label: fmt.Sprintf("Expires in %d days", st.Days), Color: ColorOrange}
	case i.Status == models.InspectionValid:
		return Badge{Icon: IconCheck, Label: "Up to date", Color: ColorGreen}
	default:
		return Badge{Icon: IconCross, Label: "Invalid", Color: ColorRed}
	}
}

// RecordStatus pairs a maintenance record with its badge.
type RecordStatus struct {
	EventID string `json:"event_id"`
	Badge   Badge  `json:"badge"`
}

// VehicleStatus is the per-dimension badge breakdown for one vehicle.
type VehicleStatus struct {
	VehicleID   string         `json:"vehicle_id"`
	Insurances  []RecordStatus `json:"insurances"`
	OilChanges  []RecordStatus `json:"oil_changes"`
	Inspections []RecordStatus `json:"inspections"`
}

// StatusFor computes the badge breakdown for a vehicle's maintenance records.
func StatusFor(v models.Vehicle, today time.Time) VehicleStatus {
	s := VehicleStatus{VehicleID: v.ID.Hex()}
	for _, p := range v.Insurances {
		s.Insurances = append(s.Insurances, RecordStatus{EventID: p.EventID, Badge: InsuranceBadge(p, today)})
	}
	cur := v.Mileage()
	for _, o := range v.OilChanges {
		s.OilChanges = append(s.OilChanges, RecordStatus{EventID: o.EventID, Badge: OilBadge(o, cur)})
	}
	for _, i := range v.Inspections {
		s.Inspections = append(s.Inspections, RecordStatus{EventID: i.EventID, Badge: InspectionBadge(i, today)})
	}
	return s
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OilChangeIntervalKm is the fixed service interval between oil changes.
const OilChangeIntervalKm = 10000

// Stored compliance states for the nested maintenance records.
const (
	InsurancePaid   = "paid"
	InsuranceUnpaid = "unpaid"

	OilChangeDone    = "done"
	OilChangeNotDone = "not_done"

	InspectionValid   = "valid"
	InspectionInvalid = "invalid"
)

// Vehicle represents a fleet vehicle together with its maintenance history.
// The nested collections are owned exclusively by the vehicle document.
type Vehicle struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	Brand          string                `bson:"brand" json:"brand"`
	Model          string                `bson:"model" json:"model"`
	Year           int                   `bson:"year" json:"year"`
	Plate          string                `bson:"plate" json:"plate"`
	CurrentMileage *int                  `bson:"current_mileage,omitempty" json:"current_mileage,omitempty"` // km; nil when no reading has been recorded yet
	Insurances     []InsurancePeriod     `bson:"insurances" json:"insurances"`
	OilChanges     []OilChange           `bson:"oil_changes" json:"oil_changes"`
	Inspections    []TechnicalInspection `bson:"inspections" json:"inspections"`
	CreatedAt      time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time             `bson:"updated_at" json:"updated_at"`
}

// Mileage returns the current odometer reading. A vehicle without a
// recorded reading counts as 0 km; the oil-change math relies on this default.
func (v *Vehicle) Mileage() int {
	if v.CurrentMileage == nil {
		return 0
	}
	return *v.CurrentMileage
}

// InsurancePeriod is one insurance contract covering the vehicle.
type InsurancePeriod struct {
	EventID   string    `bson:"event_id" json:"event_id"`
	Insurer   string    `bson:"insurer" json:"insurer"`
	StartDate time.Time `bson:"start_date" json:"start_date"`
	EndDate   time.Time `bson:"end_date" json:"end_date"`
	Amount    float64   `bson:"amount" json:"amount"`
	Status    string    `bson:"status" json:"status"` // "paid" or "unpaid"
}

// OilChange is one oil-change service event.
type OilChange struct {
	EventID string    `bson:"event_id" json:"event_id"`
	Date    time.Time `bson:"date" json:"date"`
	Mileage int       `bson:"mileage" json:"mileage"` // odometer at time of change, km
	Status  string    `bson:"status" json:"status"`   // "done" or "not_done"
	Notes   string    `bson:"notes" json:"notes"`
}

// NextDueMileage is the odometer reading at which the next oil change is due.
func (o *OilChange) NextDueMileage() int {
	return o.Mileage + OilChangeIntervalKm
}

// TechnicalInspection is one periodic technical inspection of the vehicle.
type TechnicalInspection struct {
	EventID        string    `bson:"event_id" json:"event_id"`
	InspectionDate time.Time `bson:"inspection_date" json:"inspection_date"`
	ExpiryDate     time.Time `bson:"expiry_date" json:"expiry_date"`
	Status         string    `bson:"status" json:"status"` // "valid" or "invalid"
	Center         string    `bson:"center" json:"center"`
	Cost           float64   `bson:"cost" json:"cost"`
	Notes          string    `bson:"notes" json:"notes"`
}

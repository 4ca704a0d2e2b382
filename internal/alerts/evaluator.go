package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

// Evaluate computes the full notification batch for a fleet snapshot.
// It is pure and deterministic: the same vehicles and the same today
// always produce the same batch in the same order. Vehicles are walked
// in the order given; within a vehicle the dimensions run insurance,
// then oil changes, then inspections.
//
// Insurance and inspection records stop notifying once expired
// (DaysUntil < 0). Oil changes do not: the warning window has no lower
// bound, so an overdue change keeps appearing with a negative remaining
// distance. That asymmetry is long-standing surface behavior and is
// kept as is.
func Evaluate(vehicles []models.Vehicle, today time.Time) []models.Notification {
	var out []models.Notification
	for _, v := range vehicles {
		for _, p := range v.Insurances {
			st := InsuranceDue(p, today)
			if !st.Warning {
				continue
			}
			prio := models.PriorityMedium
			if st.Days <= insuranceHighDays {
				prio = models.PriorityHigh
			}
			due := p.EndDate
			out = append(out, models.Notification{
				Kind:      models.KindInsurance,
				VehicleID: v.ID.Hex(),
				EventID:   p.EventID,
				Message:   fmt.Sprintf("%s %s: insurance expires in %d days", v.Brand, v.Model, st.Days),
				DueDate:   &due,
				Priority:  prio,
			})
		}

		cur := v.Mileage()
		for _, o := range v.OilChanges {
			remaining, warning := OilDue(o, cur)
			if !warning {
				continue
			}
			prio := models.PriorityMedium
			if remaining <= oilHighKm {
				prio = models.PriorityHigh
			}
			var msg string
			if remaining < 0 {
				msg = fmt.Sprintf("%s %s: oil change overdue by %d km", v.Brand, v.Model, -remaining)
			} else {
				msg = fmt.Sprintf("%s %s: oil change due in %d km", v.Brand, v.Model, remaining)
			}
			rem := remaining
			out = append(out, models.Notification{
				Kind:        models.KindOil,
				VehicleID:   v.ID.Hex(),
				EventID:     o.EventID,
				Message:     msg,
				RemainingKm: &rem,
				Priority:    prio,
			})
		}

		for _, i := range v.Inspections {
			st := InspectionDue(i, today)
			if !st.Warning {
				continue
			}
			prio := models.PriorityMedium
			if st.Days <= inspectionHighDays {
				prio = models.PriorityHigh
			}
			due := i.ExpiryDate
			out = append(out, models.Notification{
				Kind:      models.KindTechnical,
				VehicleID: v.ID.Hex(),
				EventID:   i.EventID,
				Message:   fmt.Sprintf("%s %s: technical inspection expires in %d days", v.Brand, v.Model, st.Days),
				DueDate:   &due,
				Priority:  prio,
			})
		}
	}
	return out
}

// Engine holds the current notification batch. There is exactly one
// writer (Recompute) and any number of readers; each pass replaces the
// batch wholesale, last write wins, with no queuing of superseded batches.
type Engine struct {
	mu    sync.RWMutex
	batch []models.Notification
}

// NewEngine returns an engine with an empty batch.
func NewEngine() *Engine {
	return &Engine{}
}

// Recompute evaluates the snapshot and installs the result as the
// current batch, discarding the previous one.
func (e *Engine) Recompute(vehicles []models.Vehicle, today time.Time) {
	batch := Evaluate(vehicles, today)
	e.mu.Lock()
	e.batch = batch
	e.mu.Unlock()
}

// Notifications returns the current batch. Callers must treat it as an
// immutable snapshot; it is never mutated in place, only replaced.
func (e *Engine) Notifications() []models.Notification {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.batch
}

// Count returns the badge count, i.e. the length of the current batch.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.batch)
}

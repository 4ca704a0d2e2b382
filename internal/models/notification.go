package models

import "time"

// NotificationKind identifies which maintenance dimension produced a notification.
type NotificationKind string

const (
	KindInsurance NotificationKind = "insurance"
	KindOil       NotificationKind = "oil"
	KindTechnical NotificationKind = "technical"
)

// Priority of a notification within the dropdown list.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Notification is one entry of the maintenance alert list. Notifications
// are output-only: the whole batch is recomputed from the fleet snapshot
// on every change and never persisted or mutated.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	VehicleID   string           `json:"vehicle_id"`
	EventID     string           `json:"event_id"`
	Message     string           `json:"message"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	RemainingKm *int             `json:"remaining_km,omitempty"`
	Priority    Priority         `json:"priority"`
}

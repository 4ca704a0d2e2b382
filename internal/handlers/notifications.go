package handlers

import (
	"net/http"

	"github.com/ouahimohammed/gestion.para-sub001/internal/alerts"
	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

// NotificationHandler exposes the current alert batch: the badge count
// and the detail list, in evaluation order.
type NotificationHandler struct {
	engine *alerts.Engine
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(engine *alerts.Engine) *NotificationHandler {
	return &NotificationHandler{engine: engine}
}

// NotificationList is the response body of the notification endpoint.
type NotificationList struct {
	Count         int                   `json:"count"`
	Notifications []models.Notification `json:"notifications"`
}

// List returns the current notification batch.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	batch := h.engine.Notifications()
	if batch == nil {
		batch = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, NotificationList{Count: len(batch), Notifications: batch})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ouahimohammed/gestion.para-sub001/internal/alerts"
	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

func TestNotificationList_Empty(t *testing.T) {
	h := NewNotificationHandler(alerts.NewEngine())

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp NotificationList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Notifications)
	assert.Empty(t, resp.Notifications)
}

func TestNotificationList_BadgeCountMatchesList(t *testing.T) {
	engine := alerts.NewEngine()
	now := time.Now()
	mileage := 81500
	vehicle := models.Vehicle{
		ID:             primitive.NewObjectID(),
		Brand:          "Renault",
		Model:          "Kangoo",
		CurrentMileage: &mileage,
		Insurances: []models.InsurancePeriod{
			{EventID: "ins-1", EndDate: now.AddDate(0, 0, 5), Status: models.InsurancePaid},
		},
		OilChanges: []models.OilChange{
			{EventID: "oil-1", Mileage: 70000, Status: models.OilChangeDone},
		},
	}
	engine.Recompute([]models.Vehicle{vehicle}, now)

	h := NewNotificationHandler(engine)
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp NotificationList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, models.KindInsurance, resp.Notifications[0].Kind)
	assert.Equal(t, models.KindOil, resp.Notifications[1].Kind)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ouahimohammed/gestion.para-sub001/internal/alerts"
	"github.com/ouahimohammed/gestion.para-sub001/internal/db"
	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

type mockVehicleCollection struct {
	vehicles  []models.Vehicle
	insertErr error
	findErr   error
	updateErr error
	mileages  map[string]int
}

func (m *mockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if m.insertErr != nil {
		return "", m.insertErr
	}
	vehicle.ID = primitive.NewObjectID()
	m.vehicles = append(m.vehicles, vehicle)
	return vehicle.ID.Hex(), nil
}

func (m *mockVehicleCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.VehicleCursor, error) {
	return nil, errors.New("not implemented")
}

func (m *mockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.vehicles {
		if m.vehicles[i].ID.Hex() == id {
			return &m.vehicles[i], nil
		}
	}
	return nil, db.ErrVehicleNotFound
}

func (m *mockVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	return m.updateErr
}

func (m *mockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	for i := range m.vehicles {
		if m.vehicles[i].ID.Hex() == id {
			m.vehicles = append(m.vehicles[:i], m.vehicles[i+1:]...)
			return nil
		}
	}
	return db.ErrVehicleNotFound
}

func (m *mockVehicleCollection) Snapshot(ctx context.Context) ([]models.Vehicle, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.vehicles, nil
}

func (m *mockVehicleCollection) AddInsurance(ctx context.Context, vehicleID string, period models.InsurancePeriod) (string, error) {
	v, err := m.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	period.EventID = "ins-new"
	v.Insurances = append(v.Insurances, period)
	return period.EventID, nil
}

func (m *mockVehicleCollection) AddOilChange(ctx context.Context, vehicleID string, change models.OilChange) (string, error) {
	v, err := m.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	change.EventID = "oil-new"
	v.OilChanges = append(v.OilChanges, change)
	return change.EventID, nil
}

func (m *mockVehicleCollection) AddInspection(ctx context.Context, vehicleID string, inspection models.TechnicalInspection) (string, error) {
	v, err := m.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	inspection.EventID = "tec-new"
	v.Inspections = append(v.Inspections, inspection)
	return inspection.EventID, nil
}

func (m *mockVehicleCollection) UpdateMileage(ctx context.Context, vehicleID string, mileage int) error {
	if _, err := m.FindVehicleByID(ctx, vehicleID); err != nil {
		return err
	}
	if m.mileages == nil {
		m.mileages = make(map[string]int)
	}
	m.mileages[vehicleID] = mileage
	return nil
}

func newTestHandler(coll *mockVehicleCollection) (*VehicleHandler, *int) {
	refreshes := 0
	h := NewVehicleHandler(coll, func(r *http.Request) { refreshes++ })
	return h, &refreshes
}

func newMux(h *VehicleHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles", h.List)
	mux.HandleFunc("POST /api/vehicles", h.Create)
	mux.HandleFunc("GET /api/vehicles/{id}", h.Get)
	mux.HandleFunc("DELETE /api/vehicles/{id}", h.Delete)
	mux.HandleFunc("GET /api/vehicles/{id}/status", h.Status)
	mux.HandleFunc("POST /api/vehicles/{id}/insurance", h.AddInsurance)
	mux.HandleFunc("POST /api/vehicles/{id}/oil-changes", h.AddOilChange)
	mux.HandleFunc("POST /api/vehicles/{id}/inspections", h.AddInspection)
	mux.HandleFunc("PUT /api/vehicles/{id}/odometer", h.UpdateOdometer)
	return mux
}

func seedVehicle(coll *mockVehicleCollection) string {
	mileage := 79200
	id, _ := coll.InsertVehicle(context.Background(), models.Vehicle{
		Brand:          "Renault",
		Model:          "Kangoo",
		CurrentMileage: &mileage,
	})
	return id
}

func TestCreateVehicle(t *testing.T) {
	coll := &mockVehicleCollection{}
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	body, _ := json.Marshal(map[string]interface{}{"brand": "Renault", "model": "Kangoo", "year": 2020})
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, 1, *refreshes)
}

func TestCreateVehicle_MissingBrand(t *testing.T) {
	coll := &mockVehicleCollection{}
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString(`{"model":"Kangoo"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, *refreshes)
}

func TestCreateVehicle_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(&mockVehicleCollection{})
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString("{bad json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVehicle_NotFound(t *testing.T) {
	h, _ := newTestHandler(&mockVehicleCollection{})
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+primitive.NewObjectID().Hex(), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteVehicle_TriggersRefresh(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/vehicles/"+id, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, *refreshes)
	assert.Empty(t, coll.vehicles)
}

func TestAddInsurance(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	body, _ := json.Marshal(models.InsurancePeriod{
		Insurer: "AXA",
		EndDate: time.Now().AddDate(0, 0, 20),
		Status:  models.InsurancePaid,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles/"+id+"/insurance", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ins-new", resp["event_id"])
	assert.Equal(t, 1, *refreshes)
}

func TestAddOilChange_NegativeMileage(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles/"+id+"/oil-changes", bytes.NewBufferString(`{"mileage":-1}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, *refreshes)
}

func TestUpdateOdometer(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	h, refreshes := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/"+id+"/odometer", bytes.NewBufferString(`{"mileage":81500}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 81500, coll.mileages[id])
	assert.Equal(t, 1, *refreshes)
}

func TestUpdateOdometer_NegativeMileage(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	h, _ := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/"+id+"/odometer", bytes.NewBufferString(`{"mileage":-5}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVehicleStatus(t *testing.T) {
	coll := &mockVehicleCollection{}
	id := seedVehicle(coll)
	v, err := coll.FindVehicleByID(context.Background(), id)
	require.NoError(t, err)
	v.OilChanges = []models.OilChange{{EventID: "oil-1", Mileage: 70000, Status: models.OilChangeDone}}

	h, _ := newTestHandler(coll)
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+id+"/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var status alerts.VehicleStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.OilChanges, 1)
	assert.Equal(t, "Due in 800 km", status.OilChanges[0].Badge.Label)
	assert.Equal(t, alerts.ColorOrange, status.OilChanges[0].Badge.Color)
}

func TestListVehicles_Empty(t *testing.T) {
	h, _ := newTestHandler(&mockVehicleCollection{})
	mux := newMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ouahimohammed/gestion.para-sub001/internal/alerts"
	"github.com/ouahimohammed/gestion.para-sub001/internal/db"
	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
)

// VehicleHandler serves the fleet CRUD API. Every mutation triggers a
// full recompute of the alert batch before the response is written, so
// a client that writes and then reads the notification list sees its
// own change reflected.
type VehicleHandler struct {
	vehicles    db.VehicleCollection
	refreshHook func(r *http.Request)
}

// NewVehicleHandler creates a new vehicle handler. refresh reloads the
// fleet snapshot and recomputes the alert batch; it is invoked after
// every successful mutation.
func NewVehicleHandler(vehicles db.VehicleCollection, refresh func(r *http.Request)) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, refreshHook: refresh}
}

// List returns all vehicles with their maintenance records.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "Failed to load vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create inserts a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if vehicle.Brand == "" || vehicle.Model == "" {
		http.Error(w, "Brand and model are required", http.StatusBadRequest)
		return
	}
	id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}
	h.refreshHook(r)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Get returns a single vehicle by id.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update replaces a vehicle's own fields.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.vehicles.UpdateVehicle(r.Context(), r.PathValue("id"), vehicle); err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a vehicle and its maintenance history.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicles.DeleteVehicle(r.Context(), r.PathValue("id")); err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	w.WriteHeader(http.StatusNoContent)
}

// AddInsurance appends an insurance period to a vehicle.
func (h *VehicleHandler) AddInsurance(w http.ResponseWriter, r *http.Request) {
	var period models.InsurancePeriod
	if !decodeBody(w, r, &period) {
		return
	}
	eventID, err := h.vehicles.AddInsurance(r.Context(), r.PathValue("id"), period)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	writeJSON(w, http.StatusCreated, map[string]string{"event_id": eventID})
}

// AddOilChange appends an oil-change event to a vehicle.
func (h *VehicleHandler) AddOilChange(w http.ResponseWriter, r *http.Request) {
	var change models.OilChange
	if !decodeBody(w, r, &change) {
		return
	}
	if change.Mileage < 0 {
		http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
		return
	}
	eventID, err := h.vehicles.AddOilChange(r.Context(), r.PathValue("id"), change)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	writeJSON(w, http.StatusCreated, map[string]string{"event_id": eventID})
}

// AddInspection appends a technical inspection to a vehicle.
func (h *VehicleHandler) AddInspection(w http.ResponseWriter, r *http.Request) {
	var inspection models.TechnicalInspection
	if !decodeBody(w, r, &inspection) {
		return
	}
	eventID, err := h.vehicles.AddInspection(r.Context(), r.PathValue("id"), inspection)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	writeJSON(w, http.StatusCreated, map[string]string{"event_id": eventID})
}

// UpdateOdometer records a new odometer reading for a vehicle.
func (h *VehicleHandler) UpdateOdometer(w http.ResponseWriter, r *http.Request) {
	var reading struct {
		Mileage int `json:"mileage"`
	}
	if !decodeBody(w, r, &reading) {
		return
	}
	if reading.Mileage < 0 {
		http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
		return
	}
	if err := h.vehicles.UpdateMileage(r.Context(), r.PathValue("id"), reading.Mileage); err != nil {
		writeLookupError(w, err)
		return
	}
	h.refreshHook(r)
	w.WriteHeader(http.StatusNoContent)
}

// Status returns the per-record maintenance badges for one vehicle.
func (h *VehicleHandler) Status(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts.StatusFor(*vehicle, time.Now()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrVehicleNotFound) {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Database error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Vehicle mirrors the API request body for vehicle creation.
type Vehicle struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Plate          string `json:"plate"`
	CurrentMileage int    `json:"current_mileage"`
}

// InsurancePeriod mirrors the API request body for insurance records.
type InsurancePeriod struct {
	Insurer   string    `json:"insurer"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
}

// OilChange mirrors the API request body for oil-change records.
type OilChange struct {
	Date    time.Time `json:"date"`
	Mileage int       `json:"mileage"`
	Status  string    `json:"status"`
	Notes   string    `json:"notes"`
}

// TechnicalInspection mirrors the API request body for inspection records.
type TechnicalInspection struct {
	InspectionDate time.Time `json:"inspection_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Status         string    `json:"status"`
	Center         string    `json:"center"`
	Cost           float64   `json:"cost"`
}

type vehicleState struct {
	VehicleID string
	MileageKm int
	SpeedKmh  float64
}

var (
	brands     = []string{"Renault", "Peugeot", "Dacia", "Toyota", "Ford"}
	modelNames = []string{"Kangoo", "Partner", "Dokker", "Hilux", "Transit"}
)

func postJSON(url string, payload interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

// createVehicle seeds one vehicle with maintenance records scattered
// around the warning thresholds so the alert list is never empty.
func createVehicle(apiURL string) (*vehicleState, error) {
	mileage := 40000 + rand.Intn(120000)
	vehicle := Vehicle{
		Brand:          brands[rand.Intn(len(brands))],
		Model:          modelNames[rand.Intn(len(modelNames))],
		Year:           2015 + rand.Intn(10),
		Plate:          fmt.Sprintf("%d-A-%05d", 10+rand.Intn(80), 10000+rand.Intn(89999)),
		CurrentMileage: mileage,
	}
	result, err := postJSON(apiURL+"/vehicles", vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	vehicleID, ok := result["id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid vehicle ID in response")
	}

	now := time.Now()

	// Insurance ending anywhere from 10 days ago to 60 days out.
	insurance := InsurancePeriod{
		Insurer:   []string{"AXA", "Wafa", "Sanad"}[rand.Intn(3)],
		StartDate: now.AddDate(-1, 0, 0),
		EndDate:   now.AddDate(0, 0, -10+rand.Intn(71)),
		Amount:    3000 + rand.Float64()*4000,
		Status:    []string{"paid", "unpaid"}[rand.Intn(2)],
	}
	if _, err := postJSON(apiURL+"/vehicles/"+vehicleID+"/insurance", insurance); err != nil {
		return nil, fmt.Errorf("failed to add insurance: %w", err)
	}

	// Last oil change 7000-11500 km ago, so some vehicles start inside
	// the warning window or overdue.
	change := OilChange{
		Date:    now.AddDate(0, -rand.Intn(8), 0),
		Mileage: mileage - 7000 - rand.Intn(4500),
		Status:  "done",
		Notes:   "simulated service",
	}
	if _, err := postJSON(apiURL+"/vehicles/"+vehicleID+"/oil-changes", change); err != nil {
		return nil, fmt.Errorf("failed to add oil change: %w", err)
	}

	inspection := TechnicalInspection{
		InspectionDate: now.AddDate(-1, 0, 0),
		ExpiryDate:     now.AddDate(0, 0, -10+rand.Intn(101)),
		Status:         "valid",
		Center:         "Centre Visite " + strconv.Itoa(1+rand.Intn(9)),
		Cost:           300 + rand.Float64()*200,
	}
	if _, err := postJSON(apiURL+"/vehicles/"+vehicleID+"/inspections", inspection); err != nil {
		return nil, fmt.Errorf("failed to add inspection: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"brand":      vehicle.Brand,
		"model":      vehicle.Model,
		"mileage":    mileage,
	}).Info("Created vehicle")

	return &vehicleState{VehicleID: vehicleID, MileageKm: mileage, SpeedKmh: 30 + rand.Float64()*50}, nil
}

func simulateVehicle(client mqtt.Client, s *vehicleState, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		s.SpeedKmh += (rand.Float64()*2 - 1) * 5
		if s.SpeedKmh < 20 {
			s.SpeedKmh = 20
		}
		if s.SpeedKmh > 100 {
			s.SpeedKmh = 100
		}
		// Scale distance up so odometers move visibly per tick.
		s.MileageKm += int(s.SpeedKmh * interval.Seconds())

		payload, err := json.Marshal(map[string]int{"mileage": s.MileageKm})
		if err != nil {
			log.WithError(err).Error("Failed to marshal odometer reading")
			continue
		}
		topic := fmt.Sprintf("fleet/%s/odometer", s.VehicleID)
		if token := client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("vehicle_id", s.VehicleID).Error("Failed to publish odometer reading")
			continue
		}
		log.WithFields(log.Fields{"vehicle_id": s.VehicleID, "mileage": s.MileageKm}).Info("Published odometer reading")
	}
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if brokerURL == "" {
		brokerURL = "tcp://localhost:1883"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"broker_url": brokerURL,
		"interval":   interval,
	}).Info("Starting fleet simulation")

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("fleet-simulator-%d", os.Getpid())).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	states := make([]*vehicleState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		state, err := createVehicle(apiURL)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		states = append(states, state)
	}

	log.WithField("created_vehicles", len(states)).Info("Vehicle creation completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure the API is reachable. Exiting.")
		return
	}

	for _, s := range states {
		go simulateVehicle(client, s, interval)
	}

	log.Info("Odometer simulation started")
	select {} // Block forever
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ouahimohammed/gestion.para-sub001/internal/db"
)

// odometerTopic is the subscription filter for odometer telemetry. The
// single-level wildcard is the vehicle id.
const odometerTopic = "fleet/+/odometer"

// OdometerReading is the MQTT payload published for each vehicle.
type OdometerReading struct {
	Mileage int `json:"mileage"`
}

// Subscriber consumes odometer telemetry from MQTT, persists each
// reading and triggers an alert recompute.
type Subscriber struct {
	vehicles db.VehicleCollection
	refresh  func(ctx context.Context)
	client   mqtt.Client
}

// NewSubscriber configures an MQTT subscriber against brokerURL.
// refresh is invoked after every persisted reading.
func NewSubscriber(brokerURL string, vehicles db.VehicleCollection, refresh func(ctx context.Context)) *Subscriber {
	s := &Subscriber{vehicles: vehicles, refresh: refresh}
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("fleet-alerts-" + uuid.NewString()).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(client mqtt.Client) {
			// Resubscribe on every (re)connect; the session is not persistent.
			if token := client.Subscribe(odometerTopic, 1, s.handle); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).Error("Failed to subscribe to odometer topic")
			}
		})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker. Subscription happens in the connect
// handler so it survives reconnects.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	log.WithField("topic", odometerTopic).Info("Odometer ingest started")
	return nil
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	vehicleID, ok := vehicleIDFromTopic(msg.Topic())
	if !ok {
		log.WithField("topic", msg.Topic()).Warn("Ignoring message on unexpected topic")
		return
	}
	var reading OdometerReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		log.WithError(err).WithField("vehicle_id", vehicleID).Warn("Invalid odometer payload")
		return
	}
	if reading.Mileage < 0 {
		log.WithFields(log.Fields{"vehicle_id": vehicleID, "mileage": reading.Mileage}).Warn("Ignoring negative odometer reading")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.vehicles.UpdateMileage(ctx, vehicleID, reading.Mileage); err != nil {
		log.WithError(err).WithField("vehicle_id", vehicleID).Error("Failed to persist odometer reading")
		return
	}
	s.refresh(ctx)
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "mileage": reading.Mileage}).Debug("Odometer reading ingested")
}

// vehicleIDFromTopic extracts the vehicle id from a fleet/<id>/odometer topic.
func vehicleIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "fleet" || parts[2] != "odometer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

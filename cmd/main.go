package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ouahimohammed/gestion.para-sub001/internal/alerts"
	"github.com/ouahimohammed/gestion.para-sub001/internal/db"
	"github.com/ouahimohammed/gestion.para-sub001/internal/handlers"
	"github.com/ouahimohammed/gestion.para-sub001/internal/ingest"
	"github.com/ouahimohammed/gestion.para-sub001/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("FLEET_DB")
	if dbName == "" {
		dbName = "fleet"
	}
	collection := client.Database(dbName).Collection("vehicles")
	vehicles := &db.MongoCollection{Collection: collection}

	engine := alerts.NewEngine()

	// Every fleet mutation funnels through here: reload the whole
	// snapshot, recompute the whole batch. Not field-scoped, no
	// debouncing; fleets are small.
	refresh := func(ctx context.Context) {
		snapshot, err := vehicles.Snapshot(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to load fleet snapshot")
			return
		}
		engine.Recompute(snapshot, time.Now())
		log.WithField("notifications", engine.Count()).Debug("Alert batch recomputed")
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	refresh(bootCtx)
	cancelBoot()

	// Pick up writes that bypass this process. Best effort: change
	// streams need a replica set.
	go func() {
		if err := db.WatchFleet(context.Background(), collection, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			refresh(ctx)
		}); err != nil {
			log.WithError(err).Warn("Fleet change stream unavailable, relying on in-process triggers")
		}
	}()

	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		sub := ingest.NewSubscriber(brokerURL, vehicles, refresh)
		if err := sub.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start odometer ingest")
		}
		defer sub.Stop()
	}

	vehicleHandler := handlers.NewVehicleHandler(vehicles, func(r *http.Request) { refresh(r.Context()) })
	notificationHandler := handlers.NewNotificationHandler(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications", notificationHandler.List)
	mux.HandleFunc("GET /api/vehicles", vehicleHandler.List)
	mux.HandleFunc("POST /api/vehicles", vehicleHandler.Create)
	mux.HandleFunc("GET /api/vehicles/{id}", vehicleHandler.Get)
	mux.HandleFunc("PUT /api/vehicles/{id}", vehicleHandler.Update)
	mux.HandleFunc("DELETE /api/vehicles/{id}", vehicleHandler.Delete)
	mux.HandleFunc("GET /api/vehicles/{id}/status", vehicleHandler.Status)
	mux.HandleFunc("POST /api/vehicles/{id}/insurance", vehicleHandler.AddInsurance)
	mux.HandleFunc("POST /api/vehicles/{id}/oil-changes", vehicleHandler.AddOilChange)
	mux.HandleFunc("POST /api/vehicles/{id}/inspections", vehicleHandler.AddInspection)
	mux.HandleFunc("PUT /api/vehicles/{id}/odometer", vehicleHandler.UpdateOdometer)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, middleware.Logging(mux)))
}

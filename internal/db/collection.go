package db

import (
	"context"

	"github.com/ouahimohammed/gestion.para-sub001/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleCollection defines the interface for fleet data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error

	// Snapshot loads every vehicle in stable insertion order. The alert
	// evaluator consumes this as its input contract.
	Snapshot(ctx context.Context) ([]models.Vehicle, error)

	AddInsurance(ctx context.Context, vehicleID string, period models.InsurancePeriod) (string, error)
	AddOilChange(ctx context.Context, vehicleID string, change models.OilChange) (string, error)
	AddInspection(ctx context.Context, vehicleID string, inspection models.TechnicalInspection) (string, error)
	UpdateMileage(ctx context.Context, vehicleID string, mileage int) error
}

// VehicleCursor defines the interface for vehicle cursor operations.
type VehicleCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

package driver

import (
	"context"

	"github.com/google/uuid"
)

// DriverRepository defines persistence for driver replicas and the registry of
// ride ids each driver owns.
type DriverRepository interface {
	// FindByID retrieves a driver by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// Upsert inserts or refreshes a driver replica.
	Upsert(ctx context.Context, d *Driver) error

	// AddRide registers a ride id under the driver. Fails if the driver is
	// absent; registering an already-registered ride is a no-op.
	AddRide(ctx context.Context, driverID, rideID uuid.UUID) error

	// RemoveRide removes a ride id from the driver's registry. Removing an
	// absent ride or an absent driver is a no-op, not an error.
	RemoveRide(ctx context.Context, driverID, rideID uuid.UUID) error

	// ListRideIDs returns the driver's ride ids in registration order.
	ListRideIDs(ctx context.Context, driverID uuid.UUID) ([]uuid.UUID, error)
}

package ride

import (
	"context"

	"github.com/google/uuid"
)

// RideRepository defines the persistence contract for ride aggregates.
type RideRepository interface {
	// FindByID retrieves a ride by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Ride, error)

	// ListAll retrieves every ride, ordered by schedule ascending.
	ListAll(ctx context.Context) ([]*Ride, error)

	// ListByDriverID retrieves a driver's rides, ordered by schedule ascending.
	ListByDriverID(ctx context.Context, driverID uuid.UUID) ([]*Ride, error)

	// ListByIDs retrieves the rides with the given ids, ordered by schedule
	// ascending. Missing ids are skipped, not errors.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Ride, error)

	// ListPaged retrieves rides with pagination (admin).
	ListPaged(ctx context.Context, page, limit int) ([]*Ride, int64, error)

	// CountByAvailability returns ride counts keyed by availability (admin).
	CountByAvailability(ctx context.Context) (available, full int64, err error)

	// Save persists a new ride.
	Save(ctx context.Context, r *Ride) error

	// Update persists changes to an existing ride with optimistic locking:
	// the write applies only if the stored version matches the version the
	// aggregate was loaded at, and fails with a conflict otherwise.
	Update(ctx context.Context, r *Ride) error

	// Delete removes a ride. Deleting an absent ride is a not-found error.
	Delete(ctx context.Context, id uuid.UUID) error
}

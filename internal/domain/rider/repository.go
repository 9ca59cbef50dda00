package rider

import (
	"context"

	"github.com/google/uuid"
)

// RiderRepository defines persistence for rider replicas and each rider's
// booking history.
type RiderRepository interface {
	// FindByID retrieves a rider by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Rider, error)

	// Upsert inserts or refreshes a rider replica.
	Upsert(ctx context.Context, r *Rider) error

	// RecordBooking appends a ride id to the rider's history. Recording the
	// same ride twice is a no-op, so a retried reservation cannot produce
	// duplicate entries.
	RecordBooking(ctx context.Context, riderID, rideID uuid.UUID) error

	// ListBookings returns the rider's booked ride ids in booking order.
	ListBookings(ctx context.Context, riderID uuid.UUID) ([]uuid.UUID, error)
}

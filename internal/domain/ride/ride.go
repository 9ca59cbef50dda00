package ride

import (
	"time"

	"github.com/google/uuid"

	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// Ride is the aggregate root for a published ride and its seat inventory.
//
// Invariants, maintained by every mutation:
//   - remainingSeats + sum(allocations) == capacity
//   - available == (remainingSeats > 0)
//   - a rider appears at most once in allocations
type Ride struct {
	id               uuid.UUID
	driverID         uuid.UUID
	route            Route
	schedule         time.Time
	capacity         int
	remainingSeats   int
	costPerSeatCents int64
	available        bool
	allocations      map[uuid.UUID]int

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRide creates a new Ride with its full capacity available.
func NewRide(
	driverID uuid.UUID,
	route Route,
	schedule time.Time,
	capacity int,
	costPerSeatCents int64,
) (*Ride, error) {
	if driverID == uuid.Nil {
		return nil, apperrors.NewValidation("driver ID is required")
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}
	if schedule.IsZero() {
		return nil, apperrors.NewValidation("schedule is required")
	}
	if capacity <= 0 {
		return nil, apperrors.NewValidation("capacity must be positive")
	}
	if costPerSeatCents < 0 {
		return nil, apperrors.NewValidation("cost per seat cannot be negative")
	}

	now := time.Now().UTC()
	return &Ride{
		id:               uuid.New(),
		driverID:         driverID,
		route:            route,
		schedule:         schedule,
		capacity:         capacity,
		remainingSeats:   capacity,
		costPerSeatCents: costPerSeatCents,
		available:        true,
		allocations:      make(map[uuid.UUID]int),
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Ride from persistence data (no validation).
func Reconstruct(
	id, driverID uuid.UUID,
	route Route,
	schedule time.Time,
	capacity, remainingSeats int,
	costPerSeatCents int64,
	available bool,
	allocations map[uuid.UUID]int,
	version int64,
	createdAt, updatedAt time.Time,
) *Ride {
	if allocations == nil {
		allocations = make(map[uuid.UUID]int)
	}
	return &Ride{
		id:               id,
		driverID:         driverID,
		route:            route,
		schedule:         schedule,
		capacity:         capacity,
		remainingSeats:   remainingSeats,
		costPerSeatCents: costPerSeatCents,
		available:        available,
		allocations:      allocations,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the ride's unique identifier.
func (r *Ride) ID() uuid.UUID { return r.id }

// DriverID returns the owning driver's ID.
func (r *Ride) DriverID() uuid.UUID { return r.driverID }

// Route returns the ride's origin and destination.
func (r *Ride) Route() Route { return r.route }

// Schedule returns the departure timestamp.
func (r *Ride) Schedule() time.Time { return r.schedule }

// Capacity returns the total seats the ride was created with.
func (r *Ride) Capacity() int { return r.capacity }

// RemainingSeats returns the seats still open for reservation.
func (r *Ride) RemainingSeats() int { return r.remainingSeats }

// CostPerSeatCents returns the per-seat price in cents.
func (r *Ride) CostPerSeatCents() int64 { return r.costPerSeatCents }

// Available reports whether any seats remain.
func (r *Ride) Available() bool { return r.available }

// Allocations returns a copy of the rider-to-seats allocation map.
func (r *Ride) Allocations() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.allocations))
	for rider, seats := range r.allocations {
		out[rider] = seats
	}
	return out
}

// SeatsBookedBy returns the seats a rider holds on this ride, if any.
func (r *Ride) SeatsBookedBy(riderID uuid.UUID) (int, bool) {
	seats, ok := r.allocations[riderID]
	return seats, ok
}

// Version returns the entity version for optimistic locking.
func (r *Ride) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Ride) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Ride) UpdatedAt() time.Time { return r.updatedAt }

// IsOwnedBy checks if the ride belongs to the given driver.
func (r *Ride) IsOwnedBy(driverID uuid.UUID) bool {
	return r.driverID == driverID
}

// --- Behavior ---

// ReserveSeats allocates seats to a rider. The precondition checks and the
// mutation are a single step: either all of them pass and the allocation is
// recorded, or the ride is left untouched.
//
// A rider may book a given ride at most once. There is no reverse transition;
// seats are never returned to the pool.
func (r *Ride) ReserveSeats(riderID uuid.UUID, seatCount int) error {
	if riderID == uuid.Nil {
		return apperrors.NewValidation("rider ID is required")
	}
	if seatCount < 1 {
		return apperrors.ErrInvalidSeatCount
	}
	if _, booked := r.allocations[riderID]; booked {
		return apperrors.ErrAlreadyBooked
	}
	if seatCount > r.remainingSeats {
		return apperrors.ErrInsufficientSeats
	}

	r.allocations[riderID] = seatCount
	r.remainingSeats -= seatCount
	if r.remainingSeats == 0 {
		r.available = false
	}
	r.updatedAt = time.Now().UTC()
	return nil
}

// TotalCostCents returns the price of a reservation of seatCount seats.
func (r *Ride) TotalCostCents(seatCount int) int64 {
	return r.costPerSeatCents * int64(seatCount)
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Ride) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

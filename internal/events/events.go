package events

import (
	"time"

	"github.com/google/uuid"

	rideDomain "github.com/carpool-platform/service-rides/internal/domain/ride"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicRideEvents = "ride.events"
	TopicUserEvents = "user.events"
)

// Event types on ride.events.
const (
	RidePublished     = "ride.published"
	RideDeleted       = "ride.deleted"
	RideSeatsReserved = "ride.seats_reserved"
)

// Event types on user.events, produced by the identity service.
const (
	DriverRegistered     = "driver.registered"
	DriverProfileUpdated = "driver.profile_updated"
	RiderRegistered      = "rider.registered"
)

// RidePublishedEvent is emitted when a driver publishes a new ride.
type RidePublishedEvent struct {
	RideID           uuid.UUID        `json:"ride_id"`
	DriverID         uuid.UUID        `json:"driver_id"`
	Route            rideDomain.Route `json:"route"`
	Schedule         time.Time        `json:"schedule"`
	Capacity         int              `json:"capacity"`
	CostPerSeatCents int64            `json:"cost_per_seat_cents"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

// RideDeletedEvent is emitted when a ride is removed from the catalog.
type RideDeletedEvent struct {
	RideID     uuid.UUID `json:"ride_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideSeatsReservedEvent is emitted after a reservation commits.
type RideSeatsReservedEvent struct {
	RideID         uuid.UUID `json:"ride_id"`
	RiderID        uuid.UUID `json:"rider_id"`
	SeatsBooked    int       `json:"seats_booked"`
	RemainingSeats int       `json:"remaining_seats"`
	TotalCostCents int64     `json:"total_cost_cents"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// DriverRegisteredEvent announces a new driver profile from the identity service.
type DriverRegisteredEvent struct {
	DriverID      uuid.UUID `json:"driver_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Gender        string    `json:"gender"`
	VehicleType   string    `json:"vehicle_type"`
	VehicleModel  string    `json:"vehicle_model"`
	VehicleNumber string    `json:"vehicle_number"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DriverProfileUpdatedEvent carries refreshed driver attributes. Fields left
// empty are unchanged.
type DriverProfileUpdatedEvent struct {
	DriverID      uuid.UUID `json:"driver_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Gender        string    `json:"gender"`
	VehicleType   string    `json:"vehicle_type"`
	VehicleModel  string    `json:"vehicle_model"`
	VehicleNumber string    `json:"vehicle_number"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RiderRegisteredEvent announces a new rider profile from the identity service.
type RiderRegisteredEvent struct {
	RiderID    uuid.UUID `json:"rider_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	OccurredAt time.Time `json:"occurred_at"`
}

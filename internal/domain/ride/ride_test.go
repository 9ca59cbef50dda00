package ride_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rideDomain "github.com/carpool-platform/service-rides/internal/domain/ride"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

func validRoute() rideDomain.Route {
	return rideDomain.Route{
		From: rideDomain.Location{Country: "MY", State: "Selangor", Place: "Shah Alam"},
		To:   rideDomain.Location{Country: "MY", State: "WP", Place: "Kuala Lumpur"},
	}
}

func newTestRide(t *testing.T, capacity int, costCents int64) *rideDomain.Ride {
	t.Helper()
	r, err := rideDomain.NewRide(uuid.New(), validRoute(),
		time.Now().Add(24*time.Hour).UTC(), capacity, costCents)
	require.NoError(t, err)
	return r
}

func TestNewRide_Defaults(t *testing.T) {
	driverID := uuid.New()
	schedule := time.Now().Add(48 * time.Hour).UTC()

	r, err := rideDomain.NewRide(driverID, validRoute(), schedule, 4, 1500)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, r.ID())
	assert.Equal(t, driverID, r.DriverID())
	assert.Equal(t, schedule, r.Schedule())
	assert.Equal(t, 4, r.Capacity())
	assert.Equal(t, 4, r.RemainingSeats(), "a new ride starts fully unbooked")
	assert.True(t, r.Available())
	assert.Empty(t, r.Allocations())
	assert.Equal(t, int64(1), r.Version())
}

func TestNewRide_Validation(t *testing.T) {
	schedule := time.Now().Add(24 * time.Hour).UTC()

	tests := []struct {
		name     string
		driverID uuid.UUID
		route    rideDomain.Route
		schedule time.Time
		capacity int
		cost     int64
	}{
		{"nil driver", uuid.Nil, validRoute(), schedule, 3, 100},
		{"missing origin place", uuid.New(), rideDomain.Route{
			From: rideDomain.Location{Country: "MY", State: "Selangor"},
			To:   validRoute().To,
		}, schedule, 3, 100},
		{"missing destination", uuid.New(), rideDomain.Route{From: validRoute().From}, schedule, 3, 100},
		{"zero schedule", uuid.New(), validRoute(), time.Time{}, 3, 100},
		{"zero capacity", uuid.New(), validRoute(), schedule, 0, 100},
		{"negative capacity", uuid.New(), validRoute(), schedule, -1, 100},
		{"negative cost", uuid.New(), validRoute(), schedule, 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rideDomain.NewRide(tt.driverID, tt.route, tt.schedule, tt.capacity, tt.cost)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestReserveSeats_DecrementsInventory(t *testing.T) {
	r := newTestRide(t, 5, 2000)
	riderID := uuid.New()

	require.NoError(t, r.ReserveSeats(riderID, 2))

	assert.Equal(t, 3, r.RemainingSeats())
	assert.True(t, r.Available())
	seats, booked := r.SeatsBookedBy(riderID)
	assert.True(t, booked)
	assert.Equal(t, 2, seats)
	assert.Equal(t, int64(4000), r.TotalCostCents(2))
}

func TestReserveSeats_LastSeatFlipsAvailability(t *testing.T) {
	r := newTestRide(t, 2, 1000)

	require.NoError(t, r.ReserveSeats(uuid.New(), 1))
	assert.True(t, r.Available())

	require.NoError(t, r.ReserveSeats(uuid.New(), 1))
	assert.Equal(t, 0, r.RemainingSeats())
	assert.False(t, r.Available(), "a full ride must leave the available pool")
}

func TestReserveSeats_RejectsOverbooking(t *testing.T) {
	r := newTestRide(t, 3, 1000)

	err := r.ReserveSeats(uuid.New(), 4)
	require.ErrorIs(t, err, apperrors.ErrInsufficientSeats)
	assert.Equal(t, 3, r.RemainingSeats(), "a failed reservation must not touch inventory")
	assert.True(t, r.Available())
}

func TestReserveSeats_RejectsDoubleBooking(t *testing.T) {
	r := newTestRide(t, 4, 1000)
	riderID := uuid.New()

	require.NoError(t, r.ReserveSeats(riderID, 1))

	err := r.ReserveSeats(riderID, 1)
	require.ErrorIs(t, err, apperrors.ErrAlreadyBooked)
	assert.Equal(t, 3, r.RemainingSeats())
}

func TestReserveSeats_RejectsInvalidCounts(t *testing.T) {
	r := newTestRide(t, 4, 1000)

	for _, n := range []int{0, -1} {
		err := r.ReserveSeats(uuid.New(), n)
		require.ErrorIs(t, err, apperrors.ErrInvalidSeatCount)
	}
	require.Error(t, r.ReserveSeats(uuid.Nil, 1))
	assert.Equal(t, 4, r.RemainingSeats())
}

func TestAllocations_ReturnsCopy(t *testing.T) {
	r := newTestRide(t, 4, 1000)
	riderID := uuid.New()
	require.NoError(t, r.ReserveSeats(riderID, 2))

	allocs := r.Allocations()
	allocs[riderID] = 99

	seats, _ := r.SeatsBookedBy(riderID)
	assert.Equal(t, 2, seats, "mutating the returned map must not leak into the aggregate")
}

func TestReconstruct_RestoresState(t *testing.T) {
	id := uuid.New()
	driverID := uuid.New()
	riderID := uuid.New()
	now := time.Now().UTC()

	r := rideDomain.Reconstruct(id, driverID, validRoute(), now.Add(time.Hour),
		4, 1, 2500, true, map[uuid.UUID]int{riderID: 3}, 7, now, now)

	assert.Equal(t, id, r.ID())
	assert.Equal(t, 1, r.RemainingSeats())
	assert.Equal(t, int64(7), r.Version())
	seats, booked := r.SeatsBookedBy(riderID)
	assert.True(t, booked)
	assert.Equal(t, 3, seats)
	assert.True(t, r.IsOwnedBy(driverID))
	assert.False(t, r.IsOwnedBy(uuid.New()))
}

func TestRouteValidate(t *testing.T) {
	require.NoError(t, validRoute().Validate())

	incomplete := rideDomain.Route{
		From: rideDomain.Location{Country: "MY", State: "Selangor", Place: "Klang"},
		To:   rideDomain.Location{Country: "MY", Place: "Ipoh"},
	}
	require.Error(t, incomplete.Validate())
}

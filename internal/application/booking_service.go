package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	driverDomain "github.com/carpool-platform/service-rides/internal/domain/driver"
	rideDomain "github.com/carpool-platform/service-rides/internal/domain/ride"
	riderDomain "github.com/carpool-platform/service-rides/internal/domain/rider"
	"github.com/carpool-platform/service-rides/internal/events"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
	"github.com/carpool-platform/service-rides/pkg/kafka"
)

// BookingConfirmationDTO is the snapshot returned to a rider after a
// successful reservation: the ride, what was booked, what it costs, and the
// driver's public contact block at booking time.
type BookingConfirmationDTO struct {
	RideID         uuid.UUID        `json:"ride_id"`
	Route          rideDomain.Route `json:"route"`
	Schedule       time.Time        `json:"schedule"`
	SeatsBooked    int              `json:"seats_booked"`
	TotalCostCents int64            `json:"total_cost_cents"`
	Driver         DriverSummaryDTO `json:"driver"`
}

// BookingService coordinates the two operations that mutate a ride's seat
// inventory: reserving seats and deleting the ride. Both take the same
// per-ride lock, so a reservation's precondition check and mutation execute
// as one unit and a delete can never interleave with an in-flight reservation.
// The repository's version check backs this up across service instances.
type BookingService struct {
	rides    rideDomain.RideRepository
	drivers  driverDomain.DriverRepository
	riders   riderDomain.RiderRepository
	producer eventPublisher
	logger   *zap.Logger
	locks    *rideLocks
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	rides rideDomain.RideRepository,
	drivers driverDomain.DriverRepository,
	riders riderDomain.RiderRepository,
	producer eventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		rides:    rides,
		drivers:  drivers,
		riders:   riders,
		producer: producer,
		logger:   logger,
		locks:    newRideLocks(),
	}
}

// ReserveSeats books seatCount seats on a ride for a rider.
//
// Failure modes, in check order: InvalidSeatCount (before any state is read),
// RideNotFound, RiderNotFound, AlreadyBooked, InsufficientSeats. The inventory
// write is atomic; if the follow-up history append fails the reservation is
// already committed and the error is surfaced as internal. Retrying the whole
// call is safe because the history append is idempotent and the AlreadyBooked
// guard stops a second decrement.
func (s *BookingService) ReserveSeats(ctx context.Context, rideID, riderID uuid.UUID, seatCount int) (*BookingConfirmationDTO, error) {
	if seatCount < 1 {
		return nil, apperrors.ErrInvalidSeatCount
	}

	lock := s.locks.get(rideID)
	lock.Lock()
	defer lock.Unlock()

	ride, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	rdr, err := s.riders.FindByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	if err := ride.ReserveSeats(riderID, seatCount); err != nil {
		return nil, err
	}

	ride.IncrementVersion()
	if err := s.rides.Update(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.riders.RecordBooking(ctx, riderID, rideID); err != nil {
		s.logger.Error("reservation committed but rider history update failed",
			zap.String("ride_id", rideID.String()),
			zap.String("rider_id", riderID.String()),
			zap.Error(err),
		)
		return nil, apperrors.NewInternal("failed to record booking history", err)
	}

	s.publishEvent(ctx, events.RideSeatsReserved, rideID.String(), events.RideSeatsReservedEvent{
		RideID:         rideID,
		RiderID:        riderID,
		SeatsBooked:    seatCount,
		RemainingSeats: ride.RemainingSeats(),
		TotalCostCents: ride.TotalCostCents(seatCount),
		OccurredAt:     time.Now().UTC(),
	})

	s.logger.Info("seats reserved",
		zap.String("ride_id", rideID.String()),
		zap.String("rider_id", rdr.ID().String()),
		zap.Int("seats", seatCount),
		zap.Int("remaining", ride.RemainingSeats()),
	)

	confirmation := BookingConfirmationDTO{
		RideID:         rideID,
		Route:          ride.Route(),
		Schedule:       ride.Schedule(),
		SeatsBooked:    seatCount,
		TotalCostCents: ride.TotalCostCents(seatCount),
	}
	if drv, err := s.drivers.FindByID(ctx, ride.DriverID()); err == nil {
		confirmation.Driver = DriverSummaryDTO{
			Name:          drv.Name(),
			Email:         drv.Email(),
			PhoneNumber:   drv.Phone(),
			Gender:        drv.Gender(),
			VehicleType:   drv.VehicleType(),
			VehicleModel:  drv.VehicleModel(),
			VehicleNumber: drv.VehicleNumber(),
		}
	} else {
		s.logger.Warn("driver block missing from confirmation",
			zap.String("driver_id", ride.DriverID().String()),
			zap.Error(err),
		)
	}
	return &confirmation, nil
}

// DeleteRide removes a ride from the catalog and cascades the removal to the
// owning driver's registry. It takes the ride's lock so it cannot interleave
// with a reservation: either the reservation sees RideNotFound, or it commits
// first and the delete follows.
//
// Deleting an already-deleted ride reports RideNotFound. The registry removal
// is an idempotent no-op when the entry is already gone, so a retry after a
// partial failure reconverges.
func (s *BookingService) DeleteRide(ctx context.Context, rideID uuid.UUID) error {
	lock := s.locks.get(rideID)
	lock.Lock()
	defer lock.Unlock()

	ride, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return err
	}

	if err := s.rides.Delete(ctx, rideID); err != nil {
		return err
	}

	if err := s.drivers.RemoveRide(ctx, ride.DriverID(), rideID); err != nil {
		s.logger.Error("ride deleted but driver registry removal failed",
			zap.String("ride_id", rideID.String()),
			zap.String("driver_id", ride.DriverID().String()),
			zap.Error(err),
		)
		return apperrors.NewInternal("failed to remove ride from driver registry", err)
	}

	s.publishEvent(ctx, events.RideDeleted, rideID.String(), events.RideDeletedEvent{
		RideID:     rideID,
		DriverID:   ride.DriverID(),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("ride deleted",
		zap.String("ride_id", rideID.String()),
		zap.String("driver_id", ride.DriverID().String()),
	)
	return nil
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-rides", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicRideEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

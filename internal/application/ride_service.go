package application

import (
	"context"
	"errors"
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

// CreateRideRequest holds the data needed to publish a new ride.
type CreateRideRequest struct {
	Route            rideDomain.Route `json:"route" binding:"required"`
	Schedule         time.Time        `json:"schedule" binding:"required"`
	Capacity         int              `json:"capacity" binding:"required"`
	CostPerSeatCents int64            `json:"cost_per_seat_cents"`
}

// DriverSummaryDTO is the driver's public contact and vehicle block attached
// to ride listings and booking confirmations.
type DriverSummaryDTO struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Gender        string `json:"gender,omitempty"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

// RideDTO is the response representation of a ride.
type RideDTO struct {
	ID               uuid.UUID         `json:"id"`
	DriverID         uuid.UUID         `json:"driver_id"`
	Route            rideDomain.Route  `json:"route"`
	Schedule         time.Time         `json:"schedule"`
	Capacity         int               `json:"capacity"`
	RemainingSeats   int               `json:"remaining_seats"`
	CostPerSeatCents int64             `json:"cost_per_seat_cents"`
	Available        bool              `json:"available"`
	Driver           *DriverSummaryDTO `json:"driver,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// eventPublisher is the slice of the Kafka producer the services need.
type eventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// RideService implements the ride catalog use cases: publishing, lookup and
// listings. Seat mutation and deletion live on BookingService, which owns the
// per-ride serialization point.
type RideService struct {
	rides    rideDomain.RideRepository
	drivers  driverDomain.DriverRepository
	riders   riderDomain.RiderRepository
	producer eventPublisher
	logger   *zap.Logger
}

// NewRideService creates a new RideService.
func NewRideService(
	rides rideDomain.RideRepository,
	drivers driverDomain.DriverRepository,
	riders riderDomain.RiderRepository,
	producer eventPublisher,
	logger *zap.Logger,
) *RideService {
	return &RideService{
		rides:    rides,
		drivers:  drivers,
		riders:   riders,
		producer: producer,
		logger:   logger,
	}
}

// CreateRide publishes a new ride for the driver and registers it in the
// driver's ride registry.
func (s *RideService) CreateRide(ctx context.Context, driverID uuid.UUID, req CreateRideRequest) (*RideDTO, error) {
	if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
		return nil, err
	}

	ride, err := rideDomain.NewRide(driverID, req.Route, req.Schedule, req.Capacity, req.CostPerSeatCents)
	if err != nil {
		return nil, err
	}

	if err := s.rides.Save(ctx, ride); err != nil {
		return nil, apperrors.NewInternal("failed to save ride", err)
	}

	// Registry append is idempotent, so a retry of the whole create after a
	// partial failure converges instead of double-registering.
	if err := s.drivers.AddRide(ctx, driverID, ride.ID()); err != nil {
		s.logger.Error("ride saved but driver registry update failed",
			zap.String("ride_id", ride.ID().String()),
			zap.String("driver_id", driverID.String()),
			zap.Error(err),
		)
		return nil, apperrors.NewInternal("failed to register ride with driver", err)
	}

	s.publishRideEvent(ctx, events.RidePublished, ride.ID().String(), events.RidePublishedEvent{
		RideID:           ride.ID(),
		DriverID:         driverID,
		Route:            ride.Route(),
		Schedule:         ride.Schedule(),
		Capacity:         ride.Capacity(),
		CostPerSeatCents: ride.CostPerSeatCents(),
		OccurredAt:       time.Now().UTC(),
	})

	s.logger.Info("ride published",
		zap.String("ride_id", ride.ID().String()),
		zap.String("driver_id", driverID.String()),
		zap.Int("capacity", ride.Capacity()),
	)

	result := s.toRideDTO(ctx, ride)
	return &result, nil
}

// GetRide retrieves a single ride with its driver block.
func (s *RideService) GetRide(ctx context.Context, rideID uuid.UUID) (*RideDTO, error) {
	ride, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	result := s.toRideDTO(ctx, ride)
	return &result, nil
}

// ListAllRides returns every ride ordered by schedule ascending.
func (s *RideService) ListAllRides(ctx context.Context) ([]RideDTO, error) {
	rides, err := s.rides.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list rides", err)
	}
	return s.toRideDTOs(ctx, rides), nil
}

// ListDriverRides returns the rides belonging to one driver.
func (s *RideService) ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]RideDTO, error) {
	if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
		return nil, err
	}
	rides, err := s.rides.ListByDriverID(ctx, driverID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list driver rides", err)
	}
	return s.toRideDTOs(ctx, rides), nil
}

// ListRiderRides returns the rides a rider has booked, resolved through the
// rider's booking history.
func (s *RideService) ListRiderRides(ctx context.Context, riderID uuid.UUID) ([]RideDTO, error) {
	if _, err := s.riders.FindByID(ctx, riderID); err != nil {
		return nil, err
	}
	rideIDs, err := s.riders.ListBookings(ctx, riderID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list rider bookings", err)
	}
	rides, err := s.rides.ListByIDs(ctx, rideIDs)
	if err != nil {
		return nil, apperrors.NewInternal("failed to load booked rides", err)
	}
	return s.toRideDTOs(ctx, rides), nil
}

// --- Admin methods ---

// RideStatsDTO holds catalog statistics for the admin dashboard.
type RideStatsDTO struct {
	TotalRides     int64 `json:"total_rides"`
	AvailableRides int64 `json:"available_rides"`
	FullRides      int64 `json:"full_rides"`
}

// ListRidesPaged returns a paginated list of all rides (admin).
func (s *RideService) ListRidesPaged(ctx context.Context, page, limit int) ([]RideDTO, int64, error) {
	rides, total, err := s.rides.ListPaged(ctx, page, limit)
	if err != nil {
		return nil, 0, apperrors.NewInternal("failed to list rides page", err)
	}
	return s.toRideDTOs(ctx, rides), total, nil
}

// GetRideStats returns aggregate catalog statistics (admin).
func (s *RideService) GetRideStats(ctx context.Context) (*RideStatsDTO, error) {
	available, full, err := s.rides.CountByAvailability(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to count rides", err)
	}
	return &RideStatsDTO{
		TotalRides:     available + full,
		AvailableRides: available,
		FullRides:      full,
	}, nil
}

// --- Helpers ---

func (s *RideService) toRideDTO(ctx context.Context, ride *rideDomain.Ride) RideDTO {
	dto := RideDTO{
		ID:               ride.ID(),
		DriverID:         ride.DriverID(),
		Route:            ride.Route(),
		Schedule:         ride.Schedule(),
		Capacity:         ride.Capacity(),
		RemainingSeats:   ride.RemainingSeats(),
		CostPerSeatCents: ride.CostPerSeatCents(),
		Available:        ride.Available(),
		CreatedAt:        ride.CreatedAt(),
		UpdatedAt:        ride.UpdatedAt(),
	}
	dto.Driver = s.driverSummary(ctx, ride.DriverID())
	return dto
}

func (s *RideService) toRideDTOs(ctx context.Context, rides []*rideDomain.Ride) []RideDTO {
	// Drivers repeat across rides; resolve each distinct driver once.
	summaries := make(map[uuid.UUID]*DriverSummaryDTO)
	dtos := make([]RideDTO, len(rides))
	for i, ride := range rides {
		dto := RideDTO{
			ID:               ride.ID(),
			DriverID:         ride.DriverID(),
			Route:            ride.Route(),
			Schedule:         ride.Schedule(),
			Capacity:         ride.Capacity(),
			RemainingSeats:   ride.RemainingSeats(),
			CostPerSeatCents: ride.CostPerSeatCents(),
			Available:        ride.Available(),
			CreatedAt:        ride.CreatedAt(),
			UpdatedAt:        ride.UpdatedAt(),
		}
		summary, seen := summaries[ride.DriverID()]
		if !seen {
			summary = s.driverSummary(ctx, ride.DriverID())
			summaries[ride.DriverID()] = summary
		}
		dto.Driver = summary
		dtos[i] = dto
	}
	return dtos
}

func (s *RideService) driverSummary(ctx context.Context, driverID uuid.UUID) *DriverSummaryDTO {
	drv, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDriverNotFound) {
			s.logger.Warn("failed to resolve driver for ride listing",
				zap.String("driver_id", driverID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return &DriverSummaryDTO{
		Name:          drv.Name(),
		Email:         drv.Email(),
		PhoneNumber:   drv.Phone(),
		Gender:        drv.Gender(),
		VehicleType:   drv.VehicleType(),
		VehicleModel:  drv.VehicleModel(),
		VehicleNumber: drv.VehicleNumber(),
	}
}

func (s *RideService) publishRideEvent(ctx context.Context, eventType, key string, data interface{}) {
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

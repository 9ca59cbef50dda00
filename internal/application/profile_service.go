package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	driverDomain "github.com/carpool-platform/service-rides/internal/domain/driver"
	riderDomain "github.com/carpool-platform/service-rides/internal/domain/rider"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// DriverProfileDTO is the read-only view of a driver replica, with the ride
// ids the driver currently owns.
type DriverProfileDTO struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Gender        string      `json:"gender,omitempty"`
	VehicleType   string      `json:"vehicle_type,omitempty"`
	VehicleModel  string      `json:"vehicle_model,omitempty"`
	VehicleNumber string      `json:"vehicle_number,omitempty"`
	RideIDs       []uuid.UUID `json:"ride_ids"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// RiderProfileDTO is the read-only view of a rider replica, with the ride ids
// the rider has booked.
type RiderProfileDTO struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	BookedRides []uuid.UUID `json:"booked_rides"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ProfileService serves read-only driver and rider lookups and applies the
// identity-service events that keep the local replicas current. Registration
// and profile editing belong to the identity service.
type ProfileService struct {
	drivers driverDomain.DriverRepository
	riders  riderDomain.RiderRepository
	logger  *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	drivers driverDomain.DriverRepository,
	riders riderDomain.RiderRepository,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{drivers: drivers, riders: riders, logger: logger}
}

// GetDriver returns a driver's public profile and owned ride ids.
func (s *ProfileService) GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverProfileDTO, error) {
	drv, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	rideIDs, err := s.drivers.ListRideIDs(ctx, driverID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list driver rides", err)
	}
	return &DriverProfileDTO{
		ID:            drv.ID(),
		Name:          drv.Name(),
		Email:         drv.Email(),
		Phone:         drv.Phone(),
		Gender:        drv.Gender(),
		VehicleType:   drv.VehicleType(),
		VehicleModel:  drv.VehicleModel(),
		VehicleNumber: drv.VehicleNumber(),
		RideIDs:       rideIDs,
		UpdatedAt:     drv.UpdatedAt(),
	}, nil
}

// GetRider returns a rider's profile and booking history.
func (s *ProfileService) GetRider(ctx context.Context, riderID uuid.UUID) (*RiderProfileDTO, error) {
	rdr, err := s.riders.FindByID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	booked, err := s.riders.ListBookings(ctx, riderID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list rider bookings", err)
	}
	return &RiderProfileDTO{
		ID:          rdr.ID(),
		Name:        rdr.Name(),
		Email:       rdr.Email(),
		Phone:       rdr.Phone(),
		BookedRides: booked,
		UpdatedAt:   rdr.UpdatedAt(),
	}, nil
}

// RegisterDriver upserts a driver replica from an identity-service event.
func (s *ProfileService) RegisterDriver(ctx context.Context, id uuid.UUID, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber string) error {
	drv, err := driverDomain.NewDriver(id, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber)
	if err != nil {
		return err
	}
	if err := s.drivers.Upsert(ctx, drv); err != nil {
		return apperrors.NewInternal("failed to upsert driver", err)
	}
	s.logger.Info("driver replica registered", zap.String("driver_id", id.String()))
	return nil
}

// UpdateDriverProfile refreshes an existing driver replica. An update for an
// unknown driver falls back to registration so replay order cannot wedge the
// replica.
func (s *ProfileService) UpdateDriverProfile(ctx context.Context, id uuid.UUID, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber string) error {
	drv, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrDriverNotFound) {
			return s.RegisterDriver(ctx, id, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber)
		}
		return err
	}
	drv.UpdateProfile(name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber)
	if err := s.drivers.Upsert(ctx, drv); err != nil {
		return apperrors.NewInternal("failed to update driver", err)
	}
	s.logger.Info("driver replica updated", zap.String("driver_id", id.String()))
	return nil
}

// RegisterRider upserts a rider replica from an identity-service event.
func (s *ProfileService) RegisterRider(ctx context.Context, id uuid.UUID, name, email, phone string) error {
	rdr, err := riderDomain.NewRider(id, name, email, phone)
	if err != nil {
		return err
	}
	if err := s.riders.Upsert(ctx, rdr); err != nil {
		return apperrors.NewInternal("failed to upsert rider", err)
	}
	s.logger.Info("rider replica registered", zap.String("rider_id", id.String()))
	return nil
}

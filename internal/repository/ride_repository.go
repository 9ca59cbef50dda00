package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rideDomain "github.com/carpool-platform/service-rides/internal/domain/ride"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// RideModel is the GORM model for the rides table.
type RideModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DriverID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	Route            json.RawMessage `gorm:"type:jsonb;not null"`
	Schedule         time.Time       `gorm:"type:timestamptz;not null;index"`
	Capacity         int             `gorm:"not null"`
	RemainingSeats   int             `gorm:"not null"`
	CostPerSeatCents int64           `gorm:"not null"`
	Available        bool            `gorm:"not null;index"`
	Allocations      json.RawMessage `gorm:"type:jsonb;not null"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt        time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (RideModel) TableName() string {
	return "rides"
}

// GormRideRepository is the GORM-based implementation of RideRepository.
type GormRideRepository struct {
	db *gorm.DB
}

// NewGormRideRepository creates a new GormRideRepository.
func NewGormRideRepository(db *gorm.DB) *GormRideRepository {
	return &GormRideRepository{db: db}
}

// FindByID retrieves a ride by its unique identifier.
func (r *GormRideRepository) FindByID(ctx context.Context, id uuid.UUID) (*rideDomain.Ride, error) {
	var model RideModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to find ride by ID: %w", err)
	}
	return toDomainRide(&model)
}

// ListAll retrieves every ride ordered by schedule ascending.
func (r *GormRideRepository) ListAll(ctx context.Context) ([]*rideDomain.Ride, error) {
	var models []RideModel
	if err := r.db.WithContext(ctx).Order("schedule ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	return toDomainRides(models)
}

// ListByDriverID retrieves a driver's rides ordered by schedule ascending.
func (r *GormRideRepository) ListByDriverID(ctx context.Context, driverID uuid.UUID) ([]*rideDomain.Ride, error) {
	var models []RideModel
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("schedule ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list driver rides: %w", err)
	}
	return toDomainRides(models)
}

// ListByIDs retrieves rides by id, ordered by schedule ascending. Missing ids
// are skipped.
func (r *GormRideRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*rideDomain.Ride, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []RideModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("schedule ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rides by ids: %w", err)
	}
	return toDomainRides(models)
}

// ListPaged retrieves rides with pagination (admin).
func (r *GormRideRepository) ListPaged(ctx context.Context, page, limit int) ([]*rideDomain.Ride, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RideModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	var models []RideModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("schedule ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rides page: %w", err)
	}

	rides, err := toDomainRides(models)
	if err != nil {
		return nil, 0, err
	}
	return rides, total, nil
}

// CountByAvailability returns ride counts split by availability (admin).
func (r *GormRideRepository) CountByAvailability(ctx context.Context) (int64, int64, error) {
	var available, full int64
	if err := r.db.WithContext(ctx).Model(&RideModel{}).
		Where("available = ?", true).Count(&available).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count available rides: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&RideModel{}).
		Where("available = ?", false).Count(&full).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count full rides: %w", err)
	}
	return available, full, nil
}

// Save persists a new ride.
func (r *GormRideRepository) Save(ctx context.Context, ride *rideDomain.Ride) error {
	model, err := toRideModel(ride)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ride: %w", err)
	}
	return nil
}

// Update persists changes to an existing ride with optimistic locking. The
// write applies only when the stored version equals the version the aggregate
// was loaded at (IncrementVersion has already been called, so that is the
// current version minus one). Zero rows affected means a concurrent writer got
// there first, or the ride was deleted underneath us.
func (r *GormRideRepository) Update(ctx context.Context, ride *rideDomain.Ride) error {
	model, err := toRideModel(ride)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}

	expectedVersion := ride.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RideModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"remaining_seats": model.RemainingSeats,
			"available":       model.Available,
			"allocations":     model.Allocations,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update ride: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflict("ride was modified by another transaction")
	}
	return nil
}

// Delete removes a ride. Deleting an absent ride reports not found.
func (r *GormRideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RideModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ride: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRideNotFound
	}
	return nil
}

// --- Conversion Helpers ---

func toRideModel(ride *rideDomain.Ride) (*RideModel, error) {
	routeJSON, err := json.Marshal(ride.Route())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal route: %w", err)
	}
	allocationsJSON, err := json.Marshal(ride.Allocations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal allocations: %w", err)
	}

	return &RideModel{
		ID:               ride.ID(),
		DriverID:         ride.DriverID(),
		Route:            routeJSON,
		Schedule:         ride.Schedule(),
		Capacity:         ride.Capacity(),
		RemainingSeats:   ride.RemainingSeats(),
		CostPerSeatCents: ride.CostPerSeatCents(),
		Available:        ride.Available(),
		Allocations:      allocationsJSON,
		Version:          ride.Version(),
		CreatedAt:        ride.CreatedAt(),
		UpdatedAt:        ride.UpdatedAt(),
	}, nil
}

func toDomainRide(m *RideModel) (*rideDomain.Ride, error) {
	var route rideDomain.Route
	if err := json.Unmarshal(m.Route, &route); err != nil {
		return nil, fmt.Errorf("failed to unmarshal route: %w", err)
	}

	allocations := make(map[uuid.UUID]int)
	if len(m.Allocations) > 0 {
		if err := json.Unmarshal(m.Allocations, &allocations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allocations: %w", err)
		}
	}

	return rideDomain.Reconstruct(
		m.ID,
		m.DriverID,
		route,
		m.Schedule,
		m.Capacity,
		m.RemainingSeats,
		m.CostPerSeatCents,
		m.Available,
		allocations,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainRides(models []RideModel) ([]*rideDomain.Ride, error) {
	rides := make([]*rideDomain.Ride, len(models))
	for i, m := range models {
		ride, err := toDomainRide(&m)
		if err != nil {
			return nil, err
		}
		rides[i] = ride
	}
	return rides, nil
}

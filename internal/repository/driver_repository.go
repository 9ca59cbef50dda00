package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	driverDomain "github.com/carpool-platform/service-rides/internal/domain/driver"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// DriverModel is the GORM model for the drivers table (local replica of the
// identity service's driver records).
type DriverModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(100);not null"`
	Email         string    `gorm:"type:varchar(255)"`
	Phone         string    `gorm:"type:varchar(30)"`
	Gender        string    `gorm:"type:varchar(10)"`
	VehicleType   string    `gorm:"type:varchar(50)"`
	VehicleModel  string    `gorm:"type:varchar(100)"`
	VehicleNumber string    `gorm:"type:varchar(20)"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

func (DriverModel) TableName() string { return "drivers" }

// DriverRideModel is one row of the driver ride registry: which ride ids a
// driver owns. The composite primary key makes registration idempotent.
type DriverRideModel struct {
	DriverID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	RideID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (DriverRideModel) TableName() string { return "driver_rides" }

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewGormDriverRepository creates a new GormDriverRepository.
func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// FindByID retrieves a driver by ID.
func (r *GormDriverRepository) FindByID(ctx context.Context, id uuid.UUID) (*driverDomain.Driver, error) {
	var model DriverModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	return toDriverDomain(&model), nil
}

// Upsert inserts or refreshes a driver replica.
func (r *GormDriverRepository) Upsert(ctx context.Context, d *driverDomain.Driver) error {
	model := toDriverModel(d)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "gender",
			"vehicle_type", "vehicle_model", "vehicle_number", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert driver: %w", err)
	}
	return nil
}

// AddRide registers a ride id under the driver. The ON CONFLICT DO NOTHING
// clause makes a retried registration a no-op.
func (r *GormDriverRepository) AddRide(ctx context.Context, driverID, rideID uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DriverModel{}).
		Where("id = ?", driverID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check driver existence: %w", err)
	}
	if count == 0 {
		return apperrors.ErrDriverNotFound
	}

	entry := DriverRideModel{
		DriverID:  driverID,
		RideID:    rideID,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to register ride for driver: %w", err)
	}
	return nil
}

// RemoveRide removes a ride id from the driver's registry. Removing an absent
// entry is a no-op.
func (r *GormDriverRepository) RemoveRide(ctx context.Context, driverID, rideID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND ride_id = ?", driverID, rideID).
		Delete(&DriverRideModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove ride from driver registry: %w", err)
	}
	return nil
}

// ListRideIDs returns the driver's ride ids in registration order.
func (r *GormDriverRepository) ListRideIDs(ctx context.Context, driverID uuid.UUID) ([]uuid.UUID, error) {
	var entries []DriverRideModel
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list driver rides: %w", err)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.RideID
	}
	return ids, nil
}

// --- Conversions ---

func toDriverModel(d *driverDomain.Driver) *DriverModel {
	return &DriverModel{
		ID:            d.ID(),
		Name:          d.Name(),
		Email:         d.Email(),
		Phone:         d.Phone(),
		Gender:        d.Gender(),
		VehicleType:   d.VehicleType(),
		VehicleModel:  d.VehicleModel(),
		VehicleNumber: d.VehicleNumber(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}
}

func toDriverDomain(m *DriverModel) *driverDomain.Driver {
	return driverDomain.Reconstruct(
		m.ID,
		m.Name, m.Email, m.Phone, m.Gender,
		m.VehicleType, m.VehicleModel, m.VehicleNumber,
		m.CreatedAt, m.UpdatedAt,
	)
}

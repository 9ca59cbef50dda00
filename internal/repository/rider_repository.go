package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	riderDomain "github.com/carpool-platform/service-rides/internal/domain/rider"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// RiderModel is the GORM model for the riders table (local replica of the
// identity service's rider records).
type RiderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(30)"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (RiderModel) TableName() string { return "riders" }

// RiderBookingModel is one row of a rider's booking history. The composite
// primary key keeps the history free of duplicates under retries.
type RiderBookingModel struct {
	RiderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	RideID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (RiderBookingModel) TableName() string { return "rider_bookings" }

// GormRiderRepository implements RiderRepository using GORM.
type GormRiderRepository struct {
	db *gorm.DB
}

// NewGormRiderRepository creates a new GormRiderRepository.
func NewGormRiderRepository(db *gorm.DB) *GormRiderRepository {
	return &GormRiderRepository{db: db}
}

// FindByID retrieves a rider by ID.
func (r *GormRiderRepository) FindByID(ctx context.Context, id uuid.UUID) (*riderDomain.Rider, error) {
	var model RiderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to find rider: %w", err)
	}
	return toRiderDomain(&model), nil
}

// Upsert inserts or refreshes a rider replica.
func (r *GormRiderRepository) Upsert(ctx context.Context, rd *riderDomain.Rider) error {
	model := toRiderModel(rd)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rider: %w", err)
	}
	return nil
}

// RecordBooking appends a ride id to the rider's history, idempotently.
func (r *GormRiderRepository) RecordBooking(ctx context.Context, riderID, rideID uuid.UUID) error {
	entry := RiderBookingModel{
		RiderID:   riderID,
		RideID:    rideID,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

// ListBookings returns the rider's booked ride ids in booking order.
func (r *GormRiderRepository) ListBookings(ctx context.Context, riderID uuid.UUID) ([]uuid.UUID, error) {
	var entries []RiderBookingModel
	if err := r.db.WithContext(ctx).
		Where("rider_id = ?", riderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list rider bookings: %w", err)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.RideID
	}
	return ids, nil
}

// --- Conversions ---

func toRiderModel(rd *riderDomain.Rider) *RiderModel {
	return &RiderModel{
		ID:        rd.ID(),
		Name:      rd.Name(),
		Email:     rd.Email(),
		Phone:     rd.Phone(),
		CreatedAt: rd.CreatedAt(),
		UpdatedAt: rd.UpdatedAt(),
	}
}

func toRiderDomain(m *RiderModel) *riderDomain.Rider {
	return riderDomain.Reconstruct(m.ID, m.Name, m.Email, m.Phone, m.CreatedAt, m.UpdatedAt)
}

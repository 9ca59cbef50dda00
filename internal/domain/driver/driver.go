package driver

import (
	"time"

	"github.com/google/uuid"

	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// Driver is the rides service's local replica of a driver profile. Drivers are
// registered by the identity service; this service only reads the public
// contact and vehicle attributes and tracks which rides the driver owns.
type Driver struct {
	id            uuid.UUID
	name          string
	email         string
	phone         string
	gender        string
	vehicleType   string
	vehicleModel  string
	vehicleNumber string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewDriver creates a driver replica from identity-service data.
func NewDriver(
	id uuid.UUID,
	name, email, phone, gender string,
	vehicleType, vehicleModel, vehicleNumber string,
) (*Driver, error) {
	if id == uuid.Nil {
		return nil, apperrors.NewValidation("driver ID is required")
	}
	if name == "" {
		return nil, apperrors.NewValidation("driver name is required")
	}

	now := time.Now().UTC()
	return &Driver{
		id:            id,
		name:          name,
		email:         email,
		phone:         phone,
		gender:        gender,
		vehicleType:   vehicleType,
		vehicleModel:  vehicleModel,
		vehicleNumber: vehicleNumber,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Driver from persistence data.
func Reconstruct(
	id uuid.UUID,
	name, email, phone, gender string,
	vehicleType, vehicleModel, vehicleNumber string,
	createdAt, updatedAt time.Time,
) *Driver {
	return &Driver{
		id:            id,
		name:          name,
		email:         email,
		phone:         phone,
		gender:        gender,
		vehicleType:   vehicleType,
		vehicleModel:  vehicleModel,
		vehicleNumber: vehicleNumber,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (d *Driver) ID() uuid.UUID         { return d.id }
func (d *Driver) Name() string          { return d.name }
func (d *Driver) Email() string         { return d.email }
func (d *Driver) Phone() string         { return d.phone }
func (d *Driver) Gender() string        { return d.gender }
func (d *Driver) VehicleType() string   { return d.vehicleType }
func (d *Driver) VehicleModel() string  { return d.vehicleModel }
func (d *Driver) VehicleNumber() string { return d.vehicleNumber }
func (d *Driver) CreatedAt() time.Time  { return d.createdAt }
func (d *Driver) UpdatedAt() time.Time  { return d.updatedAt }

// UpdateProfile refreshes the replica from an identity-service profile event.
func (d *Driver) UpdateProfile(name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber string) {
	if name != "" {
		d.name = name
	}
	if email != "" {
		d.email = email
	}
	if phone != "" {
		d.phone = phone
	}
	if gender != "" {
		d.gender = gender
	}
	if vehicleType != "" {
		d.vehicleType = vehicleType
	}
	if vehicleModel != "" {
		d.vehicleModel = vehicleModel
	}
	if vehicleNumber != "" {
		d.vehicleNumber = vehicleNumber
	}
	d.updatedAt = time.Now().UTC()
}

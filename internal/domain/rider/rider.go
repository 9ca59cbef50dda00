package rider

import (
	"time"

	"github.com/google/uuid"

	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

// Rider is the rides service's local replica of a rider profile, owned by the
// identity service and read-only here.
type Rider struct {
	id        uuid.UUID
	name      string
	email     string
	phone     string
	createdAt time.Time
	updatedAt time.Time
}

// NewRider creates a rider replica from identity-service data.
func NewRider(id uuid.UUID, name, email, phone string) (*Rider, error) {
	if id == uuid.Nil {
		return nil, apperrors.NewValidation("rider ID is required")
	}
	if name == "" {
		return nil, apperrors.NewValidation("rider name is required")
	}

	now := time.Now().UTC()
	return &Rider{
		id:        id,
		name:      name,
		email:     email,
		phone:     phone,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Rider from persistence data.
func Reconstruct(id uuid.UUID, name, email, phone string, createdAt, updatedAt time.Time) *Rider {
	return &Rider{
		id:        id,
		name:      name,
		email:     email,
		phone:     phone,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *Rider) ID() uuid.UUID        { return r.id }
func (r *Rider) Name() string         { return r.name }
func (r *Rider) Email() string        { return r.email }
func (r *Rider) Phone() string        { return r.phone }
func (r *Rider) CreatedAt() time.Time { return r.createdAt }
func (r *Rider) UpdatedAt() time.Time { return r.updatedAt }

package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	driverDomain "github.com/carpool-platform/service-rides/internal/domain/driver"
	rideDomain "github.com/carpool-platform/service-rides/internal/domain/ride"
	riderDomain "github.com/carpool-platform/service-rides/internal/domain/rider"
	"github.com/carpool-platform/service-rides/pkg/apperrors"
	"github.com/carpool-platform/service-rides/pkg/kafka"
)

// memRideRepo is an in-memory RideRepository with the same optimistic-locking
// contract as the GORM implementation: Update applies only when the stored
// version is exactly one behind the incoming aggregate's version.
type memRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*rideDomain.Ride
}

func newMemRideRepo() *memRideRepo {
	return &memRideRepo{rides: make(map[uuid.UUID]*rideDomain.Ride)}
}

func cloneRide(r *rideDomain.Ride) *rideDomain.Ride {
	return rideDomain.Reconstruct(
		r.ID(), r.DriverID(), r.Route(), r.Schedule(),
		r.Capacity(), r.RemainingSeats(), r.CostPerSeatCents(),
		r.Available(), r.Allocations(), r.Version(),
		r.CreatedAt(), r.UpdatedAt(),
	)
}

func (m *memRideRepo) FindByID(_ context.Context, id uuid.UUID) (*rideDomain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, apperrors.ErrRideNotFound
	}
	return cloneRide(r), nil
}

func (m *memRideRepo) ListAll(_ context.Context) ([]*rideDomain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*rideDomain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		out = append(out, cloneRide(r))
	}
	sortBySchedule(out)
	return out, nil
}

func (m *memRideRepo) ListByDriverID(_ context.Context, driverID uuid.UUID) ([]*rideDomain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rideDomain.Ride
	for _, r := range m.rides {
		if r.DriverID() == driverID {
			out = append(out, cloneRide(r))
		}
	}
	sortBySchedule(out)
	return out, nil
}

func (m *memRideRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*rideDomain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rideDomain.Ride
	for _, id := range ids {
		if r, ok := m.rides[id]; ok {
			out = append(out, cloneRide(r))
		}
	}
	sortBySchedule(out)
	return out, nil
}

func (m *memRideRepo) ListPaged(_ context.Context, page, limit int) ([]*rideDomain.Ride, int64, error) {
	all, _ := m.ListAll(context.Background())
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memRideRepo) CountByAvailability(_ context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var available, full int64
	for _, r := range m.rides {
		if r.Available() {
			available++
		} else {
			full++
		}
	}
	return available, full, nil
}

func (m *memRideRepo) Save(_ context.Context, r *rideDomain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID()] = cloneRide(r)
	return nil
}

func (m *memRideRepo) Update(_ context.Context, r *rideDomain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[r.ID()]
	if !ok || stored.Version() != r.Version()-1 {
		return apperrors.NewConflict("ride was modified concurrently")
	}
	m.rides[r.ID()] = cloneRide(r)
	return nil
}

func (m *memRideRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return apperrors.ErrRideNotFound
	}
	delete(m.rides, id)
	return nil
}

func sortBySchedule(rides []*rideDomain.Ride) {
	sort.Slice(rides, func(i, j int) bool {
		return rides[i].Schedule().Before(rides[j].Schedule())
	})
}

// memDriverRepo is an in-memory DriverRepository.
type memDriverRepo struct {
	mu      sync.Mutex
	drivers map[uuid.UUID]*driverDomain.Driver
	rides   map[uuid.UUID][]uuid.UUID
}

func newMemDriverRepo() *memDriverRepo {
	return &memDriverRepo{
		drivers: make(map[uuid.UUID]*driverDomain.Driver),
		rides:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memDriverRepo) FindByID(_ context.Context, id uuid.UUID) (*driverDomain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, apperrors.ErrDriverNotFound
	}
	return d, nil
}

func (m *memDriverRepo) Upsert(_ context.Context, d *driverDomain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID()] = d
	return nil
}

func (m *memDriverRepo) AddRide(_ context.Context, driverID, rideID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driverID]; !ok {
		return apperrors.ErrDriverNotFound
	}
	for _, id := range m.rides[driverID] {
		if id == rideID {
			return nil
		}
	}
	m.rides[driverID] = append(m.rides[driverID], rideID)
	return nil
}

func (m *memDriverRepo) RemoveRide(_ context.Context, driverID, rideID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.rides[driverID]
	for i, id := range ids {
		if id == rideID {
			m.rides[driverID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memDriverRepo) ListRideIDs(_ context.Context, driverID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.rides[driverID]...), nil
}

// memRiderRepo is an in-memory RiderRepository. failRecord makes RecordBooking
// fail, for exercising the partial-failure path.
type memRiderRepo struct {
	mu         sync.Mutex
	riders     map[uuid.UUID]*riderDomain.Rider
	bookings   map[uuid.UUID][]uuid.UUID
	failRecord error
}

func newMemRiderRepo() *memRiderRepo {
	return &memRiderRepo{
		riders:   make(map[uuid.UUID]*riderDomain.Rider),
		bookings: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memRiderRepo) FindByID(_ context.Context, id uuid.UUID) (*riderDomain.Rider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.riders[id]
	if !ok {
		return nil, apperrors.ErrRiderNotFound
	}
	return r, nil
}

func (m *memRiderRepo) Upsert(_ context.Context, r *riderDomain.Rider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders[r.ID()] = r
	return nil
}

func (m *memRiderRepo) RecordBooking(_ context.Context, riderID, rideID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecord != nil {
		return m.failRecord
	}
	for _, id := range m.bookings[riderID] {
		if id == rideID {
			return nil
		}
	}
	m.bookings[riderID] = append(m.bookings[riderID], rideID)
	return nil
}

func (m *memRiderRepo) ListBookings(_ context.Context, riderID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.bookings[riderID]...), nil
}

// capturePublisher records published events instead of writing to Kafka.
type capturePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *capturePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) eventsOfType(eventType string) []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []kafka.CloudEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

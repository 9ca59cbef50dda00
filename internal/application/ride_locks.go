package application

import (
	"sync"

	"github.com/google/uuid"
)

// rideLocks hands out one mutex per ride id so that the check-then-mutate
// window in a reservation or deletion is serialized per ride. Reservations
// against different rides never contend.
//
// Entries are never evicted; a mutex per ride that has seen a mutation is a
// few dozen bytes, and eviction would reopen the race it exists to close.
type rideLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newRideLocks() *rideLocks {
	return &rideLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// get returns the mutex for the ride id, creating it on first use.
func (l *rideLocks) get(rideID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[rideID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[rideID] = m
	}
	return m
}

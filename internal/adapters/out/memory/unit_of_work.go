package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
)

var ErrNoTransaction = errors.New("unit of work has no active transaction")

type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork applies writes as they happen and compensates them on
// Rollback. Readers outside the unit of work may observe uncommitted writes.
type UnitOfWork struct {
	store   *Store
	mu      sync.Mutex
	active  bool
	writes  []write
	tracked []*order.Order
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return nil
	}
	u.active = true
	u.writes = nil
	u.tracked = nil
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return ErrNoTransaction
	}
	u.active = false
	u.writes = nil
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return ErrNoTransaction
	}
	for _, w := range slices.Backward(u.writes) {
		u.store.restore(w)
	}
	u.active = false
	u.writes = nil
	u.tracked = nil
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{store: u.store, journal: u}
}

func (u *UnitOfWork) TrackedOrders() []*order.Order {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.tracked)
}

func (u *UnitOfWork) record(w write, aggregate *order.Order) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		u.writes = append(u.writes, w)
		u.tracked = append(u.tracked, aggregate)
	}
}

// Package memory keeps orders in process memory. It backs local runs and
// tests with the same compare-and-swap guarantees as the postgres store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"

	"github.com/puzpuzpuz/xsync/v3"
)

type record struct {
	snapshot order.Snapshot
	history  []order.Transition
}

// Store is safe for concurrent use. Each write is atomic per order.
type Store struct {
	orders *xsync.MapOf[string, record]
}

func NewStore() *Store {
	return &Store{orders: xsync.NewMapOf[string, record]()}
}

// Repository returns a repository whose writes take effect immediately.
func (s *Store) Repository() *OrderRepository {
	return &OrderRepository{store: s}
}

// write is a single applied mutation, kept so a unit of work can undo it.
type write struct {
	key      string
	previous record
	existed  bool
	version  int64
}

type journal interface {
	record(w write, aggregate *order.Order)
}

var _ ports.OrderRepository = &OrderRepository{}

type OrderRepository struct {
	store   *Store
	journal journal
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	key := aggregate.ID().String()
	stored := record{
		snapshot: persistedSnapshot(aggregate),
		history:  aggregate.Changes(),
	}
	if _, loaded := r.store.orders.LoadOrStore(key, stored); loaded {
		return fmt.Errorf("%w: %s", ports.ErrOrderAlreadyExists, key)
	}
	r.track(write{key: key, version: stored.snapshot.Version}, aggregate)
	return nil
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	key := aggregate.ID().String()
	var (
		previous record
		err      error
	)
	updated, ok := r.store.orders.Compute(key, func(old record, loaded bool) (record, bool) {
		if !loaded {
			err = errs.NewObjectNotFoundError("order", key)
			return old, true
		}
		if old.snapshot.Version != aggregate.Version() || old.snapshot.State != aggregate.BaseState() {
			err = errs.NewVersionIsInvalidErrorWithCause("order", old.snapshot.Version,
				fmt.Errorf("%s holds %s at version %d, write was based on %s at version %d",
					key, old.snapshot.State, old.snapshot.Version, aggregate.BaseState(), aggregate.Version()))
			return old, false
		}
		previous = old
		return record{
			snapshot: persistedSnapshot(aggregate),
			history:  append(slices.Clone(old.history), aggregate.Changes()...),
		}, false
	})
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewObjectNotFoundError("order", key)
	}
	r.track(write{key: key, previous: previous, existed: true, version: updated.snapshot.Version}, aggregate)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.OrderID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	stored, ok := r.store.orders.Load(id.String())
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(stored.snapshot)
}

func (r *OrderRepository) ListByState(_ context.Context, states ...order.State) ([]*order.Order, error) {
	var (
		orders []*order.Order
		err    error
	)
	r.store.orders.Range(func(_ string, stored record) bool {
		if !slices.Contains(states, stored.snapshot.State) {
			return true
		}
		o, restoreErr := order.RestoreOrder(stored.snapshot)
		if restoreErr != nil {
			err = restoreErr
			return false
		}
		orders = append(orders, o)
		return true
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(orders, func(a, b *order.Order) int {
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return orders, nil
}

func (r *OrderRepository) History(_ context.Context, id kernel.OrderID) ([]order.Transition, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	stored, ok := r.store.orders.Load(id.String())
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return slices.Clone(stored.history), nil
}

func (r *OrderRepository) track(w write, aggregate *order.Order) {
	if r.journal != nil {
		r.journal.record(w, aggregate)
	}
}

// restore undoes w unless the order was written again since.
func (s *Store) restore(w write) {
	s.orders.Compute(w.key, func(current record, loaded bool) (record, bool) {
		if !loaded || current.snapshot.Version != w.version {
			return current, !loaded
		}
		if !w.existed {
			return current, true
		}
		return w.previous, false
	})
}

func persistedSnapshot(o *order.Order) order.Snapshot {
	s := o.Snapshot()
	s.Version = o.Version() + 1
	return s
}

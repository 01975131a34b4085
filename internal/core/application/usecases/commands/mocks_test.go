package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"patternfactory/internal/adapters/out/memory"
	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListByState(ctx context.Context, states ...order.State) ([]*order.Order, error) {
	args := m.Called(ctx, states)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) History(ctx context.Context, id kernel.OrderID) ([]order.Transition, error) {
	args := m.Called(ctx, id)
	history, _ := args.Get(0).([]order.Transition)
	return history, args.Error(1)
}

type MockUnitOfWork struct{ mock.Mock }

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUnitOfWork) TrackedOrders() []*order.Order {
	args := m.Called()
	orders, _ := args.Get(0).([]*order.Order)
	return orders
}

type MockUnitOfWorkFactory struct{ mock.Mock }

func (m *MockUnitOfWorkFactory) Create() ports.UnitOfWork {
	args := m.Called()
	return args.Get(0).(ports.UnitOfWork)
}

// recordingPublisher keeps every published transition.
type recordingPublisher struct {
	mu          sync.Mutex
	transitions []order.Transition
}

func (p *recordingPublisher) Publish(_ context.Context, _ *order.Order, transitions []order.Transition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, transitions...)
	return nil
}

func (p *recordingPublisher) triggers() []order.Trigger {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]order.Trigger, 0, len(p.transitions))
	for _, t := range p.transitions {
		out = append(out, t.Trigger)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture is a memory-backed store with an executor publishing into a
// recording publisher.
type fixture struct {
	store     *memory.Store
	executor  *commands.Executor
	published *recordingPublisher
}

func newFixture(t *testing.T, orders ...*order.Order) fixture {
	t.Helper()
	store := memory.NewStore()
	repo := store.Repository()
	for _, o := range orders {
		require.NoError(t, repo.Add(t.Context(), o))
	}

	published := &recordingPublisher{}
	return fixture{
		store:     store,
		executor:  commands.NewExecutor(memory.NewUnitOfWorkFactory(store), published, nil, discardLogger()),
		published: published,
	}
}

func (f fixture) stored(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := f.store.Repository().Get(t.Context(), kernel.MustParseOrderID(id))
	require.NoError(t, err)
	return o
}

func clockAt(offset time.Duration) kernel.Clock {
	return kernel.FixedClock(ordertest.DefaultTime.Add(offset))
}

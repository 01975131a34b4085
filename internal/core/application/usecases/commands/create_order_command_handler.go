package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
)

// CreateOrderCommandHandler stores new orders.
type CreateOrderCommandHandler struct {
	executor *Executor
	clock    kernel.Clock
}

func NewCreateOrderCommandHandler(executor *Executor, clock kernel.Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		executor: executor,
		clock:    clock,
	}
}

// Handle creates the order and returns it as stored. An order ID that is
// already taken yields ports.ErrOrderAlreadyExists.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, command CreateOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	trigger := order.OrderCreated
	if command.IsScanIngest() {
		trigger = order.ScanReceivedTrigger
	}

	return h.executor.run(ctx, "CreateOrder", trigger, func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		created, err := h.newOrder(command)
		if err != nil {
			return nil, err
		}
		if err = repo.Add(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	})
}

func (h CreateOrderCommandHandler) newOrder(command CreateOrderCommand) (*order.Order, error) {
	now := h.clock.Now()
	if !command.IsScanIngest() {
		return order.NewOrder(command.OrderID(), command.Details(), now)
	}

	paid, err := order.NewPaidOrder(command.OrderID(), command.Details(), now)
	if err != nil {
		return nil, err
	}
	scan, err := order.NewScanResult(command.Measurements())
	if err != nil {
		return nil, err
	}
	scanned, _, err := order.Apply(paid, order.ScanReceivedTrigger, scan, kernel.SystemActor, now)
	return scanned, err
}

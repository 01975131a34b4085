package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type SweepDisputeWindowsCommandHandler struct {
	executor *Executor
	disputes *services.DisputeFlow
}

func NewSweepDisputeWindowsCommandHandler(executor *Executor, disputes *services.DisputeFlow) SweepDisputeWindowsCommandHandler {
	return SweepDisputeWindowsCommandHandler{
		executor: executor,
		disputes: disputes,
	}
}

// Handle returns the orders whose state changed, as stored.
func (h SweepDisputeWindowsCommandHandler) Handle(ctx context.Context, command SweepDisputeWindowsCommand) ([]*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "commands.SweepDisputeWindows")
	defer span.End()

	uow := h.executor.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	resolved, err := h.disputes.Sweep(ctx, uow.OrderRepository())
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.executor.publish(ctx, uow.TrackedOrders())

	stored := make([]*order.Order, 0, len(resolved))
	for _, o := range resolved {
		stored = append(stored, o.Persisted())
	}
	span.SetAttributes(attribute.Int("orders.resolved", len(stored)))
	return stored, nil
}

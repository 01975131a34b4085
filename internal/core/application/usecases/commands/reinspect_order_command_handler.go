package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
)

type ReinspectOrderCommandHandler struct {
	executor *Executor
	disputes *services.DisputeFlow
}

func NewReinspectOrderCommandHandler(executor *Executor, disputes *services.DisputeFlow) ReinspectOrderCommandHandler {
	return ReinspectOrderCommandHandler{
		executor: executor,
		disputes: disputes,
	}
}

func (h ReinspectOrderCommandHandler) Handle(ctx context.Context, command ReinspectOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return h.executor.run(ctx, "ReinspectOrder", command.Verdict().Trigger(), func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		return h.disputes.Reinspect(ctx, repo, command.OrderID(), command.Verdict(), command.InspectorID())
	})
}

package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
)

type FileDisputeCommandHandler struct {
	executor *Executor
	disputes *services.DisputeFlow
}

func NewFileDisputeCommandHandler(executor *Executor, disputes *services.DisputeFlow) FileDisputeCommandHandler {
	return FileDisputeCommandHandler{
		executor: executor,
		disputes: disputes,
	}
}

// Handle moves the order to S17b. When the window already closed the order
// is stored as TOTAL_FAIL and *order.DisputeWindowExpiredError is returned.
func (h FileDisputeCommandHandler) Handle(ctx context.Context, command FileDisputeCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return h.executor.run(ctx, "FileDispute", order.DisputeFiled, func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		return h.disputes.FileDispute(ctx, repo, command.OrderID(), command.TailorID(), command.Reason())
	})
}

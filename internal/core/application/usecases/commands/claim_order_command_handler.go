package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
)

type ClaimOrderCommandHandler struct {
	executor *Executor
	claims   *services.ClaimCoordinator
}

func NewClaimOrderCommandHandler(executor *Executor, claims *services.ClaimCoordinator) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		executor: executor,
		claims:   claims,
	}
}

// Handle returns the order in S09 held by the command's tailor, or an
// *order.AlreadyClaimedError naming the tailor who got it first.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, command ClaimOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return h.executor.run(ctx, "ClaimOrder", order.ClaimedByTailor, func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		return h.claims.Claim(ctx, repo, command.OrderID(), command.TailorID())
	})
}

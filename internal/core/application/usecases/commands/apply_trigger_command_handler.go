package commands

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
)

// ApplyTriggerCommandHandler routes a trigger to the domain service that
// owns it: claims go through the claim coordinator so that concurrent
// claims resolve to a single tailor, everything else through the
// transition service.
type ApplyTriggerCommandHandler struct {
	executor    *Executor
	transitions *services.TransitionService
	claims      *services.ClaimCoordinator
}

func NewApplyTriggerCommandHandler(
	executor *Executor,
	transitions *services.TransitionService,
	claims *services.ClaimCoordinator,
) ApplyTriggerCommandHandler {
	return ApplyTriggerCommandHandler{
		executor:    executor,
		transitions: transitions,
		claims:      claims,
	}
}

func (h ApplyTriggerCommandHandler) Handle(ctx context.Context, command ApplyTriggerCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return h.executor.run(ctx, "ApplyTrigger", command.Trigger(), func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		if command.Trigger() == order.ClaimedByTailor {
			claim, ok := command.Payload().(order.ClaimRequest)
			if !ok || claim.Validate() != nil {
				return nil, &order.InvalidPayloadError{Trigger: order.ClaimedByTailor}
			}
			return h.claims.Claim(ctx, repo, command.OrderID(), claim.TailorID())
		}
		return h.transitions.Transition(ctx, repo, command.OrderID(), command.Trigger(), command.Payload(), command.Actor())
	})
}

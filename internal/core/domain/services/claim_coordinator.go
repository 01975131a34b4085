package services

import (
	"context"
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"
)

// ClaimCoordinator hands an order on the job board to exactly one tailor.
//
// The claim is a compare-and-swap of S08 to S09 keyed on the version that
// was read. When several tailors race, the repository accepts one write and
// every other caller re-reads the order and gets an AlreadyClaimedError
// naming the winner.
type ClaimCoordinator struct {
	clock kernel.Clock
}

func NewClaimCoordinator(clock kernel.Clock) *ClaimCoordinator {
	return &ClaimCoordinator{clock: clock}
}

// Claim returns the order in S09 held by tailorID. Claiming an order the
// same tailor already holds succeeds without a write.
func (c *ClaimCoordinator) Claim(ctx context.Context, repo ports.OrderRepository, id kernel.OrderID, tailorID kernel.ActorID) (*order.Order, error) {
	request, err := order.NewClaimRequest(tailorID)
	if err != nil {
		return nil, err
	}

	stored, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, applied, err := order.Apply(stored, order.ClaimedByTailor, request, tailorID, c.clock.Now())
	if err != nil || !applied {
		return next, err
	}

	if err = repo.Update(ctx, next); err != nil {
		if !errors.Is(err, errs.ErrVersionIsInvalid) {
			return nil, err
		}
		return c.lostRace(ctx, repo, id, tailorID)
	}
	return next, nil
}

func (c *ClaimCoordinator) lostRace(ctx context.Context, repo ports.OrderRepository, id kernel.OrderID, tailorID kernel.ActorID) (*order.Order, error) {
	current, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	holder := current.AssignedTailor()
	switch {
	case holder.IsZero():
		return nil, &order.IllegalTransitionError{Current: current.State(), Trigger: order.ClaimedByTailor}
	case holder.IsEqual(tailorID):
		return current, nil
	default:
		return nil, &order.AlreadyClaimedError{OrderID: id, Current: current.State(), ClaimedBy: holder}
	}
}

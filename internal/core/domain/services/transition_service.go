package services

import (
	"context"
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"
)

// TransitionService applies one trigger to a stored order.
//
// The result order carries the applied transitions as pending changes and
// the stored version it was written over; callers use Persisted after the
// surrounding unit of work commits. When the returned error is non-nil and
// the order is not, the order is a lazy resolution (dispute window opened or
// expired) that was stored even though the trigger itself was rejected, and
// the caller should still commit.
type TransitionService struct {
	clock kernel.Clock
}

func NewTransitionService(clock kernel.Clock) *TransitionService {
	return &TransitionService{clock: clock}
}

func (s *TransitionService) Transition(
	ctx context.Context,
	repo ports.OrderRepository,
	id kernel.OrderID,
	trigger order.Trigger,
	payload order.Payload,
	actor kernel.ActorID,
) (*order.Order, error) {
	stored, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resolved := order.Resolve(stored, now)

	next, applied, err := order.Apply(resolved, trigger, payload, actor, now)
	if err != nil {
		return s.storeResolution(ctx, repo, resolved, err)
	}
	if !applied {
		if next.HasChanges() {
			return next, repo.Update(ctx, next)
		}
		return next, nil
	}

	if err = repo.Update(ctx, next); err != nil {
		if !errors.Is(err, errs.ErrVersionIsInvalid) {
			return nil, err
		}
		return s.afterConflict(ctx, repo, id, trigger, payload, actor, err)
	}
	return next, nil
}

// storeResolution writes a pending lazy resolution and reports cause.
func (s *TransitionService) storeResolution(ctx context.Context, repo ports.OrderRepository, resolved *order.Order, cause error) (*order.Order, error) {
	if !resolved.HasChanges() {
		return nil, cause
	}
	if err := repo.Update(ctx, resolved); err != nil {
		if errors.Is(err, errs.ErrVersionIsInvalid) {
			return nil, cause
		}
		return nil, errors.Join(cause, err)
	}
	return resolved, cause
}

// afterConflict re-applies trigger to the order that won a concurrent
// write. Only a replay of the winner's effect counts as success. A trigger
// that would still apply reports the conflict.
func (s *TransitionService) afterConflict(
	ctx context.Context,
	repo ports.OrderRepository,
	id kernel.OrderID,
	trigger order.Trigger,
	payload order.Payload,
	actor kernel.ActorID,
	conflict error,
) (*order.Order, error) {
	current, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, applied, err := order.Apply(current, trigger, payload, actor, s.clock.Now())
	switch {
	case err != nil:
		return nil, err
	case applied:
		return nil, conflict
	case next.HasChanges():
		// Replay over an unstored lazy resolution; the next writer stores it.
		return current, nil
	default:
		return next, nil
	}
}

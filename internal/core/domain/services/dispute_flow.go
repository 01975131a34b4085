package services

import (
	"context"
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"
)

// DisputeFlow drives the QC failure sub-flow: a tailor disputes a failure
// inside the window, an inspector reinspects, and windows that lapse end
// in TOTAL_FAIL.
type DisputeFlow struct {
	clock       kernel.Clock
	transitions *TransitionService
}

func NewDisputeFlow(clock kernel.Clock, transitions *TransitionService) *DisputeFlow {
	return &DisputeFlow{clock: clock, transitions: transitions}
}

// FileDispute moves S17a to S17b for the tailor who produced the garment.
// A window that already closed is recorded as TOTAL_FAIL and reported as
// DisputeWindowExpiredError; the returned order is then non-nil.
func (f *DisputeFlow) FileDispute(ctx context.Context, repo ports.OrderRepository, id kernel.OrderID, tailorID kernel.ActorID, reason string) (*order.Order, error) {
	submission, err := order.NewDisputeSubmission(tailorID, reason)
	if err != nil {
		return nil, &order.InvalidPayloadError{Trigger: order.DisputeFiled, Cause: err}
	}
	return f.transitions.Transition(ctx, repo, id, order.DisputeFiled, submission, tailorID)
}

// Reinspect records the one reinspection verdict a disputed order may get.
func (f *DisputeFlow) Reinspect(ctx context.Context, repo ports.OrderRepository, id kernel.OrderID, verdict order.ReinspectionVerdict, inspectorID kernel.ActorID) (*order.Order, error) {
	result, err := order.NewReinspectionResult(verdict, inspectorID)
	if err != nil {
		return nil, &order.InvalidPayloadError{Trigger: verdict.Trigger(), Cause: err}
	}
	return f.transitions.Transition(ctx, repo, id, verdict.Trigger(), result, inspectorID)
}

// Sweep stores the lazy resolution of every order in the QC failure states:
// fresh failures get their window opened and lapsed windows are closed.
// Orders changed concurrently are skipped; the next sweep picks them up.
func (f *DisputeFlow) Sweep(ctx context.Context, repo ports.OrderRepository) ([]*order.Order, error) {
	candidates, err := repo.ListByState(ctx, order.QCFail, order.QCFailPendingDispute)
	if err != nil {
		return nil, err
	}

	now := f.clock.Now()
	var resolved []*order.Order
	for _, o := range candidates {
		next := order.Resolve(o, now)
		if !next.HasChanges() {
			continue
		}
		if err = repo.Update(ctx, next); err != nil {
			if errors.Is(err, errs.ErrVersionIsInvalid) {
				continue
			}
			return resolved, err
		}
		resolved = append(resolved, next)
	}
	return resolved, nil
}

package commands

import (
	"context"
	"log/slog"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/metrics"
	"patternfactory/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Executor runs a write against the order store and takes care of the
// commit, publication and instrumentation that every command shares.
type Executor struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  ports.TransitionPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewExecutor wires an executor. publisher and m may be nil.
func NewExecutor(uowFactory ports.UnitOfWorkFactory, publisher ports.TransitionPublisher, m *metrics.Metrics, logger *slog.Logger) *Executor {
	return &Executor{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    m,
		logger:     logger.With("component", "Commands"),
	}
}

type work func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error)

// run executes fn in a fresh unit of work. The returned order reads as
// stored after the commit.
func (e *Executor) run(ctx context.Context, name string, trigger order.Trigger, fn work) (*order.Order, error) {
	ctx, span := tracing.Tracer().Start(ctx, "commands."+name)
	defer span.End()
	if trigger != "" {
		span.SetAttributes(attribute.String("order.trigger", string(trigger)))
	}

	result, err := e.execute(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.recordRejection(trigger, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", result.ID().String()),
		attribute.String("order.state", string(result.State())),
	)
	if result.HasChanges() {
		return result.Persisted(), nil
	}
	return result, nil
}

func (e *Executor) execute(ctx context.Context, fn work) (*order.Order, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	result, err := fn(ctx, uow.OrderRepository())
	if err != nil && result == nil {
		return nil, err
	}

	if commitErr := uow.Commit(ctx); commitErr != nil {
		return nil, commitErr
	}
	e.publish(ctx, uow.TrackedOrders())

	if err != nil {
		return nil, err
	}
	return result, nil
}

// publish announces committed transitions. Failures are logged, never
// returned: the store already holds the truth.
func (e *Executor) publish(ctx context.Context, tracked []*order.Order) {
	for _, o := range tracked {
		changes := o.Changes()
		for _, t := range changes {
			e.metrics.RecordTransition(string(t.Trigger), string(t.To))
			if t.Trigger == order.DisputeWindowExpired {
				e.metrics.RecordDisputeExpired()
			}
			e.logger.InfoContext(ctx, "order transitioned",
				"order_id", t.OrderID.String(),
				"from", string(t.From),
				"to", string(t.To),
				"trigger", string(t.Trigger),
				"actor", t.Actor.String(),
			)
		}
		if e.publisher == nil || len(changes) == 0 {
			continue
		}
		if err := e.publisher.Publish(ctx, o, changes); err != nil {
			e.logger.WarnContext(ctx, "transition events not published",
				"order_id", o.ID().String(), "error", err)
		}
	}
}

func (e *Executor) recordRejection(trigger order.Trigger, err error) {
	kind := order.ErrorKind(err)
	if kind == "" {
		return
	}
	e.metrics.RecordRejection(string(trigger), kind)
	if kind == "already_claimed" {
		e.metrics.RecordClaimConflict()
	}
}

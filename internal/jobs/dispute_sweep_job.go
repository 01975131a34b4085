package jobs

import (
	"context"
	"log/slog"

	"patternfactory/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultDisputeSweepSpec runs the sweep once a minute, at second 0.
const DefaultDisputeSweepSpec = "0 * * * * *"

// DisputeSweepJob stores lapsed dispute windows and freshly opened ones so
// that history and events do not wait for the next request on the order.
type DisputeSweepJob struct {
	handler commands.SweepDisputeWindowsCommandHandler
	spec    string
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewDisputeSweepJob(handler commands.SweepDisputeWindowsCommandHandler, spec string, logger *slog.Logger) *DisputeSweepJob {
	if spec == "" {
		spec = DefaultDisputeSweepSpec
	}
	return &DisputeSweepJob{
		handler: handler,
		spec:    spec,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "dispute_sweep_job"),
	}
}

func (j *DisputeSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispute sweep job started", "schedule", j.spec)
	return nil
}

// Run performs one sweep.
func (j *DisputeSweepJob) Run(ctx context.Context) {
	resolved, err := j.handler.Handle(ctx, commands.NewSweepDisputeWindowsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispute sweep job failed", "error", err)
		return
	}
	if len(resolved) > 0 {
		j.logger.InfoContext(ctx, "Dispute windows swept", "orders", len(resolved))
	}
}

func (j *DisputeSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispute sweep job stopped")
}

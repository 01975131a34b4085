package jobs

import (
	"context"
	"log/slog"

	"patternfactory/internal/core/application/usecases/queries"
	"patternfactory/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultSLAMonitorSpec runs the check every 30 seconds.
const DefaultSLAMonitorSpec = "*/30 * * * * *"

// SLAMonitorJob publishes the number of overdue orders per state as a gauge.
type SLAMonitorJob struct {
	handler queries.GetOverdueOrdersQueryHandler
	metrics *metrics.Metrics
	spec    string
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewSLAMonitorJob(handler queries.GetOverdueOrdersQueryHandler, m *metrics.Metrics, spec string, logger *slog.Logger) *SLAMonitorJob {
	if spec == "" {
		spec = DefaultSLAMonitorSpec
	}
	return &SLAMonitorJob{
		handler: handler,
		metrics: m,
		spec:    spec,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "sla_monitor_job"),
	}
}

func (j *SLAMonitorJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "SLA monitor job started", "schedule", j.spec)
	return nil
}

// Run refreshes the overdue gauge and returns the counts it set.
func (j *SLAMonitorJob) Run(ctx context.Context) map[string]int {
	overdue, err := j.handler.Handle(ctx, queries.NewGetOverdueOrdersQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "SLA monitor job failed", "error", err)
		return nil
	}

	counts := make(map[string]int)
	for _, o := range overdue {
		counts[o.Status.State.String()]++
	}
	j.metrics.SetOverdue(counts)

	if len(overdue) > 0 {
		j.logger.WarnContext(ctx, "Orders past their SLA", "count", len(overdue))
	}
	return counts
}

func (j *SLAMonitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "SLA monitor job stopped")
}

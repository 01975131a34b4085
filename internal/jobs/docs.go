// Package jobs provides scheduled background tasks for the order lifecycle
// service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// (with the seconds field enabled).
//
// # Available Jobs
//
// 1. DisputeSweepJob - stores the time-driven QC failure steps (S17 -> S17a,
// and S17a -> S17d once the 24h window lapses) so that history and events
// are not held back until the next request touches the order
// 2. SLAMonitorJob - counts overdue orders per state into the
// patternfactory_orders_overdue gauge
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewDisputeSweepJob(sweepHandler, cfg.DisputeSweepSpec, logger),
//		jobs.NewSLAMonitorJob(overdueHandler, m, cfg.SLAMonitorSpec, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Jobs log failures and wait for the next tick. Reads resolve the dispute
// window on their own, so a missed sweep never changes what callers see.
// Failed job starts stop any already running jobs.
package jobs

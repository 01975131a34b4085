package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	disputeSweepJob *DisputeSweepJob
	slaMonitorJob   *SLAMonitorJob
}

// NewJobManager creates a job manager over already built jobs.
func NewJobManager(disputeSweepJob *DisputeSweepJob, slaMonitorJob *SLAMonitorJob) *JobManager {
	return &JobManager{
		disputeSweepJob: disputeSweepJob,
		slaMonitorJob:   slaMonitorJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.disputeSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispute sweep job: %w", err)
	}

	if err := jm.slaMonitorJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.disputeSweepJob.Stop()
		return fmt.Errorf("failed to start SLA monitor job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.slaMonitorJob.Stop()
	jm.disputeSweepJob.Stop()
}

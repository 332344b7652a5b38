package usecase

import (
	"context"
	"time"

	"IncidentIngest/internal/ports"
)

// Scheduler wires the cron driver with the revalidation job.
type Scheduler struct {
	driver      ports.Scheduler
	revalidator *Revalidator
}

// NewScheduler returns a helper to start/stop recurring revalidation.
func NewScheduler(driver ports.Scheduler, revalidator *Revalidator) *Scheduler {
	return &Scheduler{driver: driver, revalidator: revalidator}
}

// Start registers the revalidation job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.revalidator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_ = s.revalidator.Run(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

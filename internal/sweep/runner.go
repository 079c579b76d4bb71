// Package sweep runs the scheduled reconciliation cycles: payment status
// checks against the gateways and order synchronization with the CRM. One
// runner executes all jobs sequentially under a distributed lock, so at most
// one worker replica sweeps at a time.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/metrics"
)

const defaultInterval = 10 * time.Minute

// RunnerParams configure the sweep runner.
type RunnerParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.SweepMetrics
	Interval time.Duration
}

// Runner executes registered sweep jobs on a fixed cadence.
type Runner struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.SweepMetrics
	interval time.Duration
}

// NewRunner builds a sweep runner.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run starts the sweep loop until the context is canceled. The first cycle
// runs immediately so a fresh deploy does not wait a full interval.
func (r *Runner) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.runCycle(ctx); err != nil {
		r.logg.Error(ctx, "sweep cycle failed", err)
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "sweep runner context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				r.logg.Error(ctx, "sweep cycle failed", err)
			}
		}
	}
}

func (r *Runner) runCycle(ctx context.Context) error {
	locked, err := r.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		r.logg.Info(ctx, "another sweep instance is running; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := r.lock.Release(ctx); relErr != nil {
			r.logg.Error(ctx, "failed to release sweep lock", relErr)
		}
	}()

	r.logg.Info(ctx, "sweep cycle starting")
	for _, job := range r.registry.Jobs() {
		r.runJob(ctx, job)
	}
	r.logg.Info(ctx, "sweep cycle complete")
	return nil
}

// runJob isolates one job: its failure is recorded and logged, never
// propagated, so a broken gateway cannot stall the CRM sync behind it.
func (r *Runner) runJob(ctx context.Context, job Job) {
	jobCtx := r.logg.WithJob(ctx, job.Name())
	r.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	r.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = r.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		r.logg.Error(jobCtx, "job failed", err)
		r.metrics.IncFailure(job.Name())
		return
	}
	r.logg.Info(jobCtx, "job completed")
	r.metrics.IncSuccess(job.Name())
}

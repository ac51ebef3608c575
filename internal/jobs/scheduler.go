// Package jobs runs the service's periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_job_runs_total",
	Help: "Scheduled job runs by job and outcome.",
}, []string{"job", "outcome"})

// Func is a unit of scheduled work. The context is cancelled on shutdown.
type Func func(ctx context.Context) error

// Scheduler wraps a gocron scheduler. Each job runs in singleton mode, so a
// slow run delays the next one instead of overlapping it.
type Scheduler struct {
	s      gocron.Scheduler
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{s: s, logger: logger}, nil
}

// Every registers fn to run each interval.
func (s *Scheduler) Every(name string, interval time.Duration, fn Func) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			s.run(ctx, name, fn)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, fn Func) {
	start := time.Now()
	if err := fn(ctx); err != nil {
		jobRuns.WithLabelValues(name, "error").Inc()
		s.logger.ErrorContext(ctx, "scheduled job failed",
			slog.String("job", name),
			slog.String("error", err.Error()),
		)
		return
	}
	jobRuns.WithLabelValues(name, "ok").Inc()
	s.logger.DebugContext(ctx, "scheduled job finished",
		slog.String("job", name),
		slog.Duration("duration", time.Since(start)),
	)
}

func (s *Scheduler) Start() {
	s.s.Start()
}

// Shutdown stops scheduling and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}

package jobs

import (
	"context"
	"log/slog"
	"time"
)

type Reconciler interface {
	Reconcile(ctx context.Context) error
}

type Limiter interface {
	Sweep(ttl time.Duration) int
}

type SeenStore interface {
	Sweep() int
}

// Maintenance lists the components swept by the scheduler. Nil fields are skipped.
type Maintenance struct {
	Feed              Reconciler
	ReconcileInterval time.Duration

	Limiters      []Limiter
	LimiterIdle   time.Duration
	SeenEvents    SeenStore
	SweepInterval time.Duration
}

// Register adds the maintenance jobs to s.
func (m Maintenance) Register(s *Scheduler, logger *slog.Logger) error {
	if m.Feed != nil {
		if err := s.Every("notification-reconcile", m.ReconcileInterval, m.Feed.Reconcile); err != nil {
			return err
		}
	}
	if len(m.Limiters) > 0 {
		err := s.Every("rate-limit-sweep", m.SweepInterval, func(ctx context.Context) error {
			tracked := 0
			for _, l := range m.Limiters {
				tracked += l.Sweep(m.LimiterIdle)
			}
			logger.DebugContext(ctx, "rate limit clients swept", slog.Int("tracked", tracked))
			return nil
		})
		if err != nil {
			return err
		}
	}
	if m.SeenEvents != nil {
		err := s.Every("event-dedup-sweep", m.SweepInterval, func(context.Context) error {
			m.SeenEvents.Sweep()
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

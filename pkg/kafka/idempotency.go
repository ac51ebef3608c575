package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SeenStore remembers which event IDs were already handled.
type SeenStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
}

// MemorySeenStore keeps IDs for ttl. Expired IDs are purged on Sweep or on lookup.
type MemorySeenStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemorySeenStore(ttl time.Duration) *MemorySeenStore {
	return &MemorySeenStore{ttl: ttl, entries: make(map[string]time.Time), now: time.Now}
}

func (s *MemorySeenStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	if s.now().Sub(at) > s.ttl {
		delete(s.entries, id)
		return false, nil
	}
	return true, nil
}

func (s *MemorySeenStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	s.entries[id] = s.now()
	s.mu.Unlock()
	return nil
}

// Sweep drops expired IDs and returns how many were removed.
func (s *MemorySeenStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *MemorySeenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Deduplicate skips events whose ID is already in store. An event is only
// marked after next succeeds, so a failed attempt is retried on redelivery.
func Deduplicate(store SeenStore, next Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, ev *Event) error {
		if ev.ID == "" {
			return next(ctx, ev)
		}
		seen, err := store.Seen(ctx, ev.ID)
		if err != nil {
			logger.WarnContext(ctx, "seen lookup failed", slog.String("event_id", ev.ID), slog.String("error", err.Error()))
			return next(ctx, ev)
		}
		if seen {
			logger.DebugContext(ctx, "duplicate event skipped", slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))
			return nil
		}
		if err := next(ctx, ev); err != nil {
			return err
		}
		if err := store.MarkSeen(ctx, ev.ID); err != nil {
			logger.WarnContext(ctx, "mark seen failed", slog.String("event_id", ev.ID), slog.String("error", err.Error()))
		}
		return nil
	}
}

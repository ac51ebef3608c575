// Package realtime keeps the admin console's view of incoming contacts: the
// unread counter, the latest pending contacts and the "new contact" toast.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitalcosmeticos/catalog/internal/domain"
)

const (
	DefaultLatestSize = 5
	DefaultToastTTL   = 5 * time.Second
	subscriberBuffer  = 1
)

// ErrDisabled is returned by operations that need an enabled feed.
var ErrDisabled = errors.New("notification feed is disabled")

// ContactSource is where the feed reads its seed state from.
type ContactSource interface {
	CountByStatus(ctx context.Context, status string) (int, error)
	LatestByStatus(ctx context.Context, status string, limit int) ([]domain.Contact, error)
}

// Toast announces a contact that just arrived.
type Toast struct {
	ContactID   string    `json:"contact_id"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	ProductName *string   `json:"product_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Snapshot is the state pushed to subscribers after every change.
type Snapshot struct {
	Enabled bool             `json:"enabled"`
	Unread  int              `json:"unread"`
	Latest  []domain.Contact `json:"latest"`
	Toast   *Toast           `json:"toast,omitempty"`
}

type Config struct {
	LatestSize int
	ToastTTL   time.Duration
}

// Feed is safe for concurrent use. It only tracks contacts while enabled;
// contact events received while disabled are dropped.
type Feed struct {
	source ContactSource
	logger *slog.Logger
	cfg    Config

	mu         sync.Mutex
	enabled    bool
	unread     int
	latest     []domain.Contact
	toast      *Toast
	toastTimer *time.Timer
	toastSeq   uint64
	subs       map[uint64]chan Snapshot
	nextSub    uint64
}

func NewFeed(source ContactSource, cfg Config, logger *slog.Logger) *Feed {
	if cfg.LatestSize <= 0 {
		cfg.LatestSize = DefaultLatestSize
	}
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = DefaultToastTTL
	}
	return &Feed{
		source: source,
		logger: logger,
		cfg:    cfg,
		subs:   make(map[uint64]chan Snapshot),
		latest: []domain.Contact{},
	}
}

// Enable seeds the counter and the latest list from the source and starts
// applying contact events. Enabling an enabled feed reseeds it.
func (f *Feed) Enable(ctx context.Context) error {
	unread, latest, err := f.load(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = true
	f.unread = unread
	f.latest = latest
	f.broadcastLocked()

	f.logger.InfoContext(ctx, "notification feed enabled", slog.Int("unread", unread))
	return nil
}

// Disable stops tracking, cancels a pending toast and closes every
// subscriber channel.
func (f *Feed) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disableLocked()
}

func (f *Feed) disableLocked() {
	if !f.enabled && len(f.subs) == 0 {
		return
	}
	f.enabled = false
	f.unread = 0
	f.latest = []domain.Contact{}
	f.clearToastLocked()
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	f.logger.Info("notification feed disabled")
}

func (f *Feed) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe registers a listener that immediately receives the current
// snapshot. The first subscriber enables the feed and the last one to
// cancel disables it. The channel is closed on cancel or Disable.
func (f *Feed) Subscribe(ctx context.Context) (<-chan Snapshot, func(), error) {
	for {
		f.mu.Lock()
		if f.enabled {
			break
		}
		f.mu.Unlock()

		// A concurrent Disable may land between Enable and the lock above,
		// so check again before registering.
		if err := f.Enable(ctx); err != nil {
			return nil, nil, err
		}
	}
	defer f.mu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	ch <- f.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() { f.unsubscribe(id) })
	}
	return ch, cancel, nil
}

func (f *Feed) unsubscribe(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.subs[id]
	if !ok {
		return
	}
	close(ch)
	delete(f.subs, id)
	if len(f.subs) == 0 {
		f.disableLocked()
	}
}

// Subscribers returns the number of active listeners.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// ContactCreated applies an insert. Only pending contacts count as unread.
func (f *Feed) ContactCreated(c domain.Contact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled || c.Status != domain.ContactPending {
		return
	}

	f.unread++
	f.prependLocked(c)
	f.showToastLocked(c)
	f.broadcastLocked()
}

// ContactUpdated applies a status change from oldStatus to c.Status.
func (f *Feed) ContactUpdated(c domain.Contact, oldStatus string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return
	}

	switch {
	case oldStatus == domain.ContactPending && c.Status != domain.ContactPending:
		f.decrementLocked()
		f.removeLocked(c.ID)
	case oldStatus != "" && oldStatus != domain.ContactPending && c.Status == domain.ContactPending:
		f.unread++
		f.prependLocked(c)
	default:
		for i := range f.latest {
			if f.latest[i].ID == c.ID {
				f.latest[i] = c
			}
		}
	}
	f.broadcastLocked()
}

// MarkAsRead lowers the counter by one, never below zero, and drops the
// contact from the latest list when contactID is set.
func (f *Feed) MarkAsRead(contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return ErrDisabled
	}
	f.decrementLocked()
	if contactID != "" {
		f.removeLocked(contactID)
	}
	f.broadcastLocked()
	return nil
}

// ClearToast dismisses the current toast early.
func (f *Feed) ClearToast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toast == nil {
		return
	}
	f.clearToastLocked()
	f.broadcastLocked()
}

// Reconcile reseeds the counter and the latest list from the source. It is
// a no-op while disabled.
func (f *Feed) Reconcile(ctx context.Context) error {
	if !f.Enabled() {
		return nil
	}
	unread, latest, err := f.load(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return nil
	}
	changed := f.unread != unread || !sameIDs(f.latest, latest)
	f.unread = unread
	f.latest = latest
	if changed {
		f.logger.InfoContext(ctx, "notification feed reconciled", slog.Int("unread", unread))
		f.broadcastLocked()
	}
	return nil
}

func (f *Feed) load(ctx context.Context) (int, []domain.Contact, error) {
	unread, err := f.source.CountByStatus(ctx, domain.ContactPending)
	if err != nil {
		return 0, nil, fmt.Errorf("count pending contacts: %w", err)
	}
	latest, err := f.source.LatestByStatus(ctx, domain.ContactPending, f.cfg.LatestSize)
	if err != nil {
		return 0, nil, fmt.Errorf("load latest contacts: %w", err)
	}
	if latest == nil {
		latest = []domain.Contact{}
	}
	return unread, latest, nil
}

func (f *Feed) decrementLocked() {
	if f.unread > 0 {
		f.unread--
	}
}

func (f *Feed) prependLocked(c domain.Contact) {
	f.removeLocked(c.ID)
	latest := make([]domain.Contact, 0, f.cfg.LatestSize)
	latest = append(latest, c)
	latest = append(latest, f.latest...)
	if len(latest) > f.cfg.LatestSize {
		latest = latest[:f.cfg.LatestSize]
	}
	f.latest = latest
}

func (f *Feed) removeLocked(id string) {
	kept := f.latest[:0:0]
	for _, c := range f.latest {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.latest = kept
}

func (f *Feed) showToastLocked(c domain.Contact) {
	f.clearToastLocked()
	now := time.Now().UTC()
	f.toast = &Toast{
		ContactID:   c.ID,
		Name:        c.Name,
		Message:     c.Message,
		ProductName: c.ProductName,
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   now.Add(f.cfg.ToastTTL),
	}
	seq := f.toastSeq
	f.toastTimer = time.AfterFunc(f.cfg.ToastTTL, func() { f.expireToast(seq) })
}

func (f *Feed) expireToast(seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toastSeq != seq || f.toast == nil {
		return
	}
	f.clearToastLocked()
	f.broadcastLocked()
}

// clearToastLocked bumps the sequence so a timer that already fired but is
// waiting on the lock leaves the next toast alone.
func (f *Feed) clearToastLocked() {
	if f.toastTimer != nil {
		f.toastTimer.Stop()
		f.toastTimer = nil
	}
	f.toast = nil
	f.toastSeq++
}

func (f *Feed) snapshotLocked() Snapshot {
	latest := make([]domain.Contact, len(f.latest))
	copy(latest, f.latest)
	var toast *Toast
	if f.toast != nil {
		t := *f.toast
		toast = &t
	}
	return Snapshot{Enabled: f.enabled, Unread: f.unread, Latest: latest, Toast: toast}
}

// broadcastLocked replaces any undelivered snapshot so slow subscribers
// only ever see the newest state.
func (f *Feed) broadcastLocked() {
	if len(f.subs) == 0 {
		return
	}
	snap := f.snapshotLocked()
	for _, ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func sameIDs(a, b []domain.Contact) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}

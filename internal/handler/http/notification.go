package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalcosmeticos/catalog/internal/realtime"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
	"github.com/vitalcosmeticos/catalog/pkg/validator"
)

const defaultHeartbeat = 25 * time.Second

// NotificationHandler exposes the realtime contact feed to the admin console.
type NotificationHandler struct {
	feed      *realtime.Feed
	heartbeat time.Duration
	logger    *slog.Logger
}

func NewNotificationHandler(feed *realtime.Feed, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{feed: feed, heartbeat: defaultHeartbeat, logger: logger}
}

type MarkReadRequest struct {
	ContactID string `json:"contact_id" validate:"omitempty,uuid"`
}

// Stream handles GET /api/v1/admin/notifications/stream as server-sent
// events. Each change to the feed is sent as a "snapshot" event. The first
// connected console enables the feed and the last one to leave disables it.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	snapshots, cancel, err := h.feed.Subscribe(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "notification feed unavailable", slog.String("error", err.Error()))
		httputil.WriteError(w, r, apperrors.ServiceUnavailable("notifications are unavailable"), h.logger)
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut long-lived streams.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeEvent(w, "snapshot", snap); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// GetSnapshot handles GET /api/v1/admin/notifications
func (h *NotificationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.feed.Snapshot())
}

// MarkRead handles POST /api/v1/admin/notifications/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(w, r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	if err := h.feed.MarkAsRead(req.ContactID); err != nil {
		if errors.Is(err, realtime.ErrDisabled) {
			httputil.WriteError(w, r, apperrors.Conflict("notifications are not active"), h.logger)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.feed.Snapshot())
}

// ClearToast handles DELETE /api/v1/admin/notifications/toast
func (h *NotificationHandler) ClearToast(w http.ResponseWriter, r *http.Request) {
	h.feed.ClearToast()
	httputil.WriteData(w, http.StatusOK, h.feed.Snapshot())
}

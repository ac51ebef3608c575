package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/httpclient"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
)

// ImageFetcher downloads a bounded response body. *httpclient.HostBreakers implements it.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, string, error)
}

// ImageProxyHandler serves store-hosted images from this origin so the
// storefront can draw them on canvases without cross-origin taint.
type ImageProxyHandler struct {
	fetcher  ImageFetcher
	origin   string
	maxBytes int64
	logger   *slog.Logger
}

func NewImageProxyHandler(fetcher ImageFetcher, origin string, maxBytes int64, logger *slog.Logger) *ImageProxyHandler {
	return &ImageProxyHandler{
		fetcher:  fetcher,
		origin:   strings.TrimRight(origin, "/"),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ServeImage handles GET /api/v1/proxy-image/*
func (h *ImageProxyHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimLeft(chi.URLParam(r, "*"), "/")
	if path == "" || strings.Contains(path, "..") {
		httputil.WriteInvalidParameter(w, "image path is required")
		return
	}
	target := h.origin + "/" + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	body, contentType, err := h.fetcher.Fetch(r.Context(), target, h.maxBytes)
	if err != nil {
		httputil.WriteError(w, r, h.upstreamError(r.Context(), target, err), h.logger)
		return
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		httputil.WriteError(w, r, apperrors.InvalidInput("upstream resource is not an image"), h.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *ImageProxyHandler) upstreamError(ctx context.Context, target string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return apperrors.NotFound("image", target)
	}
	h.logger.WarnContext(ctx, "image proxy fetch failed",
		slog.String("url", target),
		slog.Bool("breaker_open", httpclient.IsOpen(err)),
		slog.String("error", err.Error()),
	)
	return apperrors.ServiceUnavailable("image upstream unavailable")
}

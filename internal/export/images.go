package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"

	"github.com/vitalcosmeticos/catalog/pkg/httpclient"
)

// Fetcher downloads a bounded response body. *httpclient.HostBreakers implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, string, error)
}

// ImageConfig controls how product photos are fetched for an export.
type ImageConfig struct {
	MaxBytes    int64
	Concurrency int
	Timeout     time.Duration
	// Store-hosted images are referenced through the same-origin proxy
	// (ProxyPrefix) or by root-relative path. Both resolve to ProxyOrigin.
	ProxyOrigin string
	ProxyPrefix string
}

func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		MaxBytes:    8 << 20,
		Concurrency: 6,
		Timeout:     10 * time.Second,
	}
}

var errUnsupportedURL = errors.New("unsupported image url")

type imageLoader struct {
	fetcher Fetcher
	cfg     ImageConfig
	logger  *slog.Logger
}

func newImageLoader(fetcher Fetcher, cfg ImageConfig, logger *slog.Logger) *imageLoader {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxBytes < 1 {
		cfg.MaxBytes = DefaultImageConfig().MaxBytes
	}
	return &imageLoader{fetcher: fetcher, cfg: cfg, logger: logger}
}

// load fetches every url and fits it into a w x h box. A nil entry in the
// result means the tile falls back to a placeholder. Only cancellation of
// ctx is reported as an error.
func (l *imageLoader) load(ctx context.Context, urls []string, w, h int) ([]image.Image, error) {
	out := make([]image.Image, len(urls))

	var g errgroup.Group
	g.SetLimit(l.cfg.Concurrency)
	for i, raw := range urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			img, err := l.loadOne(ctx, raw, w, h)
			if err != nil {
				reason := fallbackReason(err)
				imageFallbacks.WithLabelValues(reason).Inc()
				l.logger.WarnContext(ctx, "product image replaced by placeholder",
					slog.String("url", raw),
					slog.String("reason", reason),
					slog.String("error", err.Error()),
				)
				return nil
			}
			out[i] = img
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *imageLoader) loadOne(ctx context.Context, raw string, w, h int) (image.Image, error) {
	target, err := l.resolve(raw)
	if err != nil {
		return nil, err
	}
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	body, _, err := l.fetcher.Fetch(ctx, target, l.cfg.MaxBytes)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &decodeError{err: err}
	}
	return imaging.Fit(img, w, h, imaging.Lanczos), nil
}

// resolve maps an image reference to an absolute URL the server can fetch.
func (l *imageLoader) resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errUnsupportedURL
	}
	origin := strings.TrimRight(l.cfg.ProxyOrigin, "/")
	if origin != "" {
		if prefix := strings.TrimRight(l.cfg.ProxyPrefix, "/"); prefix != "" && strings.HasPrefix(raw, prefix+"/") {
			return origin + strings.TrimPrefix(raw, prefix), nil
		}
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return origin + raw, nil
		}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errUnsupportedURL
	}
	return raw, nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode image: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func fallbackReason(err error) string {
	var decodeErr *decodeError
	var statusErr *httpclient.StatusError
	switch {
	case errors.Is(err, errUnsupportedURL):
		return "unsupported_url"
	case errors.As(err, &decodeErr):
		return "decode"
	case httpclient.IsOpen(err):
		return "breaker_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "fetch"
	}
}

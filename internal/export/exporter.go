// Package export renders a digital folder into a printable catalog page,
// delivered as a PDF document or a PNG image.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

const DefaultScale = 2.0

type Config struct {
	Scale  float64
	Images ImageConfig
	Store  StoreContact
}

// Exporter renders folders. It is safe for concurrent use.
type Exporter struct {
	loader   *imageLoader
	renderer *renderer
	logger   *slog.Logger
}

func NewExporter(fetcher Fetcher, cfg Config, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Exporter{
		loader: newImageLoader(fetcher, cfg.Images, logger),
		renderer: &renderer{
			fonts: f,
			scale: cfg.Scale,
			store: cfg.Store,
			now:   time.Now,
		},
		logger: logger,
	}, nil
}

// Export renders folder in the requested format. The artifact is complete
// when returned; nothing is streamed while rendering.
func (e *Exporter) Export(ctx context.Context, folder *domain.DigitalFolder, format Format) (*Artifact, error) {
	if format != FormatPDF && format != FormatPNG {
		return nil, apperrors.InvalidInput("format must be one of: pdf, png")
	}
	start := time.Now()
	artifact, err := e.export(ctx, folder, format)
	exportDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	if err != nil {
		exportsTotal.WithLabelValues(string(format), "error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		e.logger.ErrorContext(ctx, "folder export failed",
			slog.String("folder_id", folder.ID),
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Internal(err)
	}
	exportsTotal.WithLabelValues(string(format), "ok").Inc()
	return artifact, nil
}

func (e *Exporter) export(ctx context.Context, folder *domain.DigitalFolder, format Format) (*Artifact, error) {
	urls := make([]string, len(folder.Products))
	for i := range folder.Products {
		urls[i] = folder.Products[i].FirstImage()
	}
	w, h := e.imageBox()
	images, err := e.loader.load(ctx, urls, w, h)
	if err != nil {
		return nil, err
	}

	page := e.renderer.render(folder, images)

	var body []byte
	switch format {
	case FormatPNG:
		body, err = encodePNG(page)
	default:
		body, err = encodePDF(page, folder.Name, e.renderer.now())
	}
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty %s output", format)
	}
	return &Artifact{
		Filename:    Filename(folder.Name, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// imageBox is the tile image area in device pixels.
func (e *Exporter) imageBox() (int, int) {
	tileWidth := (pageWidth - 2*pagePadding - gridGap*(gridColumns-1)) / gridColumns
	s := e.renderer.scale
	return int(math.Floor((tileWidth - 2*tilePadding) * s)), int(math.Floor(imageHeight * s))
}

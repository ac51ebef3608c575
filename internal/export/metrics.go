package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_folder_exports_total",
		Help: "Folder exports by format and outcome.",
	}, []string{"format", "outcome"})

	exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_folder_export_duration_seconds",
		Help:    "Time spent rendering a folder export.",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"format"})

	imageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_export_image_fallbacks_total",
		Help: "Product images replaced by a placeholder tile, by reason.",
	}, []string{"reason"})
)

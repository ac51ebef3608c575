package http

import (
	"log/slog"
	"net/http"

	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
)

type DashboardHandler struct {
	service *service.DashboardService
	logger  *slog.Logger
}

func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, logger: logger}
}

// GetStats handles GET /api/v1/admin/dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, stats)
}

package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
)

// VisitorIDHeader carries the anonymous visitor id generated by the storefront.
const VisitorIDHeader = "X-Visitor-ID"

type VisitorHandler struct {
	service *service.VisitorService
	logger  *slog.Logger
}

func NewVisitorHandler(svc *service.VisitorService, logger *slog.Logger) *VisitorHandler {
	return &VisitorHandler{service: svc, logger: logger}
}

type promoState struct {
	Shown bool `json:"shown"`
}

// GetPromo handles GET /api/v1/visitor/promo
func (h *VisitorHandler) GetPromo(w http.ResponseWriter, r *http.Request) {
	shown, err := h.service.PromoShown(r.Context(), visitorID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, promoState{Shown: shown})
}

// MarkPromo handles POST /api/v1/visitor/promo
func (h *VisitorHandler) MarkPromo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkPromoShown(r.Context(), visitorID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, promoState{Shown: true})
}

func visitorID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(VisitorIDHeader))
	if len(id) > 128 {
		return ""
	}
	return id
}

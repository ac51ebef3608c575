package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
	"github.com/vitalcosmeticos/catalog/pkg/middleware"
)

// FavoriteHandler serves the signed-in user's favorites. Routes are mounted
// behind OptionalAuth so anonymous visitors get LOGIN_REQUIRED from the
// service rather than a generic 401.
type FavoriteHandler struct {
	service *service.FavoriteService
	logger  *slog.Logger
}

func NewFavoriteHandler(svc *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{service: svc, logger: logger}
}

type favoriteState struct {
	ProductID string `json:"product_id"`
	Favorite  bool   `json:"favorite"`
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// ListFavoriteIDs handles GET /api/v1/favorites/ids
func (h *FavoriteHandler) ListFavoriteIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListIDs(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ids)
}

// GetFavorite handles GET /api/v1/favorites/{productId}
func (h *FavoriteHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(userID, productID string) (bool, error) {
		return h.service.IsFavorite(r.Context(), userID, productID)
	})
}

// AddFavorite handles POST /api/v1/favorites/{productId}
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(userID, productID string) (bool, error) {
		return true, h.service.Add(r.Context(), userID, productID)
	})
}

// RemoveFavorite handles DELETE /api/v1/favorites/{productId}
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(userID, productID string) (bool, error) {
		return false, h.service.Remove(r.Context(), userID, productID)
	})
}

// ToggleFavorite handles POST /api/v1/favorites/{productId}/toggle
func (h *FavoriteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(userID, productID string) (bool, error) {
		return h.service.Toggle(r.Context(), userID, productID)
	})
}

func (h *FavoriteHandler) respond(w http.ResponseWriter, r *http.Request, op func(userID, productID string) (bool, error)) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	favorite, err := op(middleware.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, favoriteState{ProductID: id.String(), Favorite: favorite})
}

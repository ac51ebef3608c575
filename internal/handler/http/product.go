package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vitalcosmeticos/catalog/internal/delivery"
	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
	"github.com/vitalcosmeticos/catalog/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	links   *delivery.Builder
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, links *delivery.Builder, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		links:   links,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Code        string           `json:"code" validate:"required,max=64"`
	Reference   string           `json:"reference" validate:"required,max=64"`
	Stock       string           `json:"stock" validate:"required,oneof=available out_of_stock coming_soon"`
	Images      []string         `json:"images" validate:"omitempty,dive,required"`
	Price       *decimal.Decimal `json:"price"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Code        *string          `json:"code" validate:"omitempty,min=1,max=64"`
	Reference   *string          `json:"reference" validate:"omitempty,min=1,max=64"`
	Stock       *string          `json:"stock" validate:"omitempty,oneof=available out_of_stock coming_soon"`
	Images      []string         `json:"images" validate:"omitempty,dive,required"`
	Price       *decimal.Decimal `json:"price"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
//
// Query: page, limit, category (name), search, stock. With loaded=N the
// next page after the N items already shown is returned instead.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.ProductQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Stock:    q.Get("stock"),
	}

	var ok bool
	if query.Page, ok = intParam(w, q.Get("page"), "page"); !ok {
		return
	}
	if query.Limit, ok = intParam(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if query.Stock != "" && !domain.IsValidStock(query.Stock) {
		httputil.WriteInvalidParameter(w, "stock must be one of: available, out_of_stock, coming_soon")
		return
	}

	var (
		page *domain.ProductPage
		err  error
	)
	if raw := q.Get("loaded"); raw != "" {
		loaded, convErr := strconv.Atoi(raw)
		if convErr != nil || loaded < 0 {
			httputil.WriteInvalidParameter(w, "loaded must be a non-negative integer")
			return
		}
		page, err = h.service.LoadMore(r.Context(), query, loaded)
	} else {
		page, err = h.service.ListProducts(r.Context(), query)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// RegisterView handles POST /api/v1/products/{id}/view
func (h *ProductHandler) RegisterView(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	views, err := h.service.IncrementViews(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]any{"id": id.String(), "views": views})
}

// Inquiry handles GET /api/v1/products/{id}/inquiry and returns the
// WhatsApp link for asking the store about the product.
func (h *ProductHandler) Inquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.links.ProductInquiry(product))
}

// CreateProduct handles POST /api/v1/admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Code:        req.Code,
		Reference:   req.Reference,
		Stock:       req.Stock,
		Images:      req.Images,
		Price:       req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), &service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Code:        req.Code,
		Reference:   req.Reference,
		Stock:       req.Stock,
		Images:      req.Images,
		Price:       req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "deleted"})
}

// intParam parses an optional integer query value. Empty means 0, which
// the services normalize to their defaults.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		httputil.WriteInvalidParameter(w, name+" must be a valid integer")
		return 0, false
	}
	return v, true
}

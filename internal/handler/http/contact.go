package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalcosmeticos/catalog/internal/delivery"
	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
	"github.com/vitalcosmeticos/catalog/pkg/pagination"
	"github.com/vitalcosmeticos/catalog/pkg/validator"
)

type ContactHandler struct {
	service *service.ContactService
	links   *delivery.Builder
	logger  *slog.Logger
}

func NewContactHandler(svc *service.ContactService, links *delivery.Builder, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: svc, links: links, logger: logger}
}

// CreateContactRequest is the public contact form.
type CreateContactRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,max=40"`
	Message     string  `json:"message" validate:"max=4000"`
	ProductID   *string `json:"product_id" validate:"omitempty,uuid"`
	ProductName *string `json:"product_name" validate:"omitempty,max=200"`
}

type UpdateContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending contacted completed"`
}

// CreateContact handles POST /api/v1/contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	contact, err := h.service.CreateContact(r.Context(), &service.CreateContactInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, contact)
}

// ListContacts handles GET /api/v1/admin/contacts?status=&page=&limit=
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListContacts(r.Context(), r.URL.Query().Get("status"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetContact handles GET /api/v1/admin/contacts/{id}
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	contact, err := h.service.GetContact(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, contact)
}

// UpdateContactStatus handles PATCH /api/v1/admin/contacts/{id}/status
func (h *ContactHandler) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req UpdateContactStatusRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	contact, err := h.service.UpdateContactStatus(r.Context(), id.String(), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/v1/admin/contacts/{id}
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.service.DeleteContact(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "deleted"})
}

// ReplyLink handles GET /api/v1/admin/contacts/{id}/reply
func (h *ContactHandler) ReplyLink(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	contact, err := h.service.GetContact(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	link, err := h.links.ContactReply(contact)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, link)
}

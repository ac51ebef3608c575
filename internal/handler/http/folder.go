package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalcosmeticos/catalog/internal/delivery"
	"github.com/vitalcosmeticos/catalog/internal/export"
	"github.com/vitalcosmeticos/catalog/internal/service"
	"github.com/vitalcosmeticos/catalog/pkg/httputil"
	"github.com/vitalcosmeticos/catalog/pkg/validator"
)

type FolderHandler struct {
	service *service.FolderService
	links   *delivery.Builder
	logger  *slog.Logger
}

func NewFolderHandler(svc *service.FolderService, links *delivery.Builder, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{service: svc, links: links, logger: logger}
}

type CreateFolderRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description"`
	ProductIDs  []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
	ClientName  *string  `json:"client_name" validate:"omitempty,max=200"`
	ClientEmail *string  `json:"client_email" validate:"omitempty,email"`
	ClientPhone *string  `json:"client_phone" validate:"omitempty,max=40"`
}

type UpdateFolderRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	ProductIDs  []string `json:"product_ids" validate:"omitempty,min=1,dive,uuid"`
	ClientName  *string  `json:"client_name" validate:"omitempty,max=200"`
	ClientEmail *string  `json:"client_email" validate:"omitempty,email"`
	ClientPhone *string  `json:"client_phone" validate:"omitempty,max=40"`
}

// ListFolders handles GET /api/v1/admin/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.ListFolders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, folders)
}

// GetFolder handles GET /api/v1/admin/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	folder, err := h.service.GetFolder(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, folder)
}

// CreateFolder handles POST /api/v1/admin/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), &service.CreateFolderInput{
		Name:        req.Name,
		Description: req.Description,
		ProductIDs:  req.ProductIDs,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, folder)
}

// UpdateFolder handles PUT /api/v1/admin/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req UpdateFolderRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	folder, err := h.service.UpdateFolder(r.Context(), id.String(), &service.UpdateFolderInput{
		Name:        req.Name,
		Description: req.Description,
		ProductIDs:  req.ProductIDs,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /api/v1/admin/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.service.DeleteFolder(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id.String(), "status": "deleted"})
}

// ExportFolder handles GET /api/v1/admin/folders/{id}/export?format=pdf|png.
// The artifact is rendered completely before the first byte is written.
func (h *FolderHandler) ExportFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	artifact, err := h.service.ExportFolder(r.Context(), id.String(), format)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteAttachment(w, artifact.ContentType, artifact.Filename, artifact.Body)
}

// ShareFolder handles GET /api/v1/admin/folders/{id}/share
func (h *FolderHandler) ShareFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	folder, err := h.service.GetFolder(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	links, err := h.links.FolderShare(folder)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, links)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/export"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

// Exporter renders a folder into a downloadable artifact.
type Exporter interface {
	Export(ctx context.Context, folder *domain.DigitalFolder, format export.Format) (*export.Artifact, error)
}

// FolderService builds digital folders and exports them.
type FolderService struct {
	repo     repository.FolderRepository
	products repository.ProductRepository
	exporter Exporter
	logger   *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	repo repository.FolderRepository,
	products repository.ProductRepository,
	exporter Exporter,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		repo:     repo,
		products: products,
		exporter: exporter,
		logger:   logger,
	}
}

// CreateFolderInput holds the parameters for creating a folder.
type CreateFolderInput struct {
	Name        string
	Description *string
	ProductIDs  []string
	ClientName  *string
	ClientEmail *string
	ClientPhone *string
}

// UpdateFolderInput holds the parameters for updating a folder. When
// ProductIDs is non-nil the products are snapshotted again.
type UpdateFolderInput struct {
	Name        *string
	Description *string
	ProductIDs  []string
	ClientName  *string
	ClientEmail *string
	ClientPhone *string
}

// snapshot loads ids and copies them into folder products. Every id must exist.
func (s *FolderService) snapshot(ctx context.Context, ids []string) ([]domain.FolderProduct, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, apperrors.InvalidInput("select at least one product")
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load folder products: %w", err)
	}
	if len(products) != len(ids) {
		found := make(map[string]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, apperrors.InvalidInput("products not found: " + strings.Join(missing, ", "))
	}

	snap := make([]domain.FolderProduct, 0, len(products))
	for i := range products {
		snap = append(snap, domain.Snapshot(&products[i]))
	}
	return snap, nil
}

func (s *FolderService) CreateFolder(ctx context.Context, input *CreateFolderInput) (*domain.DigitalFolder, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("folder name is required")
	}
	products, err := s.snapshot(ctx, input.ProductIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &domain.DigitalFolder{
		ID:          uuid.New().String(),
		Name:        name,
		Description: input.Description,
		Products:    products,
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		ClientPhone: input.ClientPhone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.logger.InfoContext(ctx, "folder created",
		slog.String("folder_id", folder.ID),
		slog.Int("products", len(products)),
	)
	return folder, nil
}

func (s *FolderService) GetFolder(ctx context.Context, id string) (*domain.DigitalFolder, error) {
	folder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

func (s *FolderService) ListFolders(ctx context.Context) ([]domain.DigitalFolder, error) {
	folders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) UpdateFolder(ctx context.Context, id string, input *UpdateFolderInput) (*domain.DigitalFolder, error) {
	folder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get folder for update: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("folder name must not be empty")
		}
		folder.Name = name
	}
	if input.Description != nil {
		folder.Description = input.Description
	}
	if input.ClientName != nil {
		folder.ClientName = input.ClientName
	}
	if input.ClientEmail != nil {
		folder.ClientEmail = input.ClientEmail
	}
	if input.ClientPhone != nil {
		folder.ClientPhone = input.ClientPhone
	}
	if input.ProductIDs != nil {
		products, err := s.snapshot(ctx, input.ProductIDs)
		if err != nil {
			return nil, err
		}
		folder.Products = products
	}

	if err := s.repo.Update(ctx, folder); err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}
	s.logger.InfoContext(ctx, "folder updated", slog.String("folder_id", folder.ID))
	return folder, nil
}

func (s *FolderService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	s.logger.InfoContext(ctx, "folder deleted", slog.String("folder_id", id))
	return nil
}

// ExportFolder renders the stored folder in the requested format.
func (s *FolderService) ExportFolder(ctx context.Context, id string, format export.Format) (*export.Artifact, error) {
	folder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get folder for export: %w", err)
	}

	artifact, err := s.exporter.Export(ctx, folder, format)
	if err != nil {
		s.logger.ErrorContext(ctx, "folder export failed",
			slog.String("folder_id", id),
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "folder exported",
		slog.String("folder_id", id),
		slog.String("format", string(format)),
		slog.Int("bytes", len(artifact.Body)),
	)
	return artifact, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

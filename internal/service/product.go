package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/pagination"
)

// PageConfig bounds storefront page sizes.
type PageConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// ProductService implements the business logic for the product catalog.
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	pages      PageConfig
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	pages PageConfig,
	logger *slog.Logger,
) *ProductService {
	if pages.DefaultLimit <= 0 {
		pages.DefaultLimit = pagination.DefaultLimit
	}
	if pages.MaxLimit <= 0 {
		pages.MaxLimit = pagination.MaxLimit
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		pages:      pages,
		logger:     logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Code        string
	Reference   string
	Stock       string
	Images      []string
	Price       *decimal.Decimal
}

// UpdateProductInput holds the parameters for updating a product. Nil
// fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Code        *string
	Reference   *string
	Stock       *string
	Images      []string
	Price       *decimal.Decimal
}

func (s *ProductService) params(page, limit int) pagination.Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pages.DefaultLimit
	}
	if limit > s.pages.MaxLimit {
		limit = s.pages.MaxLimit
	}
	return pagination.Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ListProducts returns one page of the storefront listing.
func (s *ProductService) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	p := s.params(q.Page, q.Limit)
	return s.list(ctx, q, p)
}

// LoadMore returns the page that follows the loaded items already shown.
func (s *ProductService) LoadMore(ctx context.Context, q domain.ProductQuery, loaded int) (*domain.ProductPage, error) {
	p := s.params(1, q.Limit)
	if loaded > 0 {
		p.Offset = loaded
		p.Page = loaded/p.Limit + 1
	}
	return s.list(ctx, q, p)
}

func (s *ProductService) list(ctx context.Context, q domain.ProductQuery, p pagination.Params) (*domain.ProductPage, error) {
	if q.Stock != "" && !domain.IsValidStock(q.Stock) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid stock %q: must be one of %s",
			q.Stock, strings.Join(domain.ValidStocks(), ", ")))
	}

	filter := repository.ProductFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  p.Limit,
		Offset: p.Offset,
	}

	if name := strings.TrimSpace(q.Category); name != "" {
		category, err := s.categories.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return emptyPage(p), nil
			}
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		filter.CategoryID = &category.ID
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	page := &domain.ProductPage{Result: pagination.NewResult(products, total, p)}
	page.HasMore = total > p.Offset+p.Limit

	if q.Stock != "" {
		kept := make([]domain.Product, 0, len(products))
		for _, prod := range products {
			if prod.Stock == q.Stock {
				kept = append(kept, prod)
			}
		}
		page.Data = kept
		page.Filtered = true
	}
	return page, nil
}

func emptyPage(p pagination.Params) *domain.ProductPage {
	return &domain.ProductPage{Result: pagination.NewResult([]domain.Product{}, 0, p)}
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProducts returns the products for ids in the given order, skipping
// ids that no longer exist.
func (s *ProductService) GetProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return products, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.categories.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("category not found")
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return category, nil
}

// CreateProduct creates a new product with the given input.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if !domain.IsValidStock(input.Stock) {
		return nil, apperrors.InvalidInput("invalid stock status")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	category, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CategoryID:  &category.ID,
		Category:    category.Name,
		Code:        strings.TrimSpace(input.Code),
		Reference:   strings.TrimSpace(input.Reference),
		Stock:       input.Stock,
		Images:      images,
		Price:       input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("code", product.Code),
	)
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		category, err := s.resolveCategory(ctx, *input.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
		product.Category = category.Name
	}
	if input.Code != nil {
		product.Code = strings.TrimSpace(*input.Code)
	}
	if input.Reference != nil {
		product.Reference = strings.TrimSpace(*input.Reference)
	}
	if input.Stock != nil {
		if !domain.IsValidStock(*input.Stock) {
			return nil, apperrors.InvalidInput("invalid stock status")
		}
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = input.Price
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// IncrementViews records one view of a product and returns the new count.
func (s *ProductService) IncrementViews(ctx context.Context, id string) (int64, error) {
	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

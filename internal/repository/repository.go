package repository

import (
	"context"
	"time"

	"github.com/vitalcosmeticos/catalog/internal/domain"
)

// ProductFilter defines filter criteria for listing products. CategoryID is
// already resolved from the category name.
type ProductFilter struct {
	CategoryID *string
	Search     string
	Limit      int
	Offset     int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs returns the products found, in the order of ids. Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// List returns one page, newest first, and the total number of matches.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	// IncrementViews bumps the view counter atomically and returns the new value.
	IncrementViews(ctx context.Context, id string) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}

type FavoriteRepository interface {
	// Add is idempotent.
	Add(ctx context.Context, userID, productID string) error
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, userID, productID string) (bool, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListProductIDs(ctx context.Context, userID string) ([]string, error)
	ListProducts(ctx context.Context, userID string) ([]domain.Product, error)
}

// ContactFilter narrows the admin contact list.
type ContactFilter struct {
	Status *string
	Limit  int
	Offset int
}

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error)
	// UpdateStatus stores the new status and returns the updated contact with
	// the status it had before.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Contact, string, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int, error)
	LatestByStatus(ctx context.Context, status string, limit int) ([]domain.Contact, error)
}

type FolderRepository interface {
	Create(ctx context.Context, folder *domain.DigitalFolder) error
	GetByID(ctx context.Context, id string) (*domain.DigitalFolder, error)
	List(ctx context.Context) ([]domain.DigitalFolder, error)
	Update(ctx context.Context, folder *domain.DigitalFolder) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type DashboardRepository interface {
	Stats(ctx context.Context, topN, recentN int) (*domain.DashboardStats, error)
}

// FavoriteCache holds each user's favorite product ids. A miss is reported
// as ok == false, not as an error.
type FavoriteCache interface {
	Get(ctx context.Context, userID string) (ids []string, ok bool, err error)
	Set(ctx context.Context, userID string, ids []string) error
	Invalidate(ctx context.Context, userID string) error
}

// VisitorStore keeps per-visitor session flags.
type VisitorStore interface {
	PromoShown(ctx context.Context, visitorID string) (bool, error)
	MarkPromoShown(ctx context.Context, visitorID string, ttl time.Duration) error
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

// FavoriteService manages signed-in users' favorite products. Every call
// needs a user id; anonymous callers get ErrNotLoggedIn and nothing is stored.
type FavoriteService struct {
	repo   repository.FavoriteRepository
	cache  repository.FavoriteCache
	logger *slog.Logger
}

// NewFavoriteService creates a new favorite service. cache may be nil.
func NewFavoriteService(repo repository.FavoriteRepository, cache repository.FavoriteCache, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, cache: cache, logger: logger}
}

func requireUser(userID string) error {
	if userID == "" {
		return apperrors.NotLoggedIn()
	}
	return nil
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.repo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// Toggle flips the favorite state and returns the new one.
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if !removed {
		if err := s.repo.Add(ctx, userID, productID); err != nil {
			return false, fmt.Errorf("toggle favorite: %w", err)
		}
	}
	s.invalidate(ctx, userID)

	s.logger.InfoContext(ctx, "favorite toggled",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Bool("favorite", !removed),
	)
	return !removed, nil
}

// IsFavorite answers from the cached id list when present and otherwise
// checks the single pair in the database.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	if s.cache != nil {
		ids, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "favorites cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return slices.Contains(ids, productID), nil
		}
	}

	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// ListIDs returns the user's favorite product ids, served from the cache
// when possible.
func (s *FavoriteService) ListIDs(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		ids, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "favorites cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return ids, nil
		}
	}

	ids, err := s.repo.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite ids: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, ids); err != nil {
			s.logger.WarnContext(ctx, "favorites cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
	return ids, nil
}

// List returns the favorite products, most recently favorited first.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Product, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return products, nil
}

func (s *FavoriteService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "favorites cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

// VisitorService keeps anonymous session flags keyed by visitor id.
type VisitorService struct {
	store    repository.VisitorStore
	promoTTL time.Duration
}

func NewVisitorService(store repository.VisitorStore, promoTTL time.Duration) *VisitorService {
	return &VisitorService{store: store, promoTTL: promoTTL}
}

func (s *VisitorService) PromoShown(ctx context.Context, visitorID string) (bool, error) {
	if visitorID == "" {
		return false, apperrors.InvalidInput("visitor id is required")
	}
	shown, err := s.store.PromoShown(ctx, visitorID)
	if err != nil {
		return false, fmt.Errorf("promo flag: %w", err)
	}
	return shown, nil
}

func (s *VisitorService) MarkPromoShown(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return apperrors.InvalidInput("visitor id is required")
	}
	if err := s.store.MarkPromoShown(ctx, visitorID, s.promoTTL); err != nil {
		return fmt.Errorf("mark promo shown: %w", err)
	}
	return nil
}

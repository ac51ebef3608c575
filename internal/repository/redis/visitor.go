package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const promoKeyPrefix = "visitor:promo:"

// VisitorStore implements repository.VisitorStore using Redis keys that
// expire on their own.
type VisitorStore struct {
	client *redis.Client
}

func NewVisitorStore(client *redis.Client) *VisitorStore {
	return &VisitorStore{client: client}
}

func (s *VisitorStore) PromoShown(ctx context.Context, visitorID string) (bool, error) {
	n, err := s.client.Exists(ctx, promoKeyPrefix+visitorID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists promo flag: %w", err)
	}
	return n > 0, nil
}

func (s *VisitorStore) MarkPromoShown(ctx context.Context, visitorID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, promoKeyPrefix+visitorID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set promo flag: %w", err)
	}
	return nil
}

package cache

import (
	"context"

	"house-rent/internal/shared/model"
)

// NoOpCache 不做任何缓存，Redis 未启用或不可达时使用
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetVisibleListings(ctx context.Context) ([]*model.Property, bool, error) {
	return nil, false, nil
}

func (c *NoOpCache) ListingsGeneration(ctx context.Context) (int64, error) {
	return 0, nil
}

func (c *NoOpCache) SetVisibleListings(ctx context.Context, gen int64, listings []*model.Property) (bool, error) {
	return false, nil
}

func (c *NoOpCache) InvalidateListings(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

var _ ListingCache = (*NoOpCache)(nil)

// Package redis Redis 缓存实现
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"house-rent/internal/shared/cache"
)

// Store Redis 缓存存储
type Store struct {
	client     *redis.Client
	listingTTL time.Duration
}

var _ cache.ListingCache = (*Store)(nil)

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string, listingTTL time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	return NewStoreFromClient(client, listingTTL), nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例
func NewStoreFromClient(client *redis.Client, listingTTL time.Duration) *Store {
	if listingTTL <= 0 {
		listingTTL = cache.TTLVisibleListings
	}
	return &Store{client: client, listingTTL: listingTTL}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

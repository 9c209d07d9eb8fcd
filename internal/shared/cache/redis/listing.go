package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"house-rent/internal/shared/cache"
	"house-rent/internal/shared/model"
)

// GetVisibleListings 读取公开房源列表缓存
func (s *Store) GetVisibleListings(ctx context.Context) ([]*model.Property, bool, error) {
	data, err := s.client.Get(ctx, cache.KeyVisibleListings).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var listings []*model.Property
	if err := json.Unmarshal(data, &listings); err != nil {
		// 损坏的缓存直接丢弃
		s.client.Del(ctx, cache.KeyVisibleListings)
		return nil, false, fmt.Errorf("decode cached listings: %w", err)
	}
	return listings, true, nil
}

// setIfGeneration 代数未变化时写入列表
//
//	KEYS[1] 代数 key，KEYS[2] 列表 key
//	ARGV[1] 期望代数，ARGV[2] 列表 JSON，ARGV[3] TTL 毫秒
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ListingsGeneration 读取当前缓存代数，未初始化时为 0
func (s *Store) ListingsGeneration(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, cache.KeyListingsGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetVisibleListings 写入公开房源列表缓存，期间发生过失效则不写
func (s *Store) SetVisibleListings(ctx context.Context, gen int64, listings []*model.Property) (bool, error) {
	if listings == nil {
		listings = []*model.Property{}
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return false, fmt.Errorf("encode listings: %w", err)
	}
	stored, err := setIfGeneration.Run(ctx, s.client,
		[]string{cache.KeyListingsGeneration, cache.KeyVisibleListings},
		strconv.FormatInt(gen, 10), data, s.listingTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// InvalidateListings 删除公开房源列表缓存并递增代数
func (s *Store) InvalidateListings(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cache.KeyListingsGeneration)
		pipe.Del(ctx, cache.KeyVisibleListings)
		return nil
	})
	return err
}

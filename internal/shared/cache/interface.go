// Package cache 缓存层抽象接口
//
// 缓存公开房源列表，当前由 Redis 实现。缓存只是加速层：
// 读取失败按未命中处理，任何房源写入后由服务层调用 InvalidateListings。
//
// 失效会递增缓存代数。读者在查询存储前取代数，写回时代数已变化则放弃写入，
// 避免把失效前读到的旧列表写回缓存。
package cache

import (
	"context"

	"house-rent/internal/shared/model"
)

// ListingCache 公开房源列表缓存
type ListingCache interface {
	// GetVisibleListings 命中时 hit=true
	GetVisibleListings(ctx context.Context) (listings []*model.Property, hit bool, err error)
	// ListingsGeneration 当前缓存代数
	ListingsGeneration(ctx context.Context) (int64, error)
	// SetVisibleListings 仅当代数仍为 gen 时写入，stored 表示是否写入
	SetVisibleListings(ctx context.Context, gen int64, listings []*model.Property) (stored bool, err error)
	// InvalidateListings 删除缓存并递增代数
	InvalidateListings(ctx context.Context) error
	Close() error
}

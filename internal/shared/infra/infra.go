// Package infra 基础设施聚合层
//
// 提供统一的基础设施初始化和依赖注入，包括：
//   - Storage：持久化存储（MongoDB / PostgreSQL / SQLite / 内存示例数据）
//   - Cache：房源列表缓存（Redis）
//   - EventBus：预约事件流（Redis Streams）
package infra

import (
	"log"
	"time"

	"house-rent/internal/shared/cache"
	"house-rent/internal/shared/eventbus"
	"house-rent/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	Storage  storage.PersistentStore
	Cache    cache.ListingCache
	EventBus eventbus.BookingEventBus

	redis *RedisInfra
}

// RedisOptions Redis 接入参数
type RedisOptions struct {
	Enabled    bool
	URL        string
	ListingTTL time.Duration
}

// New 组装基础设施
//
// Redis 未启用或不可达时，缓存退化为 NoOp，事件流退化为进程内日志。
func New(store storage.PersistentStore, opts RedisOptions) *Infrastructure {
	inf := &Infrastructure{Storage: store}

	if opts.Enabled {
		r, err := NewRedisInfra(opts.URL, opts.ListingTTL)
		if err == nil {
			inf.redis = r
			inf.Cache = r.Cache()
			inf.EventBus = r.EventBus()
			return inf
		}
		log.Printf("[infra] WARNING: Redis unavailable (%v), using no-op cache and in-process event log", err)
	}

	inf.Cache = cache.NewNoOpCache()
	inf.EventBus = eventbus.NewMemoryEventBus()
	return inf
}

// RedisConnected Redis 是否已接入
func (i *Infrastructure) RedisConnected() bool {
	return i.redis != nil
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Cache != nil {
		if err := i.Cache.Close(); err != nil {
			lastErr = err
		}
	}

	if i.EventBus != nil {
		if err := i.EventBus.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

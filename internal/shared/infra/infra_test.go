package infra

import (
	"testing"
	"time"

	"house-rent/internal/shared/cache"
	"house-rent/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
)

func TestNewWithoutRedis(t *testing.T) {
	tests := []struct {
		name string
		opts RedisOptions
	}{
		{"未启用 Redis", RedisOptions{Enabled: false}},
		{"Redis 不可达", RedisOptions{Enabled: true, URL: "redis://127.0.0.1:1/0", ListingTTL: time.Second}},
		{"URL 非法", RedisOptions{Enabled: true, URL: "://bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := New(nil, tt.opts)
			assert.False(t, inf.RedisConnected())
			assert.IsType(t, &cache.NoOpCache{}, inf.Cache)
			assert.IsType(t, &eventbus.MemoryEventBus{}, inf.EventBus)
			assert.NoError(t, inf.Close())
		})
	}
}

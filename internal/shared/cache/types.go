package cache

import "time"

const (
	// KeyVisibleListings 公开房源列表（JSON，已包含 owner 关联信息）
	KeyVisibleListings = "listings:visible"

	// KeyListingsGeneration 公开房源列表缓存代数，每次失效 INCR
	KeyListingsGeneration = "listings:gen"

	// TTLVisibleListings 默认缓存时长
	TTLVisibleListings = 60 * time.Second
)

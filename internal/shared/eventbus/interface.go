// Package eventbus 事件总线抽象接口
//
// 记录预约生命周期事件（创建、状态变更），用于管理员审计。
// 当前由 Redis Streams 实现；Redis 不可用时退回进程内事件日志。
package eventbus

import (
	"context"
)

// BookingEventBus 预约事件总线
type BookingEventBus interface {
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error
	// GetBookingEvents 按发生顺序返回最近 count 条事件，count<=0 表示全部
	GetBookingEvents(ctx context.Context, bookingID string, count int64) ([]*BookingEvent, error)
	Close() error
}

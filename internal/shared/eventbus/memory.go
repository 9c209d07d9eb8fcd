package eventbus

import (
	"context"
	"fmt"
	"sync"
)

// MemoryEventBus 进程内事件日志
//
// Redis 未启用或不可达时使用，进程重启后事件丢失。
type MemoryEventBus struct {
	mu     sync.RWMutex
	seq    int64
	events map[string][]*BookingEvent
}

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{events: make(map[string][]*BookingEvent)}
}

func (b *MemoryEventBus) PublishBookingEvent(ctx context.Context, event *BookingEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	e := *event
	e.ID = fmt.Sprintf("mem-%d", b.seq)

	list := append(b.events[e.BookingID], &e)
	if len(list) > MaxStreamLength {
		list = list[len(list)-MaxStreamLength:]
	}
	b.events[e.BookingID] = list
	return nil
}

func (b *MemoryEventBus) GetBookingEvents(ctx context.Context, bookingID string, count int64) ([]*BookingEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.events[bookingID]
	if count > 0 && int64(len(list)) > count {
		list = list[int64(len(list))-count:]
	}
	out := make([]*BookingEvent, 0, len(list))
	for _, e := range list {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (b *MemoryEventBus) Close() error {
	return nil
}

var _ BookingEventBus = (*MemoryEventBus)(nil)

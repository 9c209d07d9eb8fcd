// Package redis 基于 Redis Streams 的预约事件总线
package redis

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"house-rent/internal/shared/eventbus"
	"house-rent/internal/shared/model"
)

// Store Redis 事件总线
type Store struct {
	client *redis.Client
}

var _ eventbus.BookingEventBus = (*Store)(nil)

// NewStoreFromClient 从现有 Redis 客户端创建事件总线
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func streamKey(bookingID string) string {
	return eventbus.KeyBookingEvents + bookingID
}

// PublishBookingEvent 追加预约事件
func (s *Store) PublishBookingEvent(ctx context.Context, event *eventbus.BookingEvent) error {
	args := &redis.XAddArgs{
		Stream: streamKey(event.BookingID),
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"type":        event.Type,
			"property_id": event.PropertyID,
			"from":        string(event.From),
			"to":          string(event.To),
			"actor_id":    event.ActorID,
			"actor_role":  string(event.ActorRole),
			"timestamp":   event.Timestamp.Format(time.RFC3339Nano),
		},
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	log.Printf("[Redis/EventBus] Published event: booking=%s id=%s type=%s", event.BookingID, id, event.Type)
	return nil
}

// GetBookingEvents 读取预约事件
func (s *Store) GetBookingEvents(ctx context.Context, bookingID string, count int64) ([]*eventbus.BookingEvent, error) {
	var (
		msgs []redis.XMessage
		err  error
	)
	if count > 0 {
		// 近似裁剪时流可能超过 count 条，倒序取最新的再翻转
		msgs, err = s.client.XRevRangeN(ctx, streamKey(bookingID), "+", "-", count).Result()
		slices.Reverse(msgs)
	} else {
		msgs, err = s.client.XRange(ctx, streamKey(bookingID), "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking events: %w", err)
	}

	events := make([]*eventbus.BookingEvent, 0, len(msgs))
	for _, msg := range msgs {
		e := &eventbus.BookingEvent{
			ID:         msg.ID,
			BookingID:  bookingID,
			Type:       str(msg.Values, "type"),
			PropertyID: str(msg.Values, "property_id"),
			From:       model.BookingStatus(str(msg.Values, "from")),
			To:         model.BookingStatus(str(msg.Values, "to")),
			ActorID:    str(msg.Values, "actor_id"),
			ActorRole:  model.UserRole(str(msg.Values, "actor_role")),
		}
		if t, err := time.Parse(time.RFC3339Nano, str(msg.Values, "timestamp")); err == nil {
			e.Timestamp = t
		}
		events = append(events, e)
	}
	return events, nil
}

// Close 由持有 client 的 infra 负责关闭连接
func (s *Store) Close() error {
	return nil
}

func str(values map[string]interface{}, key string) string {
	v, _ := values[key].(string)
	return v
}

package eventbus

import (
	"time"

	"house-rent/internal/shared/model"
)

// EventBookingSubmitted 预约提交事件
const EventBookingSubmitted = "booking.submitted"

// StatusEventType 状态变更事件类型：booking.<status>
func StatusEventType(status model.BookingStatus) string {
	return "booking." + string(status)
}

// BookingEvent 预约生命周期事件
type BookingEvent struct {
	ID         string              `json:"id"`
	BookingID  string              `json:"bookingId"`
	PropertyID string              `json:"propertyId"`
	Type       string              `json:"type"`
	From       model.BookingStatus `json:"from,omitempty"`
	To         model.BookingStatus `json:"to"`
	ActorID    string              `json:"actorId"`
	ActorRole  model.UserRole      `json:"actorRole"`
	Timestamp  time.Time           `json:"timestamp"`
}

const (
	// KeyBookingEvents Stream key 前缀
	KeyBookingEvents = "booking_events:"

	// MaxStreamLength 单个预约的事件上限
	MaxStreamLength = 100
)

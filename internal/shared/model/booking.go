package model

import (
	"strings"
	"time"
)

// BookingStatus 预约状态
//
// 状态机：pending → approved | rejected | cancelled（三者均为终态）
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Terminal 是否为终态
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusApproved || s == BookingStatusRejected || s == BookingStatusCancelled
}

// TimeSlot 看房时段
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "Morning (9AM - 12PM)"
	TimeSlotAfternoon TimeSlot = "Afternoon (12PM - 4PM)"
	TimeSlotEvening   TimeSlot = "Evening (4PM - 8PM)"
)

// ParseTimeSlot 解析时段，接受完整标签或 morning/afternoon/evening 关键字（不区分大小写）
func ParseTimeSlot(s string) (TimeSlot, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "morning" || v == strings.ToLower(string(TimeSlotMorning)):
		return TimeSlotMorning, true
	case v == "afternoon" || v == strings.ToLower(string(TimeSlotAfternoon)):
		return TimeSlotAfternoon, true
	case v == "evening" || v == strings.ToLower(string(TimeSlotEvening)):
		return TimeSlotEvening, true
	}
	return "", false
}

// ContactInfo 提交预约时的联系方式快照，与 User 记录相互独立
type ContactInfo struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// Booking 看房预约
//
// Version 为乐观锁版本号，每次状态写入 +1。
type Booking struct {
	ID            string        `json:"id" bson:"_id" db:"id"`
	PropertyID    string        `json:"propertyId" bson:"property_id" db:"property_id"`
	RenterID      string        `json:"renterId" bson:"renter_id" db:"renter_id"`
	ContactInfo   ContactInfo   `json:"contactInfo" bson:"contact_info"`
	Message       string        `json:"message" bson:"message" db:"message"`
	PreferredDate time.Time     `json:"preferredDate" bson:"preferred_date" db:"preferred_date"`
	PreferredTime TimeSlot      `json:"preferredTime" bson:"preferred_time" db:"preferred_time"`
	Status        BookingStatus `json:"status" bson:"status" db:"status"`
	Version       int64         `json:"version" bson:"version" db:"version"`
	CreatedAt     time.Time     `json:"createdAt" bson:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updated_at" db:"updated_at"`

	// 关联字段（查询时填充，不落库）
	Property *PropertySummary `json:"property,omitempty" bson:"-" db:"-"`
	Renter   *UserSummary     `json:"renter,omitempty" bson:"-" db:"-"`
}

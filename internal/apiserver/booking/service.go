// Package booking 看房预约状态机
//
// 状态流转：
//
//	pending → approved | rejected | cancelled
//
// renter 提交和取消自己的预约；owner 处理自己房源上的预约；admin 可处理任意预约。
// 所有状态写入都以 version 做 CAS，并发修改返回 Conflict。
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/eventbus"
	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/pkg/logging"
)

// 对外错误消息
const (
	msgRenterOnly          = "Only renters can submit booking requests"
	msgPropertyIDRequired  = "Property ID is required"
	msgContactRequired     = "Contact information object is required"
	msgContactIncomplete   = "Contact information must include name, email, and phone"
	msgMessageRequired     = "Message is required"
	msgDateRequired        = "Preferred date is required"
	msgTimeRequired        = "Preferred time is required"
	msgInvalidDate         = "Preferred date must be a valid date"
	msgInvalidTimeSlot     = "Preferred time must be morning, afternoon or evening"
	msgPropertyNotFound    = "Property not found"
	msgPropertyUnavailable = "Property is not available for booking"
	msgBookingNotFound     = "Booking not found"
	msgInvalidStatus       = "Status must be approved, rejected or cancelled"
	msgStaleVersion        = "Booking was modified by another request, reload and retry"
	msgCancelNotAuthorized = "Not authorized to cancel this booking"
	msgCancelOnlyPending   = "Only pending bookings can be cancelled"
	msgTerminalTransition  = "Booking is already %s and cannot be changed"
)

// Store 预约服务所需的存储能力
type Store interface {
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookings(ctx context.Context) ([]*model.Booking, error)
	ListBookingsByRenter(ctx context.Context, renterID string) ([]*model.Booking, error)
	ListBookingsByProperties(ctx context.Context, propertyIDs []string) ([]*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, expectedVersion int64, status model.BookingStatus) error

	GetProperty(ctx context.Context, id string) (*model.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []string) ([]*model.Property, error)
	ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// Recorder 预约相关业务指标
type Recorder interface {
	BookingSubmitted()
	BookingTransition(from, to string)
}

// Options 状态机选项
type Options struct {
	// StrictTransitions 禁止离开终态；默认允许重复处理已决预约
	StrictTransitions bool
}

// Service 预约服务
type Service struct {
	store   Store
	events  eventbus.BookingEventBus
	opts    Options
	logger  *logging.Logger
	metrics Recorder
	now     func() time.Time
}

// NewService 创建预约服务；events 为 nil 时使用进程内事件日志
func NewService(store Store, events eventbus.BookingEventBus, opts Options, logger *logging.Logger) *Service {
	if events == nil {
		events = eventbus.NewMemoryEventBus()
	}
	if logger == nil {
		logger = logging.Default("booking")
	}
	return &Service{store: store, events: events, opts: opts, logger: logger, now: time.Now}
}

// SetMetrics 设置指标记录器
func (s *Service) SetMetrics(r Recorder) {
	s.metrics = r
}

// ============================================================================
// 输入类型
// ============================================================================

// SubmitInput 提交预约参数
type SubmitInput struct {
	PropertyID    string             `json:"propertyId"`
	ContactInfo   *model.ContactInfo `json:"contactInfo"`
	Message       string             `json:"message"`
	PreferredDate string             `json:"preferredDate"`
	PreferredTime string             `json:"preferredTime"`
}

// TransitionInput 状态变更参数；Version 非空时必须与当前版本一致
type TransitionInput struct {
	Status  model.BookingStatus `json:"status"`
	Version *int64              `json:"version,omitempty"`
}

// validate 按固定顺序逐项检查，返回第一个缺失字段
func (in *SubmitInput) validate() error {
	switch {
	case strings.TrimSpace(in.PropertyID) == "":
		return apperr.Validation(msgPropertyIDRequired)
	case in.ContactInfo == nil:
		return apperr.Validation(msgContactRequired)
	case in.ContactInfo.Name == "" || in.ContactInfo.Email == "" || in.ContactInfo.Phone == "":
		return apperr.Validation(msgContactIncomplete)
	case strings.TrimSpace(in.Message) == "":
		return apperr.Validation(msgMessageRequired)
	case strings.TrimSpace(in.PreferredDate) == "":
		return apperr.Validation(msgDateRequired)
	case strings.TrimSpace(in.PreferredTime) == "":
		return apperr.Validation(msgTimeRequired)
	}
	return nil
}

// parseDate 接受 RFC3339 或 YYYY-MM-DD
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ============================================================================
// 状态机
// ============================================================================

// Submit renter 对公开可见房源发起看房预约
func (s *Service) Submit(ctx context.Context, id *authz.Identity, in SubmitInput) (*model.Booking, error) {
	if id == nil {
		return nil, apperr.Unauthenticated("Not authorized to access this route")
	}
	if id.Role != model.UserRoleRenter {
		return nil, apperr.Forbidden(msgRenterOnly)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, ok := parseDate(in.PreferredDate)
	if !ok {
		return nil, apperr.Validation(msgInvalidDate)
	}
	slot, ok := model.ParseTimeSlot(in.PreferredTime)
	if !ok {
		return nil, apperr.Validation(msgInvalidTimeSlot)
	}

	prop, err := s.store.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if prop == nil {
		return nil, apperr.NotFound(msgPropertyNotFound)
	}
	if !model.IsPubliclyVisible(prop) {
		return nil, apperr.New(apperr.KindPropertyUnavailable, msgPropertyUnavailable)
	}

	now := s.now().UTC()
	b := &model.Booking{
		ID:            model.NewID(model.IDPrefixBooking),
		PropertyID:    prop.ID,
		RenterID:      id.ID,
		ContactInfo:   *in.ContactInfo,
		Message:       in.Message,
		PreferredDate: date,
		PreferredTime: slot,
		Status:        model.BookingStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(ctx, &eventbus.BookingEvent{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		Type:       eventbus.EventBookingSubmitted,
		To:         b.Status,
		ActorID:    id.ID,
		ActorRole:  id.Role,
		Timestamp:  now,
	})
	if s.metrics != nil {
		s.metrics.BookingSubmitted()
	}
	s.logger.WithContext(ctx).WithBookingID(b.ID).WithPropertyID(b.PropertyID).Info("Booking submitted")

	if err := s.join(ctx, []*model.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// Transition owner/admin 处理预约
func (s *Service) Transition(ctx context.Context, id *authz.Identity, bookingID string, in TransitionInput) (*model.Booking, error) {
	if in.Status != model.BookingStatusApproved &&
		in.Status != model.BookingStatusRejected &&
		in.Status != model.BookingStatusCancelled {
		return nil, apperr.Validation(msgInvalidStatus)
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// 房源已删除时 ownerID 为空，只有 admin 能继续处理
	var ownerID string
	prop, err := s.store.GetProperty(ctx, b.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if prop != nil {
		ownerID = prop.OwnerID
	}
	err = authz.Check(id,
		authz.RequireRole(model.UserRoleOwner, model.UserRoleAdmin),
		authz.RequireResourceOwnership(ownerID),
	)
	if err != nil {
		return nil, err
	}

	if s.opts.StrictTransitions && b.Status.Terminal() {
		return nil, apperr.InvalidTransition(fmt.Sprintf(msgTerminalTransition, b.Status))
	}
	if in.Version != nil && *in.Version != b.Version {
		return nil, apperr.New(apperr.KindConflict, msgStaleVersion)
	}

	return s.write(ctx, id, b, in.Status)
}

// Cancel renter 取消自己仍在 pending 的预约
func (s *Service) Cancel(ctx context.Context, id *authz.Identity, bookingID string) (*model.Booking, error) {
	if id == nil {
		return nil, apperr.Unauthenticated("Not authorized to access this route")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != id.ID {
		return nil, apperr.Forbidden(msgCancelNotAuthorized)
	}
	if b.Status != model.BookingStatusPending {
		return nil, apperr.InvalidTransition(msgCancelOnlyPending)
	}
	return s.write(ctx, id, b, model.BookingStatusCancelled)
}

// write CAS 写入新状态并发布事件
func (s *Service) write(ctx context.Context, id *authz.Identity, b *model.Booking, to model.BookingStatus) (*model.Booking, error) {
	from := b.Status
	if err := s.store.UpdateBookingStatus(ctx, b.ID, b.Version, to); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.New(apperr.KindConflict, msgStaleVersion)
		}
		return nil, apperr.FromStorage(err, msgBookingNotFound)
	}

	s.publish(ctx, &eventbus.BookingEvent{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		Type:       eventbus.StatusEventType(to),
		From:       from,
		To:         to,
		ActorID:    id.ID,
		ActorRole:  id.Role,
		Timestamp:  s.now().UTC(),
	})
	if s.metrics != nil {
		s.metrics.BookingTransition(string(from), string(to))
	}
	s.logger.WithContext(ctx).BookingTransitionLog(b.ID, string(from), string(to), id.ID)

	updated, err := s.load(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if err := s.join(ctx, []*model.Booking{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

// ============================================================================
// 查询
// ============================================================================

// ListForIdentity 按角色返回可见的预约，按创建时间倒序
//
// owner 分两步读取（房源 → 预约），两步之间新增的房源不会出现在结果中。
func (s *Service) ListForIdentity(ctx context.Context, id *authz.Identity) ([]*model.Booking, error) {
	if id == nil {
		return nil, apperr.Unauthenticated("Not authorized to access this route")
	}

	var (
		list []*model.Booking
		err  error
	)
	switch id.Role {
	case model.UserRoleRenter:
		list, err = s.store.ListBookingsByRenter(ctx, id.ID)
	case model.UserRoleOwner:
		var props []*model.Property
		props, err = s.store.ListPropertiesByOwner(ctx, id.ID)
		if err != nil {
			return nil, fmt.Errorf("list owner properties: %w", err)
		}
		if len(props) == 0 {
			return []*model.Booking{}, nil
		}
		ids := make([]string, 0, len(props))
		for _, p := range props {
			ids = append(ids, p.ID)
		}
		list, err = s.store.ListBookingsByProperties(ctx, ids)
	case model.UserRoleAdmin:
		list, err = s.store.ListBookings(ctx)
	default:
		return nil, apperr.Forbidden("Not authorized to view bookings")
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	if err := s.join(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// History admin 查看预约的生命周期事件
func (s *Service) History(ctx context.Context, id *authz.Identity, bookingID string) ([]*eventbus.BookingEvent, error) {
	if err := authz.Check(id, authz.RequireRole(model.UserRoleAdmin)); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, bookingID); err != nil {
		return nil, err
	}
	events, err := s.events.GetBookingEvents(ctx, bookingID, eventbus.MaxStreamLength)
	if err != nil {
		return nil, fmt.Errorf("read booking events: %w", err)
	}
	return events, nil
}

// ============================================================================
// 内部函数
// ============================================================================

func (s *Service) load(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return nil, apperr.NotFound(msgBookingNotFound)
	}
	return b, nil
}

// publish 事件发布失败只记录日志，不影响已完成的写入
func (s *Service) publish(ctx context.Context, e *eventbus.BookingEvent) {
	if err := s.events.PublishBookingEvent(ctx, e); err != nil {
		s.logger.WithContext(ctx).WithBookingID(e.BookingID).WithError(err).Warn("publish booking event failed")
	}
}

// join 批量填充房源摘要与 renter 摘要
func (s *Service) join(ctx context.Context, list []*model.Booking) error {
	if len(list) == 0 {
		return nil
	}
	propIDs := make([]string, 0, len(list))
	renterIDs := make([]string, 0, len(list))
	seen := make(map[string]bool, 2*len(list))
	for _, b := range list {
		if !seen["p:"+b.PropertyID] {
			seen["p:"+b.PropertyID] = true
			propIDs = append(propIDs, b.PropertyID)
		}
		if !seen["u:"+b.RenterID] {
			seen["u:"+b.RenterID] = true
			renterIDs = append(renterIDs, b.RenterID)
		}
	}

	props, err := s.store.GetPropertiesByIDs(ctx, propIDs)
	if err != nil {
		return fmt.Errorf("load booking properties: %w", err)
	}
	renters, err := s.store.GetUsersByIDs(ctx, renterIDs)
	if err != nil {
		return fmt.Errorf("load booking renters: %w", err)
	}

	propByID := make(map[string]*model.Property, len(props))
	for _, p := range props {
		propByID[p.ID] = p
	}
	renterByID := make(map[string]*model.User, len(renters))
	for _, u := range renters {
		renterByID[u.ID] = u
	}
	for _, b := range list {
		b.Property = propByID[b.PropertyID].Summary()
		b.Renter = renterByID[b.RenterID].Summary()
	}
	return nil
}

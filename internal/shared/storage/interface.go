// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（文档库）、repository/（SQL，含 SQLite 内存夹具）
//   - 进程启动时由 datasource.Open 选择实现并注入，运行期间不再切换
//
// 查询约定：Get* 在实体不存在时返回 (nil, nil)；按 ID 更新/删除在实体不存在时返回 ErrNotFound。
package storage

import (
	"context"

	"house-rent/internal/shared/model"
)

// UserStore 用户存储
type UserStore interface {
	// CreateUser 邮箱冲突时返回 ErrDuplicate
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListPendingOwners(ctx context.Context) ([]*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	// PromoteToAdmin 仅供运维脚本使用（注册接口不能创建 admin）
	PromoteToAdmin(ctx context.Context, id string) error
	// ApproveOwner 条件更新：仅当 role=owner 且 is_approved=false 时生效，否则返回 ErrNotFound
	ApproveOwner(ctx context.Context, id string) error
}

// PropertyStore 房源存储
type PropertyStore interface {
	CreateProperty(ctx context.Context, p *model.Property) error
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []string) ([]*model.Property, error)
	// ListVisibleProperties 返回 is_approved=true 且 status=available 的房源，按创建时间倒序
	ListVisibleProperties(ctx context.Context) ([]*model.Property, error)
	ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error)
	ListProperties(ctx context.Context) ([]*model.Property, error)
	// UpdateProperty 覆盖可变字段（owner_id、created_at 不变）
	UpdateProperty(ctx context.Context, p *model.Property) error
	DeleteProperty(ctx context.Context, id string) error
	DeleteAllProperties(ctx context.Context) (int64, error)
	// ApproveAllPending 单次批量更新所有不满足可见条件的房源
	ApproveAllPending(ctx context.Context) (*model.ApproveResult, error)
}

// BookingStore 预约存储
type BookingStore interface {
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookings(ctx context.Context) ([]*model.Booking, error)
	ListBookingsByRenter(ctx context.Context, renterID string) ([]*model.Booking, error)
	ListBookingsByProperties(ctx context.Context, propertyIDs []string) ([]*model.Booking, error)
	// UpdateBookingStatus 以 version 做 CAS 写入，成功后 version+1
	// 版本不匹配返回 ErrConflict，预约不存在返回 ErrNotFound
	UpdateBookingStatus(ctx context.Context, id string, expectedVersion int64, status model.BookingStatus) error
}

// PersistentStore 完整的持久化存储接口
type PersistentStore interface {
	UserStore
	PropertyStore
	BookingStore

	Ping(ctx context.Context) error
	Close() error
}

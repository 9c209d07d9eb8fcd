// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"testing"
	"time"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/internal/shared/storage/dbutil"
	sqlitedriver "house-rent/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, id string, role model.UserRole, approved bool) *model.User {
	t.Helper()
	u := &model.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsApproved:   approved,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedProperty(t *testing.T, s *Store, id, ownerID string, status model.PropertyStatus, approved bool, offset time.Duration) *model.Property {
	t.Helper()
	p := &model.Property{
		ID:           id,
		Title:        "Property " + id,
		Description:  "desc",
		Address:      "1 Main St",
		Location:     model.Location{City: "Austin", State: "TX", ZipCode: "78701"},
		Price:        1500,
		Bedrooms:     2,
		Bathrooms:    1.5,
		Area:         900,
		Photos:       []string{model.DefaultPhotoURL},
		Features:     []string{"Parking"},
		PropertyType: model.PropertyTypeApartment,
		Status:       status,
		IsApproved:   approved,
		OwnerID:      ownerID,
		CreatedAt:    baseTime.Add(offset),
		UpdatedAt:    baseTime.Add(offset),
	}
	require.NoError(t, s.CreateProperty(context.Background(), p))
	return p
}

func seedBooking(t *testing.T, s *Store, id, propertyID, renterID string, offset time.Duration) *model.Booking {
	t.Helper()
	b := &model.Booking{
		ID:            id,
		PropertyID:    propertyID,
		RenterID:      renterID,
		ContactInfo:   model.ContactInfo{Name: "Jo", Email: "jo@x.com", Phone: "555"},
		Message:       "hi",
		PreferredDate: baseTime,
		PreferredTime: model.TimeSlotMorning,
		Status:        model.BookingStatusPending,
		Version:       1,
		CreatedAt:     baseTime.Add(offset),
		UpdatedAt:     baseTime.Add(offset),
	}
	require.NoError(t, s.CreateBooking(context.Background(), b))
	return b
}

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.False(t, d.IsUniqueViolation(nil))
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
	// 应去除 PG 类型转换
	assert.Equal(t, "UPDATE t SET status = ? WHERE id = ?",
		d.Rebind("UPDATE t SET status = $1::varchar WHERE id = $2"))
	assert.Equal(t, "$2, $3, $4", dbutil.Placeholders(2, 3))
}

// ============================================================================
// User 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "usr-1", model.UserRoleRenter, true)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, model.UserRoleRenter, got.Role)
	assert.True(t, got.IsApproved)
	assert.True(t, got.CreatedAt.Equal(baseTime))

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	// 不存在返回 (nil, nil)
	missing, err := s.GetUserByID(ctx, "usr-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// 邮箱重复
	dup := *u
	dup.ID = "usr-2"
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), storage.ErrDuplicate)

	// 密码更新
	require.NoError(t, s.UpdateUserPassword(ctx, u.ID, "new-hash"))
	got, _ = s.GetUserByID(ctx, u.ID)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "usr-missing", "x"), storage.ErrNotFound)

	// 提升为 admin
	require.NoError(t, s.PromoteToAdmin(ctx, u.ID))
	got, _ = s.GetUserByID(ctx, u.ID)
	assert.Equal(t, model.UserRoleAdmin, got.Role)
}

func TestApproveOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "usr-owner", model.UserRoleOwner, false)
	renter := seedUser(t, s, "usr-renter", model.UserRoleRenter, true)

	pending, err := s.ListPendingOwners(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, owner.ID, pending[0].ID)

	require.NoError(t, s.ApproveOwner(ctx, owner.ID))
	got, _ := s.GetUserByID(ctx, owner.ID)
	assert.True(t, got.IsApproved)

	// 条件更新：已审批 / 非 owner / 不存在都不命中
	assert.ErrorIs(t, s.ApproveOwner(ctx, owner.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.ApproveOwner(ctx, renter.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.ApproveOwner(ctx, "usr-missing"), storage.ErrNotFound)

	pending, err = s.ListPendingOwners(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGetUsersByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "usr-a", model.UserRoleRenter, true)
	seedUser(t, s, "usr-b", model.UserRoleOwner, true)

	users, err := s.GetUsersByIDs(ctx, []string{"usr-a", "usr-b", "usr-missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = s.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

// ============================================================================
// Property 测试
// ============================================================================

func TestPropertyCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "usr-owner", model.UserRoleOwner, true)
	p := seedProperty(t, s, "prop-1", owner.ID, model.PropertyStatusAvailable, true, 0)

	got, err := s.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, "Austin", got.Location.City)
	assert.Equal(t, []string{model.DefaultPhotoURL}, got.Photos)
	assert.Equal(t, []string{"Parking"}, got.Features)
	assert.InDelta(t, 1.5, got.Bathrooms, 0.001)

	got.Title = "Renamed"
	got.Status = model.PropertyStatusRented
	got.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, s.UpdateProperty(ctx, got))

	updated, err := s.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, model.PropertyStatusRented, updated.Status)
	assert.Equal(t, owner.ID, updated.OwnerID)

	mine, err := s.ListPropertiesByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, s.DeleteProperty(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteProperty(ctx, p.ID), storage.ErrNotFound)

	missing, err := s.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ghost := &model.Property{ID: "prop-ghost"}
	assert.ErrorIs(t, s.UpdateProperty(ctx, ghost), storage.ErrNotFound)
}

func TestApproveAllPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "usr-owner", model.UserRoleOwner, true)
	seedProperty(t, s, "prop-visible", owner.ID, model.PropertyStatusAvailable, true, 0)
	seedProperty(t, s, "prop-a", owner.ID, model.PropertyStatusPending, false, time.Minute)
	seedProperty(t, s, "prop-b", owner.ID, model.PropertyStatusAvailable, false, 2*time.Minute)
	seedProperty(t, s, "prop-c", owner.ID, model.PropertyStatusRented, true, 3*time.Minute)

	visible, err := s.ListVisibleProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	res, err := s.ApproveAllPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Matched)
	assert.Equal(t, int64(3), res.Modified)

	visible, err = s.ListVisibleProperties(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 4)
	// 按创建时间倒序
	assert.Equal(t, "prop-c", visible[0].ID)
	assert.Equal(t, "prop-visible", visible[3].ID)

	res, err = s.ApproveAllPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Modified)

	n, err := s.DeleteAllProperties(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

// ============================================================================
// Booking 测试
// ============================================================================

func TestBookingListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "usr-owner", model.UserRoleOwner, true)
	r1 := seedUser(t, s, "usr-r1", model.UserRoleRenter, true)
	r2 := seedUser(t, s, "usr-r2", model.UserRoleRenter, true)
	p1 := seedProperty(t, s, "prop-1", owner.ID, model.PropertyStatusAvailable, true, 0)
	p2 := seedProperty(t, s, "prop-2", owner.ID, model.PropertyStatusAvailable, true, 0)

	seedBooking(t, s, "bk-1", p1.ID, r1.ID, 0)
	seedBooking(t, s, "bk-2", p2.ID, r1.ID, time.Minute)
	seedBooking(t, s, "bk-3", p1.ID, r2.ID, 2*time.Minute)

	all, err := s.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bk-3", all[0].ID)
	assert.Equal(t, "bk-1", all[2].ID)

	mine, err := s.ListBookingsByRenter(ctx, r1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "bk-2", mine[0].ID)

	byProp, err := s.ListBookingsByProperties(ctx, []string{p1.ID})
	require.NoError(t, err)
	require.Len(t, byProp, 2)
	assert.Equal(t, "bk-3", byProp[0].ID)

	none, err := s.ListBookingsByProperties(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := s.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jo", got.ContactInfo.Name)
	assert.Equal(t, model.TimeSlotMorning, got.PreferredTime)
	assert.True(t, got.PreferredDate.Equal(baseTime))
}

func TestUpdateBookingStatusCAS(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "usr-owner", model.UserRoleOwner, true)
	renter := seedUser(t, s, "usr-renter", model.UserRoleRenter, true)
	p := seedProperty(t, s, "prop-1", owner.ID, model.PropertyStatusAvailable, true, 0)
	b := seedBooking(t, s, "bk-1", p.ID, renter.ID, 0)

	require.NoError(t, s.UpdateBookingStatus(ctx, b.ID, 1, model.BookingStatusApproved))

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusApproved, got.Status)
	assert.Equal(t, int64(2), got.Version)

	// 旧版本写入被拒绝，状态不变
	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, b.ID, 1, model.BookingStatusRejected), storage.ErrConflict)
	got, _ = s.GetBooking(ctx, b.ID)
	assert.Equal(t, model.BookingStatusApproved, got.Status)

	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, "bk-missing", 1, model.BookingStatusRejected), storage.ErrNotFound)
}

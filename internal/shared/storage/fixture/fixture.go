// Package fixture 示例数据与内存数据源
//
// 提供四条示例房源和示例房东账号，用于：
//   - database.driver=memory 时的开发数据源
//   - 配置的数据库不可达时的降级数据源
//   - rentctl seed-properties 命令
package fixture

import (
	"context"
	"fmt"
	"time"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	sqlitedriver "house-rent/internal/shared/storage/driver/sqlite"
	"house-rent/internal/shared/storage/repository"

	"golang.org/x/crypto/bcrypt"
)

// 示例房东账号
const (
	SampleOwnerName     = "John Property Owner"
	SampleOwnerEmail    = "owner@example.com"
	SampleOwnerPassword = "password123"
)

// SeedResult 示例数据写入结果
type SeedResult struct {
	Owner        *model.User
	OwnerCreated bool
	Cleared      int64
	Inserted     int
}

// SampleProperties 返回归属于 ownerID 的示例房源（均已审批、可预约）
// 创建时间依次递减，列表倒序时保持声明顺序
func SampleProperties(ownerID string, now time.Time) []*model.Property {
	samples := []*model.Property{
		{
			Title:       "Modern Apartment in Downtown",
			Description: "Beautiful modern apartment in the heart of downtown. Fully furnished with high-end appliances and amenities.",
			Address:     "123 Main Street, Apt 4B",
			Location:    model.Location{City: "New York", State: "NY", ZipCode: "10001"},
			Price:       2500, Bedrooms: 2, Bathrooms: 2, Area: 1200,
			Photos: []string{
				"https://images.pexels.com/photos/1643384/pexels-photo-1643384.jpeg",
				"https://images.pexels.com/photos/1648776/pexels-photo-1648776.jpeg",
			},
			Features:     []string{"Air Conditioning", "In-unit Laundry", "Fitness Center", "Roof Deck"},
			PropertyType: model.PropertyTypeApartment,
		},
		{
			Title:       "Spacious Family House with Garden",
			Description: "Large family home with beautiful garden. Perfect for families who need space and privacy.",
			Address:     "456 Oak Avenue",
			Location:    model.Location{City: "Chicago", State: "IL", ZipCode: "60601"},
			Price:       3200, Bedrooms: 4, Bathrooms: 3, Area: 2400,
			Photos: []string{
				"https://images.pexels.com/photos/106399/pexels-photo-106399.jpeg",
				"https://images.pexels.com/photos/1029599/pexels-photo-1029599.jpeg",
			},
			Features:     []string{"Backyard", "Garage", "Fireplace", "Hardwood Floors"},
			PropertyType: model.PropertyTypeHouse,
		},
		{
			Title:       "Luxury Condo with Ocean View",
			Description: "High-end condo with stunning ocean views. Comes with access to building amenities including pool and gym.",
			Address:     "789 Beachfront Drive, Unit 12",
			Location:    model.Location{City: "Miami", State: "FL", ZipCode: "33101"},
			Price:       4000, Bedrooms: 3, Bathrooms: 2.5, Area: 1800,
			Photos: []string{
				"https://images.pexels.com/photos/2096983/pexels-photo-2096983.jpeg",
				"https://images.pexels.com/photos/2119713/pexels-photo-2119713.jpeg",
			},
			Features:     []string{"Ocean View", "Pool", "Gym", "Doorman", "Balcony"},
			PropertyType: model.PropertyTypeCondo,
		},
		{
			Title:       "Cozy Studio in Historic District",
			Description: "Charming studio apartment in a historic building. Walking distance to restaurants, shops, and public transportation.",
			Address:     "101 Heritage Lane, Unit 3",
			Location:    model.Location{City: "Boston", State: "MA", ZipCode: "02108"},
			Price:       1500, Bedrooms: 0, Bathrooms: 1, Area: 500,
			Photos: []string{
				"https://images.pexels.com/photos/1918291/pexels-photo-1918291.jpeg",
				"https://images.pexels.com/photos/1571458/pexels-photo-1571458.jpeg",
			},
			Features:     []string{"Historic Building", "High Ceilings", "Exposed Brick", "Updated Kitchen"},
			PropertyType: model.PropertyTypeStudio,
		},
	}

	for i, p := range samples {
		created := now.Add(-time.Duration(i) * time.Minute)
		p.ID = model.NewID(model.IDPrefixProperty)
		p.OwnerID = ownerID
		p.Status = model.PropertyStatusAvailable
		p.IsApproved = true
		p.CreatedAt = created
		p.UpdatedAt = created
	}
	return samples
}

// EnsureSampleOwner 查找或创建示例房东（已审批）
func EnsureSampleOwner(ctx context.Context, users storage.UserStore, now time.Time) (*model.User, bool, error) {
	existing, err := users.GetUserByEmail(ctx, SampleOwnerEmail)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SampleOwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash sample owner password: %w", err)
	}
	owner := &model.User{
		ID:           model.NewID(model.IDPrefixUser),
		Name:         SampleOwnerName,
		Email:        SampleOwnerEmail,
		PasswordHash: string(hash),
		Role:         model.UserRoleOwner,
		IsApproved:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(ctx, owner); err != nil {
		return nil, false, err
	}
	return owner, true, nil
}

// Seed 清空房源后写入示例房东与示例房源
func Seed(ctx context.Context, store storage.PersistentStore, now time.Time) (*SeedResult, error) {
	cleared, err := store.DeleteAllProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear properties: %w", err)
	}

	owner, created, err := EnsureSampleOwner(ctx, store, now)
	if err != nil {
		return nil, fmt.Errorf("ensure sample owner: %w", err)
	}

	samples := SampleProperties(owner.ID, now)
	for _, p := range samples {
		if err := store.CreateProperty(ctx, p); err != nil {
			return nil, fmt.Errorf("insert property %q: %w", p.Title, err)
		}
	}

	return &SeedResult{Owner: owner, OwnerCreated: created, Cleared: cleared, Inserted: len(samples)}, nil
}

// NewEmptyStore 创建已建表的空 SQLite 内存数据源
func NewEmptyStore() (*repository.Store, error) {
	db, err := sqlitedriver.Open(":memory:")
	if err != nil {
		return nil, err
	}
	dialect := sqlitedriver.NewDialect()
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("fixture: migrate: %w", err)
	}
	return repository.NewStore(db, dialect), nil
}

// NewStore 创建已写入示例数据的 SQLite 内存数据源
func NewStore(ctx context.Context) (*repository.Store, error) {
	store, err := NewEmptyStore()
	if err != nil {
		return nil, err
	}
	if _, err := Seed(ctx, store, time.Now().UTC()); err != nil {
		store.Close()
		return nil, fmt.Errorf("fixture: seed: %w", err)
	}
	return store, nil
}

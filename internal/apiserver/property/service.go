// Package property 房源管理与公开可见性
//
// 只有 isApproved=true 且 status=available 的房源对外可见、可被预约。
// 公开列表经 cache.ListingCache 缓存，任何房源写操作都会使缓存失效。
package property

import (
	"context"
	"fmt"
	"time"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/cache"
	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/internal/shared/validate"
	"house-rent/pkg/logging"
)

const (
	msgNotFound          = "Property not found"
	msgApprovalAdminOnly = "Only admins can change property approval"
	msgInvalidStatus     = "Status must be one of: pending, available, rented, maintenance"
)

// Store 房源服务所需的存储能力
type Store interface {
	storage.PropertyStore
	GetUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// Recorder 房源相关业务指标
type Recorder interface {
	PropertiesApproved(n int64)
}

// Service 房源服务
type Service struct {
	store   Store
	cache   cache.ListingCache
	logger  *logging.Logger
	metrics Recorder
	now     func() time.Time
}

// NewService 创建房源服务；listings 为 nil 时不缓存
func NewService(store Store, listings cache.ListingCache, logger *logging.Logger) *Service {
	if listings == nil {
		listings = cache.NewNoOpCache()
	}
	if logger == nil {
		logger = logging.Default("property")
	}
	return &Service{store: store, cache: listings, logger: logger, now: time.Now}
}

// SetMetrics 设置指标记录器
func (s *Service) SetMetrics(r Recorder) {
	s.metrics = r
}

// ============================================================================
// 输入类型
// ============================================================================

// LocationInput 所在地
type LocationInput struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

// Input 创建房源参数（也用于校验更新后的完整状态）
type Input struct {
	Title        string             `json:"title" validate:"required,max=100"`
	Description  string             `json:"description" validate:"required,max=1000"`
	Address      string             `json:"address" validate:"required"`
	Location     LocationInput      `json:"location"`
	Price        float64            `json:"price" validate:"gte=0"`
	Bedrooms     int                `json:"bedrooms" validate:"gte=0"`
	Bathrooms    float64            `json:"bathrooms" validate:"gte=0"`
	Area         float64            `json:"area" validate:"gte=0"`
	Photos       []string           `json:"photos"`
	Features     []string           `json:"features"`
	PropertyType model.PropertyType `json:"propertyType" validate:"omitempty,oneof=Apartment House Condo Townhouse Studio Other"`
}

// Patch 部分更新参数，nil 字段保持不变
//
// 不包含 owner：所有权创建后不可变更。
type Patch struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Address      *string               `json:"address"`
	Location     *LocationInput        `json:"location"`
	Price        *float64              `json:"price"`
	Bedrooms     *int                  `json:"bedrooms"`
	Bathrooms    *float64              `json:"bathrooms"`
	Area         *float64              `json:"area"`
	Photos       *[]string             `json:"photos"`
	Features     *[]string             `json:"features"`
	PropertyType *model.PropertyType   `json:"propertyType"`
	Status       *model.PropertyStatus `json:"status"`
	IsApproved   *bool                 `json:"isApproved"`
}

func inputOf(p *model.Property) Input {
	return Input{
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location: LocationInput{
			City:    p.Location.City,
			State:   p.Location.State,
			ZipCode: p.Location.ZipCode,
		},
		Price:        p.Price,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Area:         p.Area,
		Photos:       p.Photos,
		Features:     p.Features,
		PropertyType: p.PropertyType,
	}
}

func applyDefaults(p *model.Property) {
	if len(p.Photos) == 0 {
		p.Photos = []string{model.DefaultPhotoURL}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.PropertyType == "" {
		p.PropertyType = model.PropertyTypeApartment
	}
}

// ============================================================================
// 查询
// ============================================================================

// ListPublic 所有公开可见房源，按创建时间倒序，附带 owner 摘要
func (s *Service) ListPublic(ctx context.Context) ([]*model.Property, error) {
	cached, hit, err := s.cache.GetVisibleListings(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("listing cache read failed")
	}
	if hit {
		return cached, nil
	}

	// 代数必须在查询存储之前读取
	gen, genErr := s.cache.ListingsGeneration(ctx)
	if genErr != nil {
		s.logger.WithContext(ctx).WithError(genErr).Warn("listing cache generation read failed")
	}

	props, err := s.store.ListVisibleProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list visible properties: %w", err)
	}
	if err := s.joinOwners(ctx, props); err != nil {
		return nil, err
	}

	if genErr == nil {
		if _, err := s.cache.SetVisibleListings(ctx, gen, props); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("listing cache write failed")
		}
	}
	return props, nil
}

// Get 单个房源（不要求公开可见）
func (s *Service) Get(ctx context.Context, id string) (*model.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.joinOwners(ctx, []*model.Property{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListMine owner 返回自己的房源，admin 返回全部
func (s *Service) ListMine(ctx context.Context, id *authz.Identity) ([]*model.Property, error) {
	if err := authz.Check(id, authz.RequireRole(model.UserRoleOwner, model.UserRoleAdmin)); err != nil {
		return nil, err
	}

	var (
		props []*model.Property
		err   error
	)
	if id.Role == model.UserRoleAdmin {
		props, err = s.store.ListProperties(ctx)
	} else {
		props, err = s.store.ListPropertiesByOwner(ctx, id.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	if err := s.joinOwners(ctx, props); err != nil {
		return nil, err
	}
	return props, nil
}

// ============================================================================
// 写操作
// ============================================================================

// Create 发布房源
//
// 已审批 owner 与 admin 发布的房源直接 isApproved=true、status=available。
func (s *Service) Create(ctx context.Context, id *authz.Identity, in Input) (*model.Property, error) {
	err := authz.Check(id,
		authz.RequireRole(model.UserRoleOwner, model.UserRoleAdmin),
		authz.RequireOwnerApproved(),
	)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &model.Property{
		ID:          model.NewID(model.IDPrefixProperty),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location: model.Location{
			City:    in.Location.City,
			State:   in.Location.State,
			ZipCode: in.Location.ZipCode,
		},
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Area:         in.Area,
		Photos:       in.Photos,
		Features:     in.Features,
		PropertyType: in.PropertyType,
		Status:       model.PropertyStatusAvailable,
		IsApproved:   true,
		OwnerID:      id.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyDefaults(p)

	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	s.invalidate(ctx)

	s.logger.WithContext(ctx).WithPropertyID(p.ID).Info("Property created")
	return s.Get(ctx, p.ID)
}

// Update 部分更新房源
func (s *Service) Update(ctx context.Context, id *authz.Identity, propertyID string, patch Patch) (*model.Property, error) {
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(id, authz.RequireResourceOwnership(p.OwnerID)); err != nil {
		return nil, err
	}
	if patch.IsApproved != nil && id.Role != model.UserRoleAdmin {
		return nil, apperr.Forbidden(msgApprovalAdminOnly)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation(msgInvalidStatus)
	}

	apply(p, patch)
	applyDefaults(p)
	if err := validate.Struct(inputOf(p)); err != nil {
		return nil, err
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, apperr.FromStorage(err, msgNotFound)
	}
	s.invalidate(ctx)

	s.logger.WithContext(ctx).WithPropertyID(p.ID).Info("Property updated")
	return s.Get(ctx, p.ID)
}

func apply(p *model.Property, patch Patch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Location != nil {
		p.Location = model.Location{
			City:    patch.Location.City,
			State:   patch.Location.State,
			ZipCode: patch.Location.ZipCode,
		}
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Bedrooms != nil {
		p.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		p.Bathrooms = *patch.Bathrooms
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.Photos != nil {
		p.Photos = *patch.Photos
	}
	if patch.Features != nil {
		p.Features = *patch.Features
	}
	if patch.PropertyType != nil {
		p.PropertyType = *patch.PropertyType
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsApproved != nil {
		p.IsApproved = *patch.IsApproved
	}
}

// Delete 删除房源；已有预约记录保留
func (s *Service) Delete(ctx context.Context, id *authz.Identity, propertyID string) error {
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := authz.Check(id, authz.RequireResourceOwnership(p.OwnerID)); err != nil {
		return err
	}
	if err := s.store.DeleteProperty(ctx, p.ID); err != nil {
		return apperr.FromStorage(err, msgNotFound)
	}
	s.invalidate(ctx)

	s.logger.WithContext(ctx).WithPropertyID(p.ID).Info("Property deleted")
	return nil
}

// ApproveAllPending admin 一次性放行所有不可见房源
func (s *Service) ApproveAllPending(ctx context.Context, id *authz.Identity) (*model.ApproveResult, error) {
	if err := authz.Check(id, authz.RequireRole(model.UserRoleAdmin)); err != nil {
		return nil, err
	}

	res, err := s.store.ApproveAllPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve all pending: %w", err)
	}
	s.invalidate(ctx)

	if s.metrics != nil {
		s.metrics.PropertiesApproved(res.Modified)
	}
	s.logger.WithContext(ctx).Info("Pending properties approved",
		"matched", res.Matched, "modified", res.Modified)
	return res, nil
}

// ============================================================================
// 内部函数
// ============================================================================

func (s *Service) load(ctx context.Context, id string) (*model.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound(msgNotFound)
	}
	return p, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateListings(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("listing cache invalidate failed")
	}
}

// joinOwners 批量填充 owner 摘要（只含 id/name/email）
func (s *Service) joinOwners(ctx context.Context, props []*model.Property) error {
	if len(props) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(props))
	ids := make([]string, 0, len(props))
	for _, p := range props {
		if !seen[p.OwnerID] {
			seen[p.OwnerID] = true
			ids = append(ids, p.OwnerID)
		}
	}

	owners, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load owners: %w", err)
	}
	byID := make(map[string]*model.User, len(owners))
	for _, u := range owners {
		byID[u.ID] = u
	}
	for _, p := range props {
		p.Owner = byID[p.OwnerID].Summary()
	}
	return nil
}

package model

import "time"

// PropertyStatus 房源状态
type PropertyStatus string

const (
	PropertyStatusPending     PropertyStatus = "pending"
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusRented      PropertyStatus = "rented"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
)

// Valid 是否为已知状态
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusPending, PropertyStatusAvailable, PropertyStatusRented, PropertyStatusMaintenance:
		return true
	}
	return false
}

// PropertyType 房源类型
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeHouse     PropertyType = "House"
	PropertyTypeCondo     PropertyType = "Condo"
	PropertyTypeTownhouse PropertyType = "Townhouse"
	PropertyTypeStudio    PropertyType = "Studio"
	PropertyTypeOther     PropertyType = "Other"
)

// DefaultPhotoURL 未上传图片时使用的占位图
const DefaultPhotoURL = "https://images.pexels.com/photos/1396122/pexels-photo-1396122.jpeg"

// Location 房源所在地
type Location struct {
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zip_code"`
}

// Property 房源
//
// 所有权在创建时确定，OwnerID 之后不再变化。
type Property struct {
	ID           string         `json:"id" bson:"_id" db:"id"`
	Title        string         `json:"title" bson:"title" db:"title"`
	Description  string         `json:"description" bson:"description" db:"description"`
	Address      string         `json:"address" bson:"address" db:"address"`
	Location     Location       `json:"location" bson:"location"`
	Price        float64        `json:"price" bson:"price" db:"price"`
	Bedrooms     int            `json:"bedrooms" bson:"bedrooms" db:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms" bson:"bathrooms" db:"bathrooms"`
	Area         float64        `json:"area" bson:"area" db:"area"`
	Photos       []string       `json:"photos" bson:"photos" db:"photos"`
	Features     []string       `json:"features" bson:"features" db:"features"`
	PropertyType PropertyType   `json:"propertyType" bson:"property_type" db:"property_type"`
	Status       PropertyStatus `json:"status" bson:"status" db:"status"`
	IsApproved   bool           `json:"isApproved" bson:"is_approved" db:"is_approved"`
	OwnerID      string         `json:"ownerId" bson:"owner_id" db:"owner_id"`
	CreatedAt    time.Time      `json:"createdAt" bson:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updated_at" db:"updated_at"`

	// 关联字段（查询时填充，不落库）
	Owner *UserSummary `json:"owner,omitempty" bson:"-" db:"-"`
}

// IsPubliclyVisible 房源是否对外可见且可预约
func IsPubliclyVisible(p *Property) bool {
	return p != nil && p.IsApproved && p.Status == PropertyStatusAvailable
}

// PropertySummary 预约关联查询时暴露的房源摘要
type PropertySummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Address  string   `json:"address"`
	Location Location `json:"location"`
	Price    float64  `json:"price"`
	Photos   []string `json:"photos,omitempty"`
}

// Summary 返回房源摘要
func (p *Property) Summary() *PropertySummary {
	if p == nil {
		return nil
	}
	return &PropertySummary{
		ID:       p.ID,
		Title:    p.Title,
		Address:  p.Address,
		Location: p.Location,
		Price:    p.Price,
		Photos:   p.Photos,
	}
}

// ApproveResult 批量审批结果
type ApproveResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

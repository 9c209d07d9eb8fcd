package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleRenter UserRole = "renter"
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
)

// Valid 是否为已知角色
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleRenter, UserRoleOwner, UserRoleAdmin:
		return true
	}
	return false
}

// Registrable 是否允许通过注册接口自助创建（admin 只能由运维脚本创建）
func (r UserRole) Registrable() bool {
	return r == UserRoleRenter || r == UserRoleOwner
}

// User 用户
//
// IsApproved 只对 owner 有意义：owner 注册时为 false，需管理员审批后翻转为 true 且不可回退；
// renter/admin 创建时即为 true。
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Name         string    `json:"name" bson:"name" db:"name"`
	Email        string    `json:"email" bson:"email" db:"email"`
	PasswordHash string    `json:"-" bson:"password_hash" db:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role" bson:"role" db:"role"`
	IsApproved   bool      `json:"isApproved" bson:"is_approved" db:"is_approved"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at" db:"updated_at"`
}

// UserSummary 关联查询时暴露的最小用户信息（不含凭据）
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary 返回用户摘要
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUser 对外返回的用户信息（登录/注册响应、管理员列表）
type PublicUser struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	IsApproved bool     `json:"isApproved"`
}

// Public 返回公开视图
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsApproved: u.IsApproved}
}

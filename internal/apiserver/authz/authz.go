// Package authz 授权检查
//
// 每个写操作在执行前都经过一组 Rule：角色、owner 审批状态、资源归属。
// Check 按顺序执行，返回第一个失败；Require 把同样的规则挂到 HTTP 路由上。
package authz

import (
	"context"
	"fmt"
	"net/http"

	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/model"
)

// Identity 当前请求的调用者，字段以存储中的用户记录为准
type Identity struct {
	ID         string
	Role       model.UserRole
	IsApproved bool
}

// IdentityOf 由用户记录构造 Identity
func IdentityOf(u *model.User) *Identity {
	return &Identity{ID: u.ID, Role: u.Role, IsApproved: u.IsApproved}
}

// HasRole 是否属于给定角色之一
func (i *Identity) HasRole(roles ...model.UserRole) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Rule 单条授权规则
type Rule func(id *Identity) error

// RequireRole 调用者角色必须在 roles 中
func RequireRole(roles ...model.UserRole) Rule {
	return func(id *Identity) error {
		if !id.HasRole(roles...) {
			return apperr.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", id.Role))
		}
		return nil
	}
}

// RequireOwnerApproved owner 必须已通过审批；其他角色不受影响
func RequireOwnerApproved() Rule {
	return func(id *Identity) error {
		if id.Role == model.UserRoleOwner && !id.IsApproved {
			return apperr.New(apperr.KindOwnerPending,
				"Your owner account is pending approval. Please wait for an administrator to approve your account.")
		}
		return nil
	}
}

// RequireResourceOwnership admin 或资源所有者本人
func RequireResourceOwnership(ownerID string) Rule {
	return func(id *Identity) error {
		if id.Role == model.UserRoleAdmin || (ownerID != "" && id.ID == ownerID) {
			return nil
		}
		return apperr.Forbidden("User not authorized to access this resource")
	}
}

// Check 依次执行规则，返回第一个失败
func Check(id *Identity, rules ...Rule) error {
	if id == nil {
		return apperr.Unauthenticated("Not authorized to access this route")
	}
	for _, rule := range rules {
		if err := rule(id); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// Context
// ============================================================================

type contextKey string

const ctxKeyIdentity contextKey = "identity"

// WithIdentity 将调用者写入 context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// FromContext 读取调用者，未认证时返回 nil
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}

// Require 路由级授权中间件
//
// 必须挂在认证中间件之后；context 中没有 Identity 时返回 401。
func Require(rules ...Rule) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := Check(FromContext(r.Context()), rules...); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next(w, r)
		}
	}
}

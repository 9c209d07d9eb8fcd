package auth

import (
	"context"
	"net/http"
	"strings"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/apiserver/httputil"
	"house-rent/pkg/logging"
)

// IdentityResolver 由 Bearer Token 解析调用者
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (*authz.Identity, error)
}

// bearerToken 提取 Authorization: Bearer <token>，格式不符返回空串
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Protect 创建路由级认证中间件
//
// 解析成功后把 Identity 写入 context，供 authz.Require 和 handler 使用；
// 任一步失败直接返回 401。
func Protect(resolver IdentityResolver) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.CurrentIdentity(r.Context(), bearerToken(r))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			ctx := authz.WithIdentity(r.Context(), id)
			ctx = logging.ContextWithUserID(ctx, id.ID)
			next(w, r.WithContext(ctx))
		}
	}
}

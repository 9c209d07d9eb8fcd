package admin

import (
	"net/http"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/shared/model"
)

// Handler 管理员 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建管理员处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册管理员路由（全部仅限 admin）
func (h *Handler) RegisterRoutes(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	adminOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return protect(authz.Require(authz.RequireRole(model.UserRoleAdmin))(next))
	}

	mux.HandleFunc("GET /api/admin/pending-owners", adminOnly(h.PendingOwners))
	mux.HandleFunc("PATCH /api/admin/approve-owner/{id}", adminOnly(h.ApproveOwner))
	mux.HandleFunc("GET /api/admin/users", adminOnly(h.Users))
}

// PendingOwners 待审批 owner 列表
//
// 路由: GET /api/admin/pending-owners
func (h *Handler) PendingOwners(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListPendingOwners(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, users)
}

// ApproveOwner 审批 owner
//
// 路由: PATCH /api/admin/approve-owner/{id}
func (h *Handler) ApproveOwner(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ApproveOwner(r.Context(), authz.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

// Users 全部用户
//
// 路由: GET /api/admin/users
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, users)
}

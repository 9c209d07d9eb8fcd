package property

import (
	"net/http"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/shared/model"
)

// Handler 房源 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建房源处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册房源路由
//
// protect 为认证中间件，挂在所有需要登录的路由上。
func (h *Handler) RegisterRoutes(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	ownerOrAdmin := authz.RequireRole(model.UserRoleOwner, model.UserRoleAdmin)
	adminOnly := authz.RequireRole(model.UserRoleAdmin)

	mux.HandleFunc("GET /api/properties", h.ListPublic)
	mux.HandleFunc("GET /api/properties/mine", protect(authz.Require(ownerOrAdmin)(h.ListMine)))
	mux.HandleFunc("GET /api/properties/{id}", h.Get)
	mux.HandleFunc("POST /api/properties", protect(authz.Require(ownerOrAdmin, authz.RequireOwnerApproved())(h.Create)))
	mux.HandleFunc("PUT /api/properties/{id}", protect(h.Update))
	mux.HandleFunc("DELETE /api/properties/{id}", protect(h.Delete))
	mux.HandleFunc("POST /api/properties/approve-all", protect(authz.Require(adminOnly)(h.ApproveAll)))
}

// ListPublic 公开房源列表
//
// 路由: GET /api/properties
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.ListPublic(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, props)
}

// ListMine 当前 owner 的房源（admin 为全部房源）
//
// 路由: GET /api/properties/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.ListMine(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, props)
}

// Get 房源详情
//
// 路由: GET /api/properties/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Create 发布房源
//
// 路由: POST /api/properties
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), authz.FromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

// Update 更新房源
//
// 路由: PUT /api/properties/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := httputil.DecodeJSON(w, r, &patch); err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), authz.FromContext(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Delete 删除房源
//
// 路由: DELETE /api/properties/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), authz.FromContext(r.Context()), r.PathValue("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, struct{}{})
}

// ApproveAll 批量审批
//
// 路由: POST /api/properties/approve-all
func (h *Handler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ApproveAllPending(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

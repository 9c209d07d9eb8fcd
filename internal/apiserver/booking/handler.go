package booking

import (
	"net/http"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/shared/model"
)

// Handler 预约 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建预约处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册预约路由（全部需要登录）
func (h *Handler) RegisterRoutes(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	ownerOrAdmin := authz.RequireRole(model.UserRoleOwner, model.UserRoleAdmin)
	adminOnly := authz.RequireRole(model.UserRoleAdmin)

	mux.HandleFunc("POST /api/bookings", protect(h.Submit))
	mux.HandleFunc("GET /api/bookings", protect(h.List))
	mux.HandleFunc("GET /api/bookings/me", protect(h.List))
	mux.HandleFunc("PATCH /api/bookings/{id}", protect(authz.Require(ownerOrAdmin)(h.Transition)))
	mux.HandleFunc("PATCH /api/bookings/{id}/cancel", protect(h.Cancel))
	mux.HandleFunc("GET /api/bookings/{id}/history", protect(authz.Require(adminOnly)(h.History)))
}

// Submit 提交预约
//
// 路由: POST /api/bookings
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	b, err := h.svc.Submit(r.Context(), authz.FromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, b)
}

// List 当前用户可见的预约
//
// 路由: GET /api/bookings, GET /api/bookings/me
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListForIdentity(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, list)
}

// Transition 更新预约状态
//
// 路由: PATCH /api/bookings/{id}
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var in TransitionInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	b, err := h.svc.Transition(r.Context(), authz.FromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// Cancel renter 取消预约
//
// 路由: PATCH /api/bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Cancel(r.Context(), authz.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// History 预约事件历史
//
// 路由: GET /api/bookings/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.History(r.Context(), authz.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, events)
}

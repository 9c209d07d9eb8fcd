package auth

import (
	"net/http"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/shared/apperr"
)

// Handler 认证 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建认证处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	protect := Protect(h.svc)

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/me", protect(h.Me))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success bool `json:"success"`
	*Session
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
//
// 路由: POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{Success: true, Session: session})
}

// Login 用户登录
//
// 路由: POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Success: true, Session: session})
}

// Me 获取当前用户信息
//
// 路由: GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := authz.FromContext(r.Context())
	if id == nil {
		httputil.WriteError(w, apperr.Unauthenticated(msgNoToken))
		return
	}

	user, err := h.svc.GetUser(r.Context(), id.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

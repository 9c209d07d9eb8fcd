package server

import (
	"net/http"

	"house-rent/internal/apiserver/admin"
	"house-rent/internal/apiserver/auth"
	"house-rent/internal/apiserver/booking"
	"house-rent/internal/apiserver/property"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 基础:
//   - GET /health            - 服务健康检查
//   - GET /api/test          - 连通性测试
//   - GET /metrics           - Prometheus 指标
//   - GET /api/openapi.yaml  - OpenAPI 文档
//
// 认证 (auth):
//   - POST /api/auth/register
//   - POST /api/auth/login
//   - GET  /api/auth/me
//
// 房源 (property):
//   - GET    /api/properties
//   - GET    /api/properties/mine
//   - GET    /api/properties/{id}
//   - POST   /api/properties
//   - PUT    /api/properties/{id}
//   - DELETE /api/properties/{id}
//   - POST   /api/properties/approve-all
//
// 预约 (booking):
//   - POST  /api/bookings
//   - GET   /api/bookings, /api/bookings/me
//   - PATCH /api/bookings/{id}
//   - PATCH /api/bookings/{id}/cancel
//   - GET   /api/bookings/{id}/history
//
// 管理员 (admin):
//   - GET   /api/admin/pending-owners
//   - PATCH /api/admin/approve-owner/{id}
//   - GET   /api/admin/users
//
// 其余 /api/ 路径统一返回 404。
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/test", h.APITest)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.opts.Registry, promhttp.HandlerOpts{}))
	if h.docs != nil {
		h.docs.RegisterRoutes(mux)
	}

	auth.NewHandler(h.authSvc).RegisterRoutes(mux)

	protect := auth.Protect(h.authSvc)
	property.NewHandler(h.propertySvc).RegisterRoutes(mux, protect)
	booking.NewHandler(h.bookingSvc).RegisterRoutes(mux, protect)
	admin.NewHandler(h.adminSvc).RegisterRoutes(mux, protect)

	mux.HandleFunc("/api/", h.notFound)

	// 由外到内：CORS → 请求 ID → 访问日志 → 指标 → panic 恢复
	var handler http.Handler = mux
	handler = recoverMiddleware(h.logger, h.opts.Production)(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	handler = accessLogMiddleware(h.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)
	return handler
}

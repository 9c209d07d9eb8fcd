// Package server 路由装配与 HTTP 基础设施
//
// 文件组织：
//   - common.go: Handler 定义、健康检查
//   - handler.go: 路由表与中间件链
//   - middleware.go: 请求 ID、访问日志、panic 恢复、CORS
//   - metrics.go: Prometheus 指标
package server

import (
	"fmt"
	"net/http"

	"house-rent/internal/apiserver/admin"
	"house-rent/internal/apiserver/auth"
	"house-rent/internal/apiserver/booking"
	"house-rent/internal/apiserver/docs"
	"house-rent/internal/apiserver/httputil"
	"house-rent/internal/apiserver/property"
	"house-rent/internal/shared/cache"
	"house-rent/internal/shared/eventbus"
	"house-rent/internal/shared/storage"
	"house-rent/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
)

// Options 服务装配参数
type Options struct {
	// Production 生产环境隐藏 500 错误细节
	Production bool
	Auth       auth.Config
	Booking    booking.Options
	Logger     *logging.Logger
	// Registry 指标注册表；nil 时创建独立注册表
	Registry *prometheus.Registry
}

// Handler API 处理器
//
// 持有各领域服务，Router() 把它们的路由挂到同一个 mux 上。
type Handler struct {
	opts    Options
	logger  *logging.Logger
	metrics *Metrics

	authSvc     *auth.Service
	propertySvc *property.Service
	bookingSvc  *booking.Service
	adminSvc    *admin.Service
	docs        *docs.Handler
}

// NewHandler 创建 Handler 实例
//
// listings/events 为 nil 时分别退化为 NoOp 缓存和进程内事件日志。
func NewHandler(store storage.PersistentStore, listings cache.ListingCache, events eventbus.BookingEventBus, apiDocs *docs.Handler, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Default("api")
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	h := &Handler{
		opts:        opts,
		logger:      opts.Logger,
		metrics:     NewMetrics("house_rent", opts.Registry),
		authSvc:     auth.NewService(store, opts.Auth),
		propertySvc: property.NewService(store, listings, opts.Logger),
		bookingSvc:  booking.NewService(store, events, opts.Booking, opts.Logger),
		adminSvc:    admin.NewService(store, opts.Logger),
		docs:        apiDocs,
	}
	h.propertySvc.SetMetrics(h.metrics)
	h.bookingSvc.SetMetrics(h.metrics)
	h.adminSvc.SetMetrics(h.metrics)
	return h
}

// Auth 认证服务（启动时创建管理员账号使用）
func (h *Handler) Auth() *auth.Service {
	return h.authSvc
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// APITest 连通性测试
//
// 路由: GET /api/test
func (h *Handler) APITest(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "API is working!"})
}

// notFound 未注册的 /api/ 路由
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
		Success: false,
		Message: fmt.Sprintf("API endpoint not found: %s %s", r.Method, r.URL.Path),
	})
}

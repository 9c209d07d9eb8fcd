// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 包含所有 API Server 指标
//
// 同时实现 property.Recorder、booking.Recorder 与 admin.Recorder。
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 业务指标
	BookingSubmissions prometheus.Counter
	BookingTransitions *prometheus.CounterVec
	OwnerApprovals     prometheus.Counter
	PropertyApprovals  prometheus.Counter
}

// NewMetrics 创建指标实例并注册到 reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		BookingSubmissions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_submitted_total",
				Help:      "Total booking requests submitted",
			},
		),
		BookingTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_transitions_total",
				Help:      "Total booking status transitions",
			},
			[]string{"from", "to"},
		),
		OwnerApprovals: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "owners_approved_total",
				Help:      "Total owner accounts approved",
			},
		),
		PropertyApprovals: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "properties_approved_total",
				Help:      "Total properties approved in bulk",
			},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		wrapped := newStatusRecorder(w)
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// 带 ID 的资源前缀及其固定子路径
var idRoutes = []struct {
	prefix string
	fixed  map[string]bool
}{
	{"/api/properties/", map[string]bool{"mine": true, "approve-all": true}},
	{"/api/bookings/", map[string]bool{"me": true}},
	{"/api/admin/approve-owner/", nil},
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数
//
//	/api/bookings/bk-123/cancel -> /api/bookings/{id}/cancel
func normalizePath(path string) string {
	for _, r := range idRoutes {
		rest, ok := strings.CutPrefix(path, r.prefix)
		if !ok || rest == "" {
			continue
		}
		id, tail, _ := strings.Cut(rest, "/")
		if r.fixed[id] {
			return path
		}
		if tail == "" {
			return r.prefix + "{id}"
		}
		return r.prefix + "{id}/" + tail
	}
	return path
}

// BookingSubmitted 记录预约提交
func (m *Metrics) BookingSubmitted() {
	m.BookingSubmissions.Inc()
}

// BookingTransition 记录预约状态变更
func (m *Metrics) BookingTransition(from, to string) {
	m.BookingTransitions.WithLabelValues(from, to).Inc()
}

// OwnerApproved 记录 owner 审批
func (m *Metrics) OwnerApproved() {
	m.OwnerApprovals.Inc()
}

// PropertiesApproved 记录批量审批的房源数
func (m *Metrics) PropertiesApproved(n int64) {
	m.PropertyApprovals.Add(float64(n))
}

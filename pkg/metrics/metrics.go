// Package metrics Prometheus指标采集
//
// 指标分两类：
// - HTTP层：请求数、时延、在途数，由Gin中间件自动采集
// - 业务层：下单/取消/清理、注册登录等计数，由应用层显式上报
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal HTTP请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求时延分布
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshop_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 在途请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookshop_http_requests_in_progress",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// OrdersCreatedTotal 下单总数
	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshop_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	// OrdersCancelledTotal 取消订单总数
	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshop_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		},
	)

	// OrderCleanupsTotal 订单后台清理结果计数
	OrderCleanupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshop_order_cleanups_total",
			Help: "Total number of background order cleanup runs",
		},
		[]string{"result"},
	)

	// UsersRegisteredTotal 注册用户总数
	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshop_users_registered_total",
			Help: "Total number of registered users",
		},
	)

	// AuthBlacklistSkippedTotal Redis熔断导致黑名单检查降级的次数
	AuthBlacklistSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshop_auth_blacklist_skipped_total",
			Help: "Times the token blacklist check was skipped due to an open circuit breaker",
		},
	)

	// CircuitBreakerState 熔断器状态 0=closed 1=open 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookshop_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)
)

// GinMiddleware 采集HTTP层指标
// 用路由模板而非原始URL做path标签，避免/book/123这类高基数标签
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPRequestsInProgress.Inc()

		c.Next()

		HTTPRequestsInProgress.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 端点
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Package observe 暴露 Prometheus 指标
package observe

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义
var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dbtalk_queries_total",
		Help: "按数据库类型与结果统计的查询执行次数",
	}, []string{"source", "status"})

	ValidationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dbtalk_validation_rejections_total",
		Help: "未通过安全校验的查询数",
	}, []string{"source"})

	ConnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dbtalk_connect_attempts_total",
		Help: "数据库连接尝试次数",
	}, []string{"source", "result"})

	QueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dbtalk_query_execution_seconds",
		Help:    "查询执行耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dbtalk_http_request_duration_seconds",
		Help:    "HTTP 请求耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "code"})
)

// Register 必须在 main 调用一次
func Register() {
	prometheus.MustRegister(QueriesTotal, ValidationRejections, ConnectAttempts, QueryDuration, httpRequestDuration)
}

// Handler 返回 HTTP 处理器
func Handler() http.Handler { return promhttp.Handler() }

// PrometheusMiddleware 记录每个请求的耗时，路径使用路由模板以控制基数
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveQuery 记录一次查询执行
func ObserveQuery(source string, success bool, elapsed time.Duration) {
	status := "success"
	if !success {
		status = "failed"
	}
	QueriesTotal.WithLabelValues(source, status).Inc()
	QueryDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

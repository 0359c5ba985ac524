package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzcart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buzcart_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	commerceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzcart_commerce_operations_total",
			Help: "Cart and order operations by outcome",
		},
		[]string{"operation", "status"},
	)

	stockRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buzcart_stock_rejections_total",
			Help: "Requests rejected because a product had insufficient stock",
		},
	)
)

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RecordOperation counts a cart/order operation once its handler has written
// a response.
func RecordOperation(c *gin.Context, operation string) {
	status := "success"
	if code := c.Writer.Status(); code < 200 || code >= 300 {
		status = "error"
	}
	commerceOperations.WithLabelValues(operation, status).Inc()
}

func RecordStockRejection() {
	stockRejections.Inc()
}

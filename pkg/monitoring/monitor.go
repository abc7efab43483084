package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 业务指标：会话提交、XP 发放、徽章授予
	SessionsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrg_sessions_submitted_total",
			Help: "Total number of submitted practice sessions",
		},
		[]string{"modality"},
	)

	XPAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrg_xp_awarded_total",
			Help: "Total XP awarded, by ledger source",
		},
		[]string{"source"},
	)

	BadgesGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrg_badges_granted_total",
			Help: "Total badges granted",
		},
		[]string{"badge_key"},
	)

	PipelineStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrg_pipeline_step_failures_total",
			Help: "Submission pipeline steps that failed after the session was committed",
		},
		[]string{"step"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SessionsSubmitted)
	prometheus.MustRegister(XPAwarded)
	prometheus.MustRegister(BadgesGranted)
	prometheus.MustRegister(PipelineStepFailures)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

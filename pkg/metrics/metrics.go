package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

type Metrics struct {
	registry        *prometheus.Registry
	namespace       string
	httpReqCnt      *prometheus.CounterVec
	httpDur         *prometheus.HistogramVec
	httpInfl        *prometheus.GaugeVec
	auditEntries    *prometheus.CounterVec
	auditSuppressed *prometheus.CounterVec
	auditFailures   prometheus.Counter
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	auditEntries := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "audit_entries_total"}, []string{"action", "module"})
	auditSuppressed := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "audit_suppressed_total"}, []string{"reason"})
	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "audit_failures_total"})
	r.MustRegister(auditEntries, auditSuppressed, auditFailures)

	return &Metrics{
		registry:        r,
		namespace:       ns,
		httpReqCnt:      httpReqCnt,
		httpDur:         httpDur,
		httpInfl:        httpInfl,
		auditEntries:    auditEntries,
		auditSuppressed: auditSuppressed,
		auditFailures:   auditFailures,
	}
}

// AuditRecorded counts a persisted audit entry.
func (m *Metrics) AuditRecorded(action, module string) {
	m.auditEntries.WithLabelValues(action, module).Inc()
}

// AuditSuppressed counts an entry skipped by the recorder. Reason is
// "listing" or "duplicate".
func (m *Metrics) AuditSuppressed(reason string) {
	m.auditSuppressed.WithLabelValues(reason).Inc()
}

// AuditFailed counts a swallowed audit persistence failure.
func (m *Metrics) AuditFailed() {
	m.auditFailures.Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

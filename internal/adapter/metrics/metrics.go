// Package metrics exposes Prometheus collectors for the review workflow and HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "avm"

// Metrics implements ports.Metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	applicationsSubmitted prometheus.Counter
	applicationsReviewed  *prometheus.CounterVec
	reviewDuration        *prometheus.HistogramVec
	vendorsProvisioned    prometheus.Counter
	notificationFailures  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		applicationsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Vendor applications accepted for review.",
		}),
		applicationsReviewed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_reviewed_total",
			Help:      "Review decisions committed, by resulting status.",
		}, []string{"status"}),
		reviewDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_duration_seconds",
			Help:      "Time to commit a review decision, including provisioning.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		vendorsProvisioned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vendors_provisioned_total",
			Help:      "Vendor accounts created from approved applications.",
		}),
		notificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Outcome notices that could not be delivered.",
		}, []string{"kind"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) ApplicationSubmitted() { m.applicationsSubmitted.Inc() }

func (m *Metrics) ApplicationReviewed(status domain.ApplicationStatus, d time.Duration) {
	m.applicationsReviewed.WithLabelValues(string(status)).Inc()
	m.reviewDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}

func (m *Metrics) VendorProvisioned() { m.vendorsProvisioned.Inc() }

func (m *Metrics) NotificationFailed(kind string) {
	m.notificationFailures.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency. Unmatched routes share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

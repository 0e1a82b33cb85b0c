// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
	Logins        *prometheus.CounterVec
	PhotoUploads  *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "field_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "field_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "field_logins_total",
			Help: "Login attempts by channel and result.",
		}, []string{"channel", "result"}),
		PhotoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "field_photo_uploads_total",
			Help: "Photo batches by owner kind and result.",
		}, []string{"owner", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "field_notifications_total",
			Help: "Stored notifications by type.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.Latency,
		m.Logins,
		m.PhotoUploads,
		m.Notifications,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so services work without metrics.

func (m *Metrics) Login(channel string, ok bool) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(channel, result(ok)).Inc()
}

func (m *Metrics) PhotoBatch(owner string, ok bool) {
	if m == nil {
		return
	}
	m.PhotoUploads.WithLabelValues(owner, result(ok)).Inc()
}

func (m *Metrics) Notification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

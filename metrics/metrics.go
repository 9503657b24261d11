// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics owns the Prometheus registry exposed at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	AuthEvents        *prometheus.CounterVec
	UploadsTotal      *prometheus.CounterVec
	AssistantRequests *prometheus.CounterVec
}

// New creates a private registry with Go and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the application metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thinkshare_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thinkshare_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thinkshare_auth_events_total",
				Help: "Session lifecycle events by type and result",
			},
			[]string{"event", "result"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thinkshare_uploads_total",
				Help: "Image host uploads by result",
			},
			[]string{"result"},
		),
		AssistantRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thinkshare_assistant_requests_total",
				Help: "Writing assistant requests by provider and result",
			},
			[]string{"provider", "result"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthEvents, m.UploadsTotal, m.AssistantRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Result returns "ok" or "error" for use as a result label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// AuthEvent counts a session lifecycle event. Safe on a nil receiver.
func (m *Metrics) AuthEvent(event string, err error) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, Result(err)).Inc()
}

// Upload counts an image host upload. Safe on a nil receiver.
func (m *Metrics) Upload(err error) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(Result(err)).Inc()
}

// Assistant counts a text-generation request. Safe on a nil receiver.
func (m *Metrics) Assistant(provider string, err error) {
	if m == nil {
		return
	}
	m.AssistantRequests.WithLabelValues(provider, Result(err)).Inc()
}

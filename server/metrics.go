// server/metrics.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the HTTP service.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests            *prometheus.CounterVec
	RequestDurations    *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	ComputationFailures *prometheus.CounterVec
	ComputeDurations    *prometheus.HistogramVec
}

// NewMetrics registers the service's metrics with reg, or with the global
// Prometheus registry if reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elsa_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "elsa_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elsa_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route"}), "elsa_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	lookups, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elsa_cache_lookups_total",
		Help: "Response cache lookups, labeled by cache layer and result (hit or miss).",
	}, []string{"layer", "result"}), "elsa_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elsa_computation_failures_total",
		Help: "Failed zone computations, labeled by reason.",
	}, []string{"reason"}), "elsa_computation_failures_total")
	if err != nil {
		return nil, err
	}

	compute, err := registerCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elsa_compute_duration_seconds",
		Help:    "Time spent computing zones and centerlines in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"}), "elsa_compute_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:            gatherer,
		Requests:            requests,
		RequestDurations:    durations,
		CacheLookups:        lookups,
		ComputationFailures: failures,
		ComputeDurations:    compute,
	}, nil
}

// Handler exposes the gathered metrics for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) cacheLookup(layer string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(layer, result).Inc()
}

func (m *Metrics) computationFailed(reason string) {
	if m != nil {
		m.ComputationFailures.WithLabelValues(reason).Inc()
	}
}

// registerCollector registers c, returning the already registered
// collector of the same type if there is one.
func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}

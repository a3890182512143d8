// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package metrics defines the Prometheus collectors exported at /metrics.
// Collectors are registered once at package load via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method, route pattern, and
	// status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks in-flight requests.
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookhub",
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "In-flight HTTP requests",
		},
	)

	// RecommendDuration observes end-to-end recommendation pipeline latency.
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bookhub",
			Subsystem: "recommend",
			Name:      "pipeline_duration_seconds",
			Help:      "Recommendation pipeline latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// RecommendMatrixUsers and RecommendMatrixBooks record the dimensions
	// of the last interaction matrix built.
	RecommendMatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookhub",
			Subsystem: "recommend",
			Name:      "matrix_users",
			Help:      "Users in the last interaction matrix",
		},
	)
	RecommendMatrixBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookhub",
			Subsystem: "recommend",
			Name:      "matrix_books",
			Help:      "Books in the last interaction matrix",
		},
	)

	// RecommendRequestsTotal counts recommendation requests by outcome.
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Subsystem: "recommend",
			Name:      "requests_total",
			Help:      "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendColdStartTotal counts requests from users whose interaction
	// count is below the configured minimum.
	RecommendColdStartTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Subsystem: "recommend",
			Name:      "cold_start_total",
			Help:      "Recommendation requests from users below the interaction minimum",
		},
	)

	// AuthFailuresTotal counts rejected authentication attempts by reason.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Authentication failures by reason",
		},
		[]string{"reason"},
	)
)

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NominationsSubmitted counts accepted nominations.
	NominationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "award_nominations_submitted_total",
			Help: "Total number of accepted nominations",
		},
	)

	// TokensIssued counts confirmation tokens by reason (submit|renew).
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_tokens_issued_total",
			Help: "Total number of issued confirmation tokens",
		},
		[]string{"reason"},
	)

	// Redemptions counts token redemptions by result (confirmed|expired|invalid).
	Redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_token_redemptions_total",
			Help: "Total number of token redemption attempts",
		},
		[]string{"result"},
	)

	// TokensPurged counts verification records removed by the purge job.
	TokensPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "award_tokens_purged_total",
			Help: "Total number of purged expired verification records",
		},
	)

	// SearchFallbacks counts searches retried with the substring matcher.
	SearchFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_search_fallbacks_total",
			Help: "Total number of searches that fell back to substring matching",
		},
		[]string{"matcher"},
	)

	// LoginAttempts records admin login attempts by result (success|failure).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"result"},
	)

	// RequestLatency measures HTTP request latencies.
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "award_request_latency_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

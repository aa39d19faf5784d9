// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sp_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sp_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_match_requests_created_total",
		Help: "Match requests created.",
	})

	RequestsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_match_requests_deleted_total",
		Help: "Match requests deleted.",
	})

	DuplicateRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_match_duplicate_requests_total",
		Help: "Match requests rejected as duplicates.",
	})

	// OrphanCounterUpdates 计数更新时学伴已不存在，op 为 increment 或 decrement
	OrphanCounterUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sp_partner_counter_orphan_updates_total",
		Help: "Counter updates skipped because the partner no longer exists.",
	}, []string{"op"})

	CountersReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_partner_counters_reconciled_total",
		Help: "Partner counters corrected by reconciliation.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_top_rated_cache_hits_total",
		Help: "Top-rated cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sp_top_rated_cache_misses_total",
		Help: "Top-rated cache misses.",
	})
)

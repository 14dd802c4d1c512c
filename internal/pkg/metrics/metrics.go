// Package metrics defines and registers all custom Prometheus metrics for the
// blog service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts read-through cache lookups.
// Labels:
//   - kind: "top" for the front listing, "post" for a single permalink
//   - result: "hit", "miss", or "error" (backend unavailable, served from store)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of cache lookups, by entry kind and result.",
	},
	[]string{"kind", "result"},
)

// CacheWriteErrorsTotal counts cache writes that failed and were skipped.
var CacheWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_write_errors_total",
		Help:      "Total number of cache writes that failed.",
	},
	[]string{"kind"},
)

// CacheFlushesTotal counts operator-triggered cache resets.
var CacheFlushesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_flushes_total",
		Help:      "Total number of full cache flushes.",
	},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreQueriesTotal counts post store reads issued after a cache miss or a
// forced refresh.
// Label:
//   - query: "recent" or "by_id"
var StoreQueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_queries_total",
		Help:      "Total number of post store queries issued by the read-through cache.",
	},
	[]string{"query"},
)

// ── Post / account metrics ────────────────────────────────────────────────────

// PostsPublishedTotal counts successfully published posts.
var PostsPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_published_total",
		Help:      "Total number of posts published.",
	},
)

// SignupsTotal counts signup attempts that reached the store.
// Label:
//   - result: "created" or "exists"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signups, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cache metrics
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	RefreshesTotal    *prometheus.CounterVec
	StoreWriteErrors  prometheus.Counter
	TokenListEntries  prometheus.Gauge
	LastRefreshUnixTS prometheus.Gauge

	// Latency metrics
	RPCCallLatency       *prometheus.HistogramVec
	UpstreamFetchLatency *prometheus.HistogramVec

	// Enrichment metrics
	EnrichmentRequests *prometheus.CounterVec
	AccountsEnriched   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_wallet_tokens"
	}

	return &Metrics{
		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokencache",
			Name:      "hits_total",
			Help:      "Total number of token list reads served from the store",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokencache",
			Name:      "misses_total",
			Help:      "Total number of token list reads that required a refresh",
		}),
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokencache",
			Name:      "refreshes_total",
			Help:      "Total number of token list refreshes by status",
		}, []string{"status"}),
		StoreWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokencache",
			Name:      "store_write_errors_total",
			Help:      "Total number of failed token list store writes",
		}),
		TokenListEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tokencache",
			Name:      "entries",
			Help:      "Number of entries in the last fetched token list",
		}),
		LastRefreshUnixTS: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful token list refresh",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		UpstreamFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_latency_seconds",
			Help:      "Upstream HTTP fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),

		// Enrichment metrics
		EnrichmentRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "enrichment_requests_total",
			Help:      "Total number of wallet enrichment requests by outcome",
		}, []string{"outcome"}),
		AccountsEnriched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "accounts_enriched_total",
			Help:      "Total number of token accounts returned by enrichment",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordRefresh records a token list refresh outcome.
func RecordRefresh(status string, entries int, unixSeconds int64) {
	DefaultMetrics.RefreshesTotal.WithLabelValues(status).Inc()
	if status == "success" {
		DefaultMetrics.TokenListEntries.Set(float64(entries))
		DefaultMetrics.LastRefreshUnixTS.Set(float64(unixSeconds))
	}
}

// RecordStoreWriteError increments the store write error counter.
func RecordStoreWriteError() {
	DefaultMetrics.StoreWriteErrors.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordUpstreamLatency records latency of an upstream HTTP fetch.
func RecordUpstreamLatency(upstream string, seconds float64) {
	DefaultMetrics.UpstreamFetchLatency.WithLabelValues(upstream).Observe(seconds)
}

// RecordEnrichment records the outcome of a wallet enrichment.
func RecordEnrichment(outcome string, accounts int) {
	DefaultMetrics.EnrichmentRequests.WithLabelValues(outcome).Inc()
	if accounts > 0 {
		DefaultMetrics.AccountsEnriched.Add(float64(accounts))
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// Package metrics defines the Prometheus collectors shared across the
// engine, bus, journal, and transport layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote pipeline metrics
var (
	// VotesAppliedTotal counts ledger mutations that changed state, by direction.
	VotesAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_applied_total",
			Help: "Total votes that changed ledger state, by direction",
		},
		[]string{"direction"},
	)

	// VoteNoopsTotal counts idempotent re-submissions (same direction twice).
	VoteNoopsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vote_noops_total",
			Help: "Total idempotent vote submissions that changed nothing",
		},
	)

	// VotesRejectedTotal counts rejected submissions by reason.
	VotesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_rejected_total",
			Help: "Total rejected vote submissions by reason",
		},
		[]string{"reason"},
	)
)

// Ranking metrics
var (
	RankingRecomputesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_recomputes_total",
			Help: "Total category ranking recomputations",
		},
	)

	RankingRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_recompute_duration_seconds",
			Help:    "Duration of a single category ranking recomputation",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	RankingNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_notifications_total",
			Help: "Total coalesced change notifications flushed to the bus",
		},
	)
)

// Aggregator metrics
var (
	AggregatorRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_rebuilds_total",
			Help: "Total cold-start rebuilds of product stats from the ledger",
		},
	)

	AggregatorDivergenceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_divergence_total",
			Help: "Total detected ledger/aggregator divergences",
		},
	)
)

// Subscription bus metrics
var (
	BusSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bus_subscribers",
			Help: "Current number of registered subscribers",
		},
	)

	BusListenerPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bus_listener_panics_total",
			Help: "Total listener panics recovered during notification",
		},
	)
)

// Activity metrics
var (
	ActiveUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_users",
			Help: "Users seen inside the activity window, as of the last read",
		},
	)
)

// Journal metrics
var (
	JournalAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_appends_total",
			Help: "Total votes handed to the write-behind journal",
		},
	)

	JournalAppendErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_append_errors_total",
			Help: "Total journal append failures",
		},
	)

	JournalDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_drops_total",
			Help: "Total votes dropped because the journal buffer was full",
		},
	)
)

// Catalog cache metrics
var (
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total catalog cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total catalog cache misses",
		},
	)

	CatalogCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_evictions_total",
			Help: "Total expired catalog cache entries evicted",
		},
	)

	CatalogCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_cache_size",
			Help: "Current number of catalog cache entries (including expired)",
		},
	)
)

// WebSocket metrics
var (
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected WebSocket subscribers",
		},
	)

	WebSocketSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_clients_evicted_total",
			Help: "Total WebSocket clients evicted for not keeping up",
		},
	)

	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "Duration of WebSocket message sends",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
)

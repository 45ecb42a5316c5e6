package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics
var (
	// CacheHitsTotal tracks range-cache hits per reading type
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biometrics_cache_hits_total",
			Help: "Total number of range cache hits",
		},
		[]string{"type"},
	)

	// CacheMissesTotal tracks range-cache misses per reading type
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biometrics_cache_misses_total",
			Help: "Total number of range cache misses",
		},
		[]string{"type"},
	)
)

// Source metrics
var (
	// FallbacksTotal counts queries served by the synthetic generator after
	// the platform bridge failed or was unavailable
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biometrics_source_fallbacks_total",
			Help: "Total number of queries that fell back to the synthetic generator",
		},
		[]string{"type"},
	)

	// BridgeRequestsTotal counts platform bridge HTTP calls
	BridgeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biometrics_bridge_requests_total",
			Help: "Total number of platform bridge requests",
		},
		[]string{"endpoint", "status"},
	)
)

// Pipeline metrics
var (
	// AnalyzeDuration tracks how long analysis snapshots take to assemble
	AnalyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biometrics_analyze_duration_seconds",
			Help:    "Duration of analysis snapshot assembly in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PollTicksTotal counts realtime monitor poll cycles
	PollTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biometrics_monitor_poll_ticks_total",
			Help: "Total number of realtime monitor poll cycles",
		},
	)

	// PushReadingsTotal counts readings received over the push channel
	PushReadingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biometrics_push_readings_total",
			Help: "Total number of readings received from the platform push channel",
		},
	)

	// PushDroppedTotal counts malformed push payloads that were dropped
	PushDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biometrics_push_dropped_total",
			Help: "Total number of malformed push payloads dropped",
		},
	)

	// EventsDroppedTotal counts events dropped because a subscriber was slow
	EventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biometrics_events_dropped_total",
			Help: "Total number of stream events dropped due to slow subscribers",
		},
	)

	// AppStartTime records when the service started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "biometrics_app_start_time_seconds",
			Help: "Unix timestamp of when the service started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "shopfloor"
)

var (
	DashboardComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "dashboard", "compute_duration_seconds"),
		Help:    "Duration of dashboard aggregation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"mode"})
	DashboardCacheResult = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "dashboard", "cache_result_total"),
		Help: "Dashboard requests by cache result",
	}, []string{"result"})
	ResponsesSuperseded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "view", "superseded_total"),
		Help: "Computations dropped because a newer request for the same view arrived",
	}, []string{"view"})
	EntriesRegistered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "entry", "registered_total"),
		Help: "Entry registrations by kind and outcome",
	}, []string{"kind", "outcome"})
	OverlapChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "entry", "overlap_checks_total"),
		Help: "Overlap checks by result",
	}, []string{"result"})
	ReferenceDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "reference", "degraded_total"),
		Help: "Reference data reads that fell back to stale or empty data",
	}, []string{"table", "fallback"})
	EventConsumeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "event", "consume_duration_seconds"),
		Help:    "Duration of entry event consumption in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"subject"})
	WorkerWarmDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "warm_duration_seconds"),
		Help: "Duration of last dashboard warm-up in seconds",
	}, []string{"range"})
)

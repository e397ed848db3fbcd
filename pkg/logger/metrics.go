package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndicatorCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_commits_total",
			Help: "Finalized bars committed, per indicator",
		},
		[]string{"indicator"},
	)

	IndicatorUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_updates_total",
			Help: "Forming bars previewed, per indicator",
		},
		[]string{"indicator"},
	)

	BarsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_bars_rejected_total",
			Help: "Bars rejected before reaching the indicators",
		},
		[]string{"reason"},
	)

	RehydrateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indicator_rehydrate_duration_seconds",
			Help:    "Time spent replaying history into a symbol",
			Buckets: prometheus.DefBuckets,
		},
	)

	TrackedSymbols = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "indicator_tracked_symbols",
			Help: "Symbols with indicator state",
		},
	)

	FeedErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_feed_errors_total",
			Help: "Errors raised by bar sources",
		},
		[]string{"source"},
	)
)

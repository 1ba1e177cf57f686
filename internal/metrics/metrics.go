// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Rewrites counts whole-file rewrites by outcome ("ok" or "error").
	Rewrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonledit",
		Name:      "rewrites_total",
		Help:      "Whole-file rewrites by outcome.",
	}, []string{"result"})

	// RewriteDuration observes the time spent rewriting a file.
	RewriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jsonledit",
		Name:      "rewrite_duration_seconds",
		Help:      "Time spent rewriting a record file.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	// Actions counts editing actions by kind and outcome.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonledit",
		Name:      "actions_total",
		Help:      "Editing session actions by kind and outcome.",
	}, []string{"action", "result"})

	// RecordErrors counts edit buffers rejected at commit time.
	RecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonledit",
		Name:      "record_validation_errors_total",
		Help:      "Edit buffers rejected because they are not valid JSON.",
	})

	// Sessions is the number of open editing sessions.
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonledit",
		Name:      "sessions_open",
		Help:      "Open editing sessions.",
	})
)

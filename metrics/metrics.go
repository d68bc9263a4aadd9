// Package metrics exposes the pruner's prometheus instrumentation,
// following the teacher's promauto-registered package-level-var
// convention.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Version reports build provenance, unchanged from the teacher's
// convention of exposing it as a single always-1 gauge with the real
// information carried in labels.
var Version = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "version",
		Help: "Version information of this binary",
	},
	[]string{"started_at", "tag", "commit", "compiler", "goarch", "goos", "goamd64", "vcs", "vcs_revision", "vcs_time", "vcs_modified"},
)

// PrunerCreateDuration measures wall-clock time spent inside Create,
// including range-synthesizer construction.
var PrunerCreateDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "partition_pruner_create_duration_seconds",
		Help:    "Time spent synthesizing a pruner's partition-key range queue",
		Buckets: prometheus.DefBuckets,
	},
)

// RangesProduced records how many partition-key ranges a pruner
// construction yielded, after bound intersection and empty-pair
// removal.
var RangesProduced = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "partition_pruner_ranges_produced",
		Help:    "Number of partition-key ranges produced by pruner construction",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
	},
)

// PredicateKindsSeen counts predicates handed to Create by kind, across
// all constructions.
var PredicateKindsSeen = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "partition_pruner_predicate_kinds_total",
		Help: "Predicates seen by pruner construction, by kind",
	},
	[]string{"kind"},
)

// RangesRemaining is a gauge snapshot of the most recently observed
// queue depth, refreshed by the scanner as it advances a pruner.
var RangesRemaining = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "partition_pruner_ranges_remaining",
		Help: "Partition-key ranges remaining in the most recently touched pruner's queue",
	},
)

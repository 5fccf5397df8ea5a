// Package metrics provides Prometheus metrics for a record build run.
//
// The build is a batch job, so nothing is served: counters accumulate on a
// private registry and WriteTextfile dumps them in the node-exporter textfile
// format once the run finishes.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric of one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	entriesSeen       *prometheus.CounterVec
	entriesSkipped    *prometheus.CounterVec
	recordsSet        *prometheus.CounterVec
	categoriesTracked prometheus.Gauge
	seasonsProcessed  prometheus.Counter

	relaysMatched   *prometheus.CounterVec
	relaysUnmatched *prometheus.CounterVec
	matchDelta      prometheus.Histogram

	leadoffsAccepted *prometheus.CounterVec
	leadoffsRejected *prometheus.CounterVec

	reconcileFilled prometheus.Counter
	reconcileMissed prometheus.Counter

	buildDuration prometheus.Histogram
	lastRunUnix   prometheus.Gauge
}

var (
	globalMu      sync.RWMutex
	globalManager *Manager //nolint:gochecknoglobals // package-level recorder functions
)

func init() { //nolint:gochecknoinits // global manager must exist before any recorder call
	globalManager = NewManager()
}

// NewManager creates a manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recordbook",
		subsystem:        "build",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.entriesSeen = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entries_seen_total",
		Help:        "Time entries handed to the ledger, by origin",
		ConstLabels: m.constLabels,
	}, []string{"origin"})

	m.entriesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entries_skipped_total",
		Help:        "Time entries excluded from record contention, by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.recordsSet = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_set_total",
		Help:        "Record supersessions emitted, by origin of the new holder",
		ConstLabels: m.constLabels,
	}, []string{"origin"})

	m.categoriesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "categories_tracked",
		Help:        "Categories holding a record after the last build",
		ConstLabels: m.constLabels,
	})

	m.seasonsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "seasons_processed_total",
		Help:        "Seasons folded into the ledger",
		ConstLabels: m.constLabels,
	})

	m.relaysMatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "relays_matched_total",
		Help:        "Relay results matched to split telemetry, by relay type",
		ConstLabels: m.constLabels,
	}, []string{"relay"})

	m.relaysUnmatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "relays_unmatched_total",
		Help:        "Relay results with no acceptable split record, by relay type",
		ConstLabels: m.constLabels,
	}, []string{"relay"})

	m.matchDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_delta_seconds",
		Help:        "Absolute difference between relay time and reconstructed split total",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2},
		ConstLabels: m.constLabels,
	})

	m.leadoffsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leadoffs_accepted_total",
		Help:        "Synthetic leadoff entries produced, by event",
		ConstLabels: m.constLabels,
	}, []string{"event"})

	m.leadoffsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leadoffs_rejected_total",
		Help:        "Leadoff legs dropped, by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.reconcileFilled = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reconcile_filled_total",
		Help:        "Previous-holder meets backfilled",
		ConstLabels: m.constLabels,
	})

	m.reconcileMissed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reconcile_missed_total",
		Help:        "Previous-holder meets that could not be found",
		ConstLabels: m.constLabels,
	})

	m.buildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duration_seconds",
		Help:        "Wall time of a full pipeline run",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last run finished",
		ConstLabels: m.constLabels,
	})
}

// Registry exposes the manager's registry for gathering.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all metrics to path in the textfile exposition format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

func current() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// SetGlobal replaces the manager behind the package-level recorders and
// returns the previous one.
func SetGlobal(m *Manager) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := globalManager
	if m != nil {
		globalManager = m
	}
	return prev
}

// Global returns the manager behind the package-level recorders.
func Global() *Manager { return current() }

// RecordEntrySeen counts an entry handed to the ledger.
func RecordEntrySeen(origin string) { current().entriesSeen.WithLabelValues(origin).Inc() }

// RecordEntrySkipped counts an entry left out of contention.
func RecordEntrySkipped(reason string) { current().entriesSkipped.WithLabelValues(reason).Inc() }

// RecordRecordSet counts a supersession.
func RecordRecordSet(origin string) { current().recordsSet.WithLabelValues(origin).Inc() }

// UpdateCategoriesTracked sets the number of categories holding a record.
func UpdateCategoriesTracked(n int) { current().categoriesTracked.Set(float64(n)) }

// RecordSeasonProcessed counts a season folded into the ledger.
func RecordSeasonProcessed() { current().seasonsProcessed.Inc() }

// RecordRelayMatched counts a successful match and its time delta.
func RecordRelayMatched(relay string, deltaSeconds float64) {
	m := current()
	m.relaysMatched.WithLabelValues(relay).Inc()
	m.matchDelta.Observe(deltaSeconds)
}

// RecordRelayUnmatched counts a relay left without split detail.
func RecordRelayUnmatched(relay string) { current().relaysUnmatched.WithLabelValues(relay).Inc() }

// RecordLeadoffAccepted counts a synthetic leadoff entry.
func RecordLeadoffAccepted(event string) { current().leadoffsAccepted.WithLabelValues(event).Inc() }

// RecordLeadoffRejected counts a dropped leadoff leg.
func RecordLeadoffRejected(reason string) { current().leadoffsRejected.WithLabelValues(reason).Inc() }

// RecordReconcile counts backfill hits and misses.
func RecordReconcile(filled, missed int) {
	m := current()
	m.reconcileFilled.Add(float64(filled))
	m.reconcileMissed.Add(float64(missed))
}

// RecordBuildDuration observes a run's wall time and stamps its end.
func RecordBuildDuration(seconds float64, finishedUnix int64) {
	m := current()
	m.buildDuration.Observe(seconds)
	m.lastRunUnix.Set(float64(finishedUnix))
}

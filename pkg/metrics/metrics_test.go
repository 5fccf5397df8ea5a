package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager()

			Convey("Then it should use its own registry", func() {
				So(m, ShouldNotBeNil)
				So(m.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"team": "hawks"}),
				WithRegistry(registry),
			)

			Convey("Then metric names should carry the namespace", func() {
				m.seasonsProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_seasons_processed_total")
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given a fresh global manager", t, func() {
		m := NewManager()
		prev := SetGlobal(m)
		defer SetGlobal(prev)

		Convey("When recording ledger activity", func() {
			RecordEntrySeen("individual")
			RecordEntrySeen("individual")
			RecordEntrySkipped("unparsable")
			RecordRecordSet("leadoff")
			RecordSeasonProcessed()
			UpdateCategoriesTracked(12)

			Convey("Then the counters should reflect it", func() {
				So(value(m, "entriesSeen", "individual"), ShouldEqual, 2)
				So(value(m, "entriesSkipped", "unparsable"), ShouldEqual, 1)
				So(value(m, "recordsSet", "leadoff"), ShouldEqual, 1)
				So(value(m, "seasonsProcessed", ""), ShouldEqual, 1)
				So(value(m, "categoriesTracked", ""), ShouldEqual, 12)
			})
		})

		Convey("When recording relay and reconcile activity", func() {
			RecordRelayMatched("200_free", 0.05)
			RecordRelayUnmatched("400_free")
			RecordLeadoffAccepted("50 Free")
			RecordLeadoffRejected("implausible")
			RecordReconcile(3, 1)

			Convey("Then the counters should reflect it", func() {
				So(value(m, "relaysMatched", "200_free"), ShouldEqual, 1)
				So(value(m, "relaysUnmatched", "400_free"), ShouldEqual, 1)
				So(value(m, "leadoffsAccepted", "50 Free"), ShouldEqual, 1)
				So(value(m, "leadoffsRejected", "implausible"), ShouldEqual, 1)
				So(value(m, "reconcileFilled", ""), ShouldEqual, 3)
				So(value(m, "reconcileMissed", ""), ShouldEqual, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with a recorded run", t, func() {
		m := NewManager()
		m.buildDuration.Observe(0.2)
		m.lastRunUnix.Set(1700000000)

		Convey("When writing a textfile", func() {
			path := filepath.Join(t.TempDir(), "recordbook.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file should contain the exposition", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(raw), "recordbook_build_last_run_timestamp_seconds"), ShouldBeTrue)
			})
		})

		Convey("When the target directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then it should return a wrapped error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, ErrWriteFailed.Error())
			})
		})
	})
}

var metricNames = map[string]string{
	"entriesSeen":       "recordbook_build_entries_seen_total",
	"entriesSkipped":    "recordbook_build_entries_skipped_total",
	"recordsSet":        "recordbook_build_records_set_total",
	"seasonsProcessed":  "recordbook_build_seasons_processed_total",
	"categoriesTracked": "recordbook_build_categories_tracked",
	"relaysMatched":     "recordbook_build_relays_matched_total",
	"relaysUnmatched":   "recordbook_build_relays_unmatched_total",
	"leadoffsAccepted":  "recordbook_build_leadoffs_accepted_total",
	"leadoffsRejected":  "recordbook_build_leadoffs_rejected_total",
	"reconcileFilled":   "recordbook_build_reconcile_filled_total",
	"reconcileMissed":   "recordbook_build_reconcile_missed_total",
}

// value reads a counter or gauge back from the manager's registry. An empty
// label matches the unlabelled series.
func value(m *Manager, field, label string) float64 {
	families, err := m.Registry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != metricNames[field] {
			continue
		}
		for _, metric := range f.GetMetric() {
			if label != "" && !hasLabelValue(metric, label) {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	return 0
}

func hasLabelValue(metric *dto.Metric, v string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetValue() == v {
			return true
		}
	}
	return false
}

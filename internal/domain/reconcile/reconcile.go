// Package reconcile backfills the meet of previous record holders from the
// record history itself.
package reconcile

import (
	"context"
	"math"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// Report counts what a Fill pass did.
type Report struct {
	// Pending is the number of previous holders that lacked a meet.
	Pending int
	Filled  int
	Missed  int
}

type primaryKey struct {
	gender     model.Gender
	event      model.Event
	grade      model.Grade
	hundredths int64
	swimmer    string
}

type secondaryKey struct {
	gender     model.Gender
	event      model.Event
	hundredths int64
	swimmer    string
}

// Reconciler fills missing previous-holder meets.
type Reconciler struct {
	log logger.Logger
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for fills.
func WithLogger(log logger.Logger) Option {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fill sets previous.Meet in place wherever the history holds the same
// swim with a meet. Lookup goes by (gender, event, grade, time, swimmer),
// then by the grade-agnostic (gender, event, time, swimmer). A hit is used
// only when its season equals the previous holder's season. Misses are
// left blank.
func (r *Reconciler) Fill(ctx context.Context, events []model.RecordEvent) Report {
	primary := make(map[primaryKey]int, len(events))
	secondary := make(map[secondaryKey]int, len(events))
	for i, ev := range events {
		h := hundredths(ev.New.Seconds)
		primary[primaryKey{ev.Category.Gender, ev.Category.Event, ev.Category.Grade, h, ev.New.Swimmer}] = i
		sk := secondaryKey{ev.Category.Gender, ev.Category.Event, h, ev.New.Swimmer}
		if _, ok := secondary[sk]; !ok {
			secondary[sk] = i
		}
	}

	var rep Report
	for i := range events {
		ev := &events[i]
		prev := ev.Previous
		if prev == nil || prev.Meet != "" {
			continue
		}
		rep.Pending++
		h := hundredths(prev.Seconds)
		hit, ok := primary[primaryKey{ev.Category.Gender, ev.Category.Event, ev.Category.Grade, h, prev.Swimmer}]
		if !ok {
			hit, ok = secondary[secondaryKey{ev.Category.Gender, ev.Category.Event, h, prev.Swimmer}]
		}
		if ok && events[hit].Season == prev.Season && events[hit].New.Meet != "" {
			prev.Meet = events[hit].New.Meet
			rep.Filled++
			r.log.Debug(ctx, "previous meet filled",
				logger.String("category", ev.Category.String()),
				logger.String("swimmer", prev.Swimmer),
				logger.String("meet", prev.Meet),
			)
			continue
		}
		rep.Missed++
	}
	metrics.RecordReconcile(rep.Filled, rep.Missed)
	return rep
}

func hundredths(secs float64) int64 {
	if math.IsInf(secs, 0) || math.IsNaN(secs) {
		return math.MaxInt64
	}
	return int64(math.Round(secs * 100))
}

// Package leadoff derives individual freestyle entries from the first leg
// of free relays. A leadoff swimmer starts from the blocks, so the leg is
// comparable to an individual swim.
package leadoff

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/relay"
	"github.com/okian/recordbook/internal/domain/swimtime"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// Bounds is an inclusive plausibility window in seconds.
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether secs lies in the window.
func (b Bounds) Contains(secs float64) bool {
	return secs >= b.Min && secs <= b.Max
}

// Default windows.
var (
	Default50  = Bounds{Min: 20.0, Max: 40.0}
	Default100 = Bounds{Min: 45.0, Max: 90.0}
)

// Extractor turns relay leadoff legs into synthetic TimeEntry values.
type Extractor struct {
	bounds   map[model.Event]Bounds
	classify func(model.SplitRecord) model.RelayType
	aliases  alias.Resolver
	log      logger.Logger
}

// New creates an Extractor with the default windows.
func New(opts ...Option) *Extractor {
	x := &Extractor{
		bounds: map[model.Event]Bounds{
			model.Event50Free:  Default50,
			model.Event100Free: Default100,
		},
		classify: relay.NewMatcher().Classify,
		aliases:  alias.Nop{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract derives the leadoff entry of a matched relay. The entry takes the
// relay's date, meet and season.
func (x *Extractor) Extract(mr relay.MatchedRelay) (model.TimeEntry, error) {
	if mr.Match == nil {
		return model.TimeEntry{}, ErrNoSplitDetail
	}
	r := mr.Result
	e, err := x.leg(mr.Match.Record, r.Type, r.Gender)
	if err != nil {
		return e, err
	}
	if g := rosterGrade(r.Roster, e.Swimmer, x.key); g != model.GradeNone {
		e.Category.Grade = g
	}
	e.Date = r.Date
	e.Meet = r.Meet
	e.Season = r.Season
	return e, nil
}

// FromSplit derives the leadoff entry of a split record that no relay
// result claimed.
func (x *Extractor) FromSplit(rec model.SplitRecord) (model.TimeEntry, error) {
	t := x.classify(rec)
	e, err := x.leg(rec, t, rec.Gender)
	if err != nil {
		return e, err
	}
	e.Date = rec.Date
	e.Season = rec.Season
	e.Meet = rec.Meet
	if e.Meet == "" {
		e.Meet = fmt.Sprintf("%s Leadoff", e.Relay)
	}
	return e, nil
}

// leg reads the leadoff leg of rec as relay type t.
func (x *Extractor) leg(rec model.SplitRecord, t model.RelayType, g model.Gender) (model.TimeEntry, error) {
	var (
		event model.Event
		secs  float64
	)
	switch t {
	case model.Relay200Free:
		if len(rec.Splits) < 1 {
			return model.TimeEntry{}, ErrMissingSplit
		}
		event, secs = model.Event50Free, rec.Splits[0]
	case model.Relay400Free:
		if len(rec.Splits) < 2 {
			return model.TimeEntry{}, ErrMissingSplit
		}
		event, secs = model.Event100Free, swimtime.Round2(swimtime.Sum(rec.Splits[0], rec.Splits[1]))
	default:
		return model.TimeEntry{}, fmt.Errorf("%w: %s", ErrNotFreeRelay, t)
	}
	if !swimtime.Valid(secs) {
		return model.TimeEntry{}, ErrMissingSplit
	}
	if len(rec.Swimmers) == 0 {
		return model.TimeEntry{}, ErrMissingName
	}
	name, grade := relay.CleanName(rec.Swimmers[0])
	if name == "" {
		return model.TimeEntry{}, ErrMissingName
	}
	if b, ok := x.bounds[event]; ok && !b.Contains(secs) {
		return model.TimeEntry{}, fmt.Errorf("%w: %s %s", ErrImplausible, event, swimtime.Format(secs))
	}
	relayEvent, _ := t.Event()
	return model.TimeEntry{
		Category: model.Category{Gender: g, Event: event, Grade: grade},
		Seconds:  secs,
		Swimmer:  x.aliases.Resolve(name),
		Origin:   model.OriginLeadoff,
		Relay:    relayEvent,
	}, nil
}

func (x *Extractor) key(name string) string {
	return relay.NormalizeName(x.aliases.Resolve(name))
}

// rosterGrade finds the grade of swimmer on the roster.
func rosterGrade(roster []model.RosterSlot, swimmer string, key func(string) string) model.Grade {
	want := key(swimmer)
	for _, slot := range roster {
		name, suffix := relay.CleanName(slot.Name)
		if key(name) != want {
			continue
		}
		if slot.Grade.IsClass() {
			return slot.Grade
		}
		return suffix
	}
	return model.GradeNone
}

// ExtractAll derives one leadoff per split record in pool. Records claimed
// by a matched relay are read through that relay; the rest stand alone.
// Rejected legs are logged and counted, never returned as errors.
func (x *Extractor) ExtractAll(ctx context.Context, matched []relay.MatchedRelay, pool []model.SplitRecord) []model.TimeEntry {
	claimed := relay.MatchedIndex(matched)
	out := make([]model.TimeEntry, 0, len(pool))
	for i, rec := range pool {
		var (
			e   model.TimeEntry
			err error
		)
		if mr, ok := claimed[i]; ok {
			e, err = x.Extract(*mr)
		} else {
			e, err = x.FromSplit(rec)
		}
		if err != nil {
			reason := rejectReason(err)
			metrics.RecordLeadoffRejected(reason)
			if reason == "implausible" {
				x.log.Info(ctx, "leadoff rejected",
					logger.String("season", string(rec.Season)),
					logger.String("swimmer", firstName(rec.Swimmers)),
					logger.Error(err),
				)
			}
			continue
		}
		metrics.RecordLeadoffAccepted(string(e.Category.Event))
		out = append(out, e)
	}
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrImplausible):
		return "implausible"
	case errors.Is(err, ErrNotFreeRelay):
		return "not_free_relay"
	case errors.Is(err, ErrMissingName):
		return "missing_swimmer"
	}
	return "missing_split"
}

func firstName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

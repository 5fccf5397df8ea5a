// Package relay classifies harvested split records and pairs them with
// official relay results.
//
// The two sources share no identifier. A split record matches a relay when
// enough swimmer names agree and the legs add up to the official time.
package relay

import (
	"context"
	"math"

	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/swimtime"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// Defaults for the Matcher.
const (
	DefaultMinOverlap   = 3
	DefaultTolerance200 = 1.0
	DefaultTolerance400 = 2.0
)

// timeEpsilon absorbs float noise at the tolerance boundary.
const timeEpsilon = 1e-6

// Match is a split record accepted for a relay result.
type Match struct {
	Record model.SplitRecord
	// Index is the record's position in the pool it was drawn from.
	Index   int
	Overlap int
	Total   float64
	Delta   float64
	Legs    []LegDetail
}

// MatchedRelay is a relay result with its split detail, if any. A nil
// Match renders as "detail unavailable".
type MatchedRelay struct {
	Result model.RelayResult
	Match  *Match
}

// Matcher pairs relay results with split records.
type Matcher struct {
	minOverlap   int
	tolerance    map[model.RelayType]float64
	freeSplitMax float64
	aliases      alias.Resolver
	log          logger.Logger
}

// NewMatcher creates a Matcher with the default thresholds.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		minOverlap: DefaultMinOverlap,
		tolerance: map[model.RelayType]float64{
			model.Relay200Medley: DefaultTolerance200,
			model.Relay200Free:   DefaultTolerance200,
			model.Relay400Free:   DefaultTolerance400,
		},
		freeSplitMax: DefaultFreeSplitMax,
		aliases:      alias.Nop{},
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Classify classifies a split record with the matcher's free-leg ceiling.
// A "medley" hint stands in for missing stroke labels.
func (m *Matcher) Classify(rec model.SplitRecord) model.RelayType {
	t := classify(rec.Labels, rec.Splits, m.freeSplitMax)
	if t == model.RelayUnknown && len(rec.Splits) == 4 && len(rec.Labels) == 0 && rec.Hint == "medley" {
		return model.Relay200Medley
	}
	return t
}

// Tolerance returns the allowed time gap for t.
func (m *Matcher) Tolerance(t model.RelayType) float64 {
	return m.tolerance[t]
}

// Match returns the best split record in pool for r. Candidates must be of
// the same relay type and gender, share at least MinOverlap swimmers and
// add up to within tolerance of r's time. Among those, the winner has the
// highest overlap, then the smallest time gap, then the same season as r,
// then the date closest to r's; any remaining tie goes to the earlier pool
// position.
func (m *Matcher) Match(r model.RelayResult, pool []model.SplitRecord) (Match, bool) {
	var (
		best  Match
		found bool
	)
	if r.Type == model.RelayUnknown || !swimtime.Valid(r.Seconds) {
		return best, false
	}
	roster := m.rosterNames(r.Roster)
	tol := m.tolerance[r.Type]

	for i, rec := range pool {
		if rec.Gender != "" && r.Gender != "" && rec.Gender != r.Gender {
			continue
		}
		if m.Classify(rec) != r.Type {
			continue
		}
		overlap := m.overlap(roster, rec.Swimmers)
		if overlap < m.minOverlap {
			continue
		}
		total, err := Total(rec, r.Type)
		if err != nil || !swimtime.Valid(total) {
			continue
		}
		delta := math.Abs(r.Seconds - total)
		if delta > tol+timeEpsilon {
			continue
		}
		cand := Match{Record: rec, Index: i, Overlap: overlap, Total: total, Delta: delta}
		if !found || better(cand, best, r) {
			best, found = cand, true
		}
	}
	if !found {
		return best, false
	}
	best.Legs, _ = Legs(best.Record, r.Type)
	for i := range best.Legs {
		best.Legs[i].Swimmer = m.aliases.Resolve(best.Legs[i].Swimmer)
	}
	return best, true
}

// better reports whether a beats b for relay r.
func better(a, b Match, r model.RelayResult) bool {
	if a.Overlap != b.Overlap {
		return a.Overlap > b.Overlap
	}
	if math.Abs(a.Delta-b.Delta) > timeEpsilon {
		return a.Delta < b.Delta
	}
	aSeason, bSeason := a.Record.Season == r.Season, b.Record.Season == r.Season
	if aSeason != bSeason {
		return aSeason
	}
	if !r.Date.IsZero() && !a.Record.Date.IsZero() && !b.Record.Date.IsZero() {
		da := r.Date.Sub(a.Record.Date).Abs()
		db := r.Date.Sub(b.Record.Date).Abs()
		if da != db {
			return da < db
		}
	}
	return false
}

// Attach matches every relay against the pool. Relays without a match
// keep a nil Match.
func (m *Matcher) Attach(ctx context.Context, relays []model.RelayResult, pool []model.SplitRecord) []MatchedRelay {
	out := make([]MatchedRelay, 0, len(relays))
	for _, r := range relays {
		mr := MatchedRelay{Result: r}
		if match, ok := m.Match(r, pool); ok {
			mr.Match = &match
			metrics.RecordRelayMatched(string(r.Type), match.Delta)
			m.log.Debug(ctx, "relay matched",
				logger.String("relay", string(r.Type)),
				logger.String("meet", r.Meet),
				logger.Int("overlap", match.Overlap),
				logger.Float64("delta", match.Delta),
			)
		} else {
			metrics.RecordRelayUnmatched(string(r.Type))
			m.log.Debug(ctx, "relay has no split detail",
				logger.String("relay", string(r.Type)),
				logger.String("meet", r.Meet),
				logger.Float64("seconds", r.Seconds),
			)
		}
		out = append(out, mr)
	}
	return out
}

// MatchedIndex returns the pool positions claimed by any matched relay.
func MatchedIndex(matched []MatchedRelay) map[int]*MatchedRelay {
	idx := make(map[int]*MatchedRelay)
	for i := range matched {
		if mt := matched[i].Match; mt != nil {
			if _, taken := idx[mt.Index]; !taken {
				idx[mt.Index] = &matched[i]
			}
		}
	}
	return idx
}

// Key returns the comparison form of a swimmer name after alias resolution.
func (m *Matcher) Key(name string) string {
	clean, _ := CleanName(name)
	return NormalizeName(m.aliases.Resolve(clean))
}

func (m *Matcher) rosterNames(roster []model.RosterSlot) map[string]struct{} {
	set := make(map[string]struct{}, len(roster))
	for _, slot := range roster {
		if k := m.Key(slot.Name); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// overlap counts distinct split-record swimmers present in the roster. A
// 400 free lists each swimmer twice; the set collapses them.
func (m *Matcher) overlap(roster map[string]struct{}, names []string) int {
	seen := make(map[string]struct{}, len(names))
	n := 0
	for _, name := range names {
		k := m.Key(name)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := roster[k]; ok {
			n++
		}
	}
	return n
}

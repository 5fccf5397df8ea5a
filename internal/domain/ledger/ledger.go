// Package ledger tracks the fastest time per category across seasons and
// emits a RecordEvent every time a record is superseded.
//
// Class grades and ungraded swims are tracked rows. The Open category is a
// view computed from them and is never stored.
package ledger

import (
	"context"
	"fmt"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// SeasonBatch is every entry observed during one season.
type SeasonBatch struct {
	Season  model.Season
	Entries []model.TimeEntry
}

// Stats counts what a build did.
type Stats struct {
	Seasons        int
	EntriesSeen    int
	EntriesSkipped int
	RecordsSet     int
}

// Result is the outcome of a full build.
type Result struct {
	// Current holds tracked rows and derived Open rows in display order.
	Current []model.LedgerEntry
	// Events is the supersession history in processing order.
	Events []model.RecordEvent
	Stats  Stats
}

// Ledger is the current-record table. It is not safe for concurrent use.
type Ledger struct {
	rows    map[model.Category]model.LedgerEntry
	compare SeasonComparator
	log     logger.Logger

	last    model.Season
	started bool
	stats   Stats
}

// New creates an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		rows:    make(map[model.Category]model.LedgerEntry),
		compare: ByStartYear,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the record for c. Open categories are computed on the fly.
func (l *Ledger) Get(c model.Category) (model.LedgerEntry, bool) {
	if c.Grade == model.GradeOpen {
		return l.Open(c.Gender, c.Event)
	}
	e, ok := l.rows[c]
	return e, ok
}

// Set stores e as the record of its category unconditionally.
func (l *Ledger) Set(e model.LedgerEntry) error {
	if e.Category.Grade == model.GradeOpen {
		return fmt.Errorf("%w: %s", ErrDerivedCategory, e.Category)
	}
	l.rows[e.Category] = e
	return nil
}

// Open returns the fastest tracked row for gender and event, relabelled as
// the Open category.
func (l *Ledger) Open(g model.Gender, ev model.Event) (model.LedgerEntry, bool) {
	var (
		best  model.LedgerEntry
		found bool
	)
	for _, grade := range trackedGrades {
		row, ok := l.rows[model.Category{Gender: g, Event: ev, Grade: grade}]
		if !ok {
			continue
		}
		if !found || rowFaster(row, best) {
			best, found = row, true
		}
	}
	if !found {
		return model.LedgerEntry{}, false
	}
	best.Category = model.Category{Gender: g, Event: ev, Grade: model.GradeOpen}
	return best, true
}

// trackedGrades is the fixed scan order for the Open view; on a full tie the
// earlier grade wins.
var trackedGrades = []model.Grade{
	model.GradeFreshman, model.GradeSophomore, model.GradeJunior, model.GradeSenior, model.GradeNone,
}

func rowFaster(a, b model.LedgerEntry) bool {
	if a.Seconds != b.Seconds {
		return a.Seconds < b.Seconds
	}
	return model.DateBefore(a.Date, b.Date)
}

// Len returns the number of tracked rows.
func (l *Ledger) Len() int { return len(l.rows) }

// Current returns tracked rows plus one derived Open row per gender and
// event, in display order.
func (l *Ledger) Current() []model.LedgerEntry {
	out := make([]model.LedgerEntry, 0, len(l.rows)+len(l.rows)/2)
	type ge struct {
		g model.Gender
		e model.Event
	}
	seen := make(map[ge]bool)
	for c, row := range l.rows {
		out = append(out, row)
		k := ge{c.Gender, c.Event}
		if seen[k] {
			continue
		}
		seen[k] = true
		if open, ok := l.Open(c.Gender, c.Event); ok {
			out = append(out, open)
		}
	}
	SortEntries(out)
	return out
}

// Stats returns counters accumulated over every Apply call.
func (l *Ledger) Stats() Stats { return l.stats }

// Apply processes one season against the pre-season state and returns the
// events it produced. Seasons must be applied oldest first.
func (l *Ledger) Apply(ctx context.Context, batch SeasonBatch) ([]model.RecordEvent, error) {
	if batch.Season == "" {
		return nil, ErrInvalidSeason
	}
	if err := l.checkOrder(batch.Season); err != nil {
		return nil, err
	}

	best, err := l.reduce(batch)
	if err != nil {
		return nil, err
	}

	// Open view before any row of this season lands.
	openBefore := make(map[model.Category]*model.LedgerEntry)
	for c := range best {
		oc := c.Open()
		if _, done := openBefore[oc]; done {
			continue
		}
		if row, ok := l.Open(c.Gender, c.Event); ok {
			openBefore[oc] = &row
		} else {
			openBefore[oc] = nil
		}
	}

	var events []model.RecordEvent
	for c, entry := range best {
		prev, had := l.rows[c]
		if had && entry.Seconds >= prev.Seconds {
			continue
		}
		row := ledgerRow(entry, batch.Season)
		l.rows[c] = row
		events = append(events, newEvent(batch.Season, c, row, prev, had))
		l.stats.RecordsSet++
		metrics.RecordRecordSet(string(row.Origin))
	}

	for oc, before := range openBefore {
		after, ok := l.Open(oc.Gender, oc.Event)
		if !ok || (before != nil && after.Seconds >= before.Seconds) {
			continue
		}
		var prev model.LedgerEntry
		if before != nil {
			prev = *before
		}
		events = append(events, newEvent(batch.Season, oc, after, prev, before != nil))
	}
	sortEvents(events)

	l.last, l.started = batch.Season, true
	l.stats.Seasons++
	metrics.RecordSeasonProcessed()
	metrics.UpdateCategoriesTracked(len(l.rows))
	l.log.Info(ctx, "season applied",
		logger.String("season", string(batch.Season)),
		logger.Int("entries", len(batch.Entries)),
		logger.Int("records", len(events)),
	)
	return events, nil
}

// checkOrder rejects a season that does not come strictly after the last
// one applied. Pairs the comparator cannot order pass through.
func (l *Ledger) checkOrder(s model.Season) error {
	if !l.started || l.compare == nil {
		return nil
	}
	cmp, ok := l.compare(l.last, s)
	if !ok || cmp < 0 {
		return nil
	}
	return fmt.Errorf("%w: %q after %q", ErrSeasonsOutOfOrder, s, l.last)
}

// reduce keeps the single fastest valid entry per tracked category. Ties go
// to the earlier date, then to the entry seen first.
func (l *Ledger) reduce(batch SeasonBatch) (map[model.Category]model.TimeEntry, error) {
	best := make(map[model.Category]model.TimeEntry)
	for i, e := range batch.Entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("season %s entry %d: %w", batch.Season, i, err)
		}
		l.stats.EntriesSeen++
		metrics.RecordEntrySeen(string(originOf(e)))
		if !e.Valid() {
			l.stats.EntriesSkipped++
			metrics.RecordEntrySkipped("unparsable")
			continue
		}
		c := e.Category
		if c.Grade == model.GradeOpen {
			c.Grade = model.GradeNone
		}
		e.Category = c
		if cur, ok := best[c]; !ok || e.FasterThan(cur) {
			best[c] = e
		}
	}
	return best, nil
}

func validate(e model.TimeEntry) error {
	switch {
	case e.Category.Gender != model.GenderMale && e.Category.Gender != model.GenderFemale:
		return fmt.Errorf("%w: gender %q", ErrInvalidEntry, e.Category.Gender)
	case e.Category.Event == "":
		return fmt.Errorf("%w: missing event", ErrInvalidEntry)
	case e.Swimmer == "":
		return fmt.Errorf("%w: missing swimmer for %s", ErrInvalidEntry, e.Category)
	}
	return nil
}

func originOf(e model.TimeEntry) model.Origin {
	if e.Origin == "" {
		return model.OriginIndividual
	}
	return e.Origin
}

func ledgerRow(e model.TimeEntry, season model.Season) model.LedgerEntry {
	return model.LedgerEntry{
		Category: e.Category,
		Seconds:  e.Seconds,
		Swimmer:  e.Swimmer,
		Date:     e.Date,
		Meet:     e.Meet,
		Season:   season,
		Origin:   originOf(e),
	}
}

func newEvent(season model.Season, c model.Category, row, prev model.LedgerEntry, hadPrev bool) model.RecordEvent {
	ev := model.RecordEvent{
		Season:   season,
		Category: c,
		New:      model.HolderOf(row),
	}
	if hadPrev {
		p := model.HolderOf(prev)
		ev.Previous = &p
	}
	return ev
}

// Build replays every season in the supplied order on a fresh Ledger.
func Build(ctx context.Context, seasons []SeasonBatch, opts ...Option) (*Result, error) {
	if len(seasons) == 0 {
		return nil, ErrNoSeasons
	}
	l := New(opts...)
	var events []model.RecordEvent
	for _, batch := range seasons {
		evs, err := l.Apply(ctx, batch)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return &Result{
		Current: l.Current(),
		Events:  events,
		Stats:   l.Stats(),
	}, nil
}

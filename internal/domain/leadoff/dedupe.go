package leadoff

import (
	"sort"

	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/relay"
)

type swimmerKey struct {
	gender  model.Gender
	event   model.Event
	swimmer string
}

// Dedupe keeps each swimmer's fastest leadoff per gender and event, so a
// slower leadoff cannot re-enter the ledger after a faster one. Ties go to
// the earlier date, then to the entry seen first. The result is sorted by
// gender, event and time.
func Dedupe(entries []model.TimeEntry, aliases alias.Resolver) []model.TimeEntry {
	if aliases == nil {
		aliases = alias.Nop{}
	}
	best := make(map[swimmerKey]int, len(entries))
	var out []model.TimeEntry
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		k := swimmerKey{
			gender:  e.Category.Gender,
			event:   e.Category.Event,
			swimmer: relay.NormalizeName(aliases.Resolve(e.Swimmer)),
		}
		if i, ok := best[k]; ok {
			if e.FasterThan(out[i]) {
				out[i] = e
			}
			continue
		}
		best[k] = len(out)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category.Gender != b.Category.Gender {
			return a.Category.Gender > b.Category.Gender
		}
		if a.Category.Event != b.Category.Event {
			return a.Category.Event < b.Category.Event
		}
		return a.Seconds < b.Seconds
	})
	return out
}

package ledger

import (
	"sort"

	"github.com/okian/recordbook/internal/domain/model"
)

var (
	genderRank = map[model.Gender]int{model.GenderMale: 0, model.GenderFemale: 1}
	eventRank  = map[model.Event]int{}
	gradeRank  = map[model.Grade]int{
		model.GradeFreshman:  0,
		model.GradeSophomore: 1,
		model.GradeJunior:    2,
		model.GradeSenior:    3,
		model.GradeNone:      4,
		model.GradeOpen:      5,
	}
)

func init() { //nolint:gochecknoinits // display order derives from the model lists
	for i, e := range model.IndividualEvents {
		eventRank[e] = i
	}
	for i, e := range model.RelayEvents {
		eventRank[e] = len(model.IndividualEvents) + i
	}
}

// CategoryLess orders categories for display: gender, then event in
// program order, then grade with Open last.
func CategoryLess(a, b model.Category) bool {
	if ra, rb := rank(genderRank, a.Gender), rank(genderRank, b.Gender); ra != rb {
		return ra < rb
	}
	if a.Gender != b.Gender {
		return a.Gender < b.Gender
	}
	if ra, rb := rank(eventRank, a.Event), rank(eventRank, b.Event); ra != rb {
		return ra < rb
	}
	if a.Event != b.Event {
		return a.Event < b.Event
	}
	return rank(gradeRank, a.Grade) < rank(gradeRank, b.Grade)
}

func rank[K comparable](m map[K]int, k K) int {
	if r, ok := m[k]; ok {
		return r
	}
	return len(m)
}

// SortEntries sorts ledger rows in display order.
func SortEntries(rows []model.LedgerEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		return CategoryLess(rows[i].Category, rows[j].Category)
	})
}

// sortEvents sorts one season's events in display order.
func sortEvents(events []model.RecordEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return CategoryLess(events[i].Category, events[j].Category)
	})
}

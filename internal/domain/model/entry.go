package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Origin tells whether a time was swum individually or derived.
type Origin string

const (
	OriginIndividual Origin = "individual"
	OriginLeadoff    Origin = "leadoff"
	OriginRelay      Origin = "relay"
)

// Season is an academic-year token such as "2024-25".
type Season string

// StartYear returns the four-digit year the season begins in.
// "2024-25", "24-25" and "2024" are understood.
func (s Season) StartYear() (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(string(s)), "-")
	y, err := strconv.Atoi(head)
	if err != nil || y < 0 {
		return 0, false
	}
	switch len(head) {
	case 2:
		return 2000 + y, true
	case 4:
		return y, true
	}
	return 0, false
}

// TimeEntry is one observed swim in normalized form.
type TimeEntry struct {
	Category Category
	Seconds  float64
	Swimmer  string
	Date     time.Time
	Season   Season
	Meet     string
	Origin   Origin
	// Relay names the relay a leadoff entry was taken from.
	Relay Event
}

// Valid reports whether the entry may contend for a record.
func (e TimeEntry) Valid() bool {
	return !math.IsInf(e.Seconds, 0) && !math.IsNaN(e.Seconds) && e.Seconds > 0
}

// FasterThan orders two entries of the same category: lower time wins,
// ties go to the earlier known date.
func (e TimeEntry) FasterThan(o TimeEntry) bool {
	if e.Seconds != o.Seconds {
		return e.Seconds < o.Seconds
	}
	return DateBefore(e.Date, o.Date)
}

// DateBefore orders dates with unknown (zero) dates last.
func DateBefore(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Before(b)
}

// RelayType is the configuration a relay was swum in.
type RelayType string

const (
	RelayUnknown   RelayType = "unknown"
	Relay200Medley RelayType = "200_medley"
	Relay200Free   RelayType = "200_free"
	Relay400Free   RelayType = "400_free"
)

// Event returns the relay event for t.
func (t RelayType) Event() (Event, bool) {
	switch t {
	case Relay200Medley:
		return Event200MedleyRelay, true
	case Relay200Free:
		return Event200FreeRelay, true
	case Relay400Free:
		return Event400FreeRelay, true
	}
	return "", false
}

// RelayTypeOf maps a relay event back to its type.
func RelayTypeOf(e Event) RelayType {
	switch e {
	case Event200MedleyRelay:
		return Relay200Medley
	case Event200FreeRelay:
		return Relay200Free
	case Event400FreeRelay:
		return Relay400Free
	}
	return RelayUnknown
}

// RosterSlot is one swimmer on a relay.
type RosterSlot struct {
	Name  string
	Grade Grade
}

// RelayResult is one official relay swim.
type RelayResult struct {
	Type    RelayType
	Gender  Gender
	Roster  []RosterSlot
	Seconds float64
	Date    time.Time
	Season  Season
	Meet    string
}

// SplitRecord is harvested per-leg telemetry. It is not joined to any
// RelayResult by identifier.
type SplitRecord struct {
	Season Season
	Gender Gender
	// Hint is the harvester's own label ("medley", "free").
	Hint     string
	Labels   []string
	Swimmers []string
	Splits   []float64
	// Date and Meet are known only when the page carried them.
	Date time.Time
	Meet string
	Team string
}

// LedgerEntry is the current holder of one category.
type LedgerEntry struct {
	Category Category
	Seconds  float64
	Swimmer  string
	Date     time.Time
	Meet     string
	Season   Season
	Origin   Origin
}

// Holder is one side of a supersession.
type Holder struct {
	Seconds float64
	Swimmer string
	Date    time.Time
	Meet    string
	Season  Season
	Origin  Origin
}

// RecordEvent is emitted each time a category's record is superseded.
// Previous is nil for the first record ever set in the category.
type RecordEvent struct {
	Season   Season
	Category Category
	New      Holder
	Previous *Holder
}

// HolderOf converts a ledger row into a history holder.
func HolderOf(e LedgerEntry) Holder {
	return Holder{
		Seconds: e.Seconds,
		Swimmer: e.Swimmer,
		Date:    e.Date,
		Meet:    e.Meet,
		Season:  e.Season,
		Origin:  e.Origin,
	}
}

// dateLayouts are the date spellings seen in source data.
var dateLayouts = []string{
	time.DateOnly,
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a source date. Unknown formats yield the zero time.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

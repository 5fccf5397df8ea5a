package repository

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/relay"
	"github.com/okian/recordbook/internal/domain/swimtime"
)

// clock is a swim time written either as a number or as "M:SS.ss".
type clock float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *clock) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("time must be a scalar, got %v", n.Tag)
	}
	*c = clock(swimtime.Parse(n.Value))
	return nil
}

// rawEntry is one individual swim as supplied by the normalizer.
type rawEntry struct {
	Gender string `yaml:"gender"`
	Event  string `yaml:"event"`
	Grade  string `yaml:"grade"`
	Name   string `yaml:"name"`
	Time   clock  `yaml:"time"`
	Date   string `yaml:"date"`
	Meet   string `yaml:"meet"`
}

type rawSwimmer struct {
	Name  string `yaml:"name"`
	Grade string `yaml:"grade"`
}

// UnmarshalYAML accepts a bare name as well as {name, grade}.
func (s *rawSwimmer) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		s.Name = n.Value
		return nil
	}
	type plain rawSwimmer
	return n.Decode((*plain)(s))
}

// rawRelay is one official relay result.
type rawRelay struct {
	Gender   string       `yaml:"gender"`
	Event    string       `yaml:"event"`
	Time     clock        `yaml:"time"`
	Date     string       `yaml:"date"`
	Meet     string       `yaml:"meet"`
	Swimmers []rawSwimmer `yaml:"swimmers"`
}

// rawSplit is one harvested split record.
type rawSplit struct {
	Type     string   `yaml:"type"`
	Legs     []string `yaml:"legs"`
	Swimmers []string `yaml:"swimmers"`
	Splits   []string `yaml:"splits"`
	Team     string   `yaml:"team"`
	Date     string   `yaml:"date"`
	Meet     string   `yaml:"meet"`
}

// rawSplitFile is the harvester's per-season file.
type rawSplitFile struct {
	Season string     `yaml:"season"`
	Year   string     `yaml:"year"`
	Boys   []rawSplit `yaml:"boys"`
	Girls  []rawSplit `yaml:"girls"`
}

func (r rawEntry) toModel(season model.Season) (model.TimeEntry, error) {
	g, ok := model.ParseGender(r.Gender)
	if !ok {
		return model.TimeEntry{}, fmt.Errorf("%w: gender %q", ErrInvalidRecord, r.Gender)
	}
	if strings.TrimSpace(r.Name) == "" {
		return model.TimeEntry{}, fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Event) == "" {
		return model.TimeEntry{}, fmt.Errorf("%w: missing event", ErrInvalidRecord)
	}
	ev, ok := model.ParseEvent(r.Event)
	if !ok {
		return model.TimeEntry{}, errUnknownEvent
	}
	date, _ := model.ParseDate(r.Date)
	return model.TimeEntry{
		Category: model.Category{Gender: g, Event: ev, Grade: model.ParseGrade(r.Grade)},
		Seconds:  float64(r.Time),
		Swimmer:  strings.TrimSpace(r.Name),
		Date:     date,
		Season:   season,
		Meet:     strings.TrimSpace(r.Meet),
		Origin:   model.OriginIndividual,
	}, nil
}

func (r rawRelay) toModel(season model.Season) (model.RelayResult, error) {
	g, ok := model.ParseGender(r.Gender)
	if !ok {
		return model.RelayResult{}, fmt.Errorf("%w: gender %q", ErrInvalidRecord, r.Gender)
	}
	ev, ok := model.ParseEvent(r.Event)
	if !ok || !ev.IsRelay() {
		return model.RelayResult{}, errUnknownEvent
	}
	roster := make([]model.RosterSlot, 0, len(r.Swimmers))
	for _, s := range r.Swimmers {
		roster = append(roster, model.RosterSlot{Name: strings.TrimSpace(s.Name), Grade: model.ParseGrade(s.Grade)})
	}
	date, _ := model.ParseDate(r.Date)
	return model.RelayResult{
		Type:    model.RelayTypeOf(ev),
		Gender:  g,
		Roster:  roster,
		Seconds: float64(r.Time),
		Date:    date,
		Season:  season,
		Meet:    strings.TrimSpace(r.Meet),
	}, nil
}

func (r rawSplit) toModel(season model.Season, g model.Gender) model.SplitRecord {
	splits := make([]float64, len(r.Splits))
	for i, s := range r.Splits {
		splits[i] = swimtime.Parse(s)
	}
	date, _ := model.ParseDate(r.Date)
	return model.SplitRecord{
		Season:   season,
		Gender:   g,
		Hint:     strings.ToLower(strings.TrimSpace(r.Type)),
		Labels:   r.Legs,
		Swimmers: r.Swimmers,
		Splits:   splits,
		Date:     date,
		Meet:     r.Meet,
		Team:     r.Team,
	}
}

// SplitFileOf renders split records in the harvester file layout.
func SplitFileOf(season model.Season, recs []model.SplitRecord) any {
	f := rawSplitFile{Season: string(season)}
	for _, rec := range recs {
		out := rawSplit{
			Type:     rec.Hint,
			Legs:     rec.Labels,
			Swimmers: rec.Swimmers,
			Team:     rec.Team,
			Meet:     rec.Meet,
			Date:     dateString(rec.Date),
		}
		for _, s := range rec.Splits {
			out.Splits = append(out.Splits, swimtime.Format(s))
		}
		if rec.Gender == model.GenderFemale {
			f.Girls = append(f.Girls, out)
		} else {
			f.Boys = append(f.Boys, out)
		}
	}
	return f
}

// Output documents.

type holderDoc struct {
	Time    string  `yaml:"time"`
	Seconds float64 `yaml:"seconds"`
	Name    string  `yaml:"name"`
	Date    string  `yaml:"date,omitempty"`
	Meet    string  `yaml:"meet,omitempty"`
	Season  string  `yaml:"season"`
	Origin  string  `yaml:"origin,omitempty"`
}

type rowDoc struct {
	Gender    string `yaml:"gender"`
	Event     string `yaml:"event"`
	Grade     string `yaml:"grade"`
	holderDoc `yaml:",inline"`
}

type eventDoc struct {
	Season    string `yaml:"record_season"`
	Gender    string `yaml:"gender"`
	Event     string `yaml:"event"`
	Grade     string `yaml:"grade"`
	holderDoc `yaml:",inline"`
	Previous  *holderDoc `yaml:"previous"`
}

type leadoffDoc struct {
	Gender    string `yaml:"gender"`
	Event     string `yaml:"event"`
	Grade     string `yaml:"grade"`
	Relay     string `yaml:"relay"`
	holderDoc `yaml:",inline"`
}

type legDoc struct {
	Name   string `yaml:"name"`
	Stroke string `yaml:"stroke"`
	Split  string `yaml:"split"`
}

type relayDoc struct {
	Gender   string   `yaml:"gender"`
	Event    string   `yaml:"event"`
	Time     string   `yaml:"time"`
	Date     string   `yaml:"date,omitempty"`
	Meet     string   `yaml:"meet,omitempty"`
	Season   string   `yaml:"season"`
	Swimmers []string `yaml:"swimmers"`
	Splits   []legDoc `yaml:"splits"`
}

type currentFile struct {
	RunID       string   `yaml:"run_id"`
	GeneratedAt string   `yaml:"generated_at"`
	Records     []rowDoc `yaml:"records"`
}

type historyFile struct {
	RunID       string     `yaml:"run_id,omitempty"`
	GeneratedAt string     `yaml:"generated_at,omitempty"`
	Events      []eventDoc `yaml:"events"`
}

type leadoffFile struct {
	RunID    string       `yaml:"run_id"`
	Leadoffs []leadoffDoc `yaml:"leadoffs"`
}

type relayFile struct {
	RunID  string     `yaml:"run_id"`
	Relays []relayDoc `yaml:"relays"`
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func holderOf(h model.Holder) holderDoc {
	return holderDoc{
		Time:    swimtime.Format(h.Seconds),
		Seconds: h.Seconds,
		Name:    h.Swimmer,
		Date:    dateString(h.Date),
		Meet:    h.Meet,
		Season:  string(h.Season),
		Origin:  string(h.Origin),
	}
}

func (h holderDoc) toModel() model.Holder {
	secs := h.Seconds
	if secs == 0 {
		secs = swimtime.Parse(h.Time)
	}
	date, _ := model.ParseDate(h.Date)
	return model.Holder{
		Seconds: secs,
		Swimmer: h.Name,
		Date:    date,
		Meet:    h.Meet,
		Season:  model.Season(h.Season),
		Origin:  model.Origin(h.Origin),
	}
}

func rowOf(e model.LedgerEntry) rowDoc {
	return rowDoc{
		Gender:    string(e.Category.Gender),
		Event:     string(e.Category.Event),
		Grade:     string(e.Category.Grade),
		holderDoc: holderOf(model.HolderOf(e)),
	}
}

func eventOf(ev model.RecordEvent) eventDoc {
	doc := eventDoc{
		Season:    string(ev.Season),
		Gender:    string(ev.Category.Gender),
		Event:     string(ev.Category.Event),
		Grade:     string(ev.Category.Grade),
		holderDoc: holderOf(ev.New),
	}
	if ev.Previous != nil {
		p := holderOf(*ev.Previous)
		doc.Previous = &p
	}
	return doc
}

func (d eventDoc) toModel() (model.RecordEvent, error) {
	g, ok := model.ParseGender(d.Gender)
	if !ok {
		return model.RecordEvent{}, fmt.Errorf("%w: gender %q", ErrInvalidRecord, d.Gender)
	}
	ev, ok := model.ParseEvent(d.Event)
	if !ok {
		return model.RecordEvent{}, fmt.Errorf("%w: event %q", ErrInvalidRecord, d.Event)
	}
	out := model.RecordEvent{
		Season:   model.Season(d.Season),
		Category: model.Category{Gender: g, Event: ev, Grade: model.ParseGrade(d.Grade)},
		New:      d.holderDoc.toModel(),
	}
	if d.Previous != nil {
		p := d.Previous.toModel()
		out.Previous = &p
	}
	return out, nil
}

func leadoffOf(e model.TimeEntry) leadoffDoc {
	return leadoffDoc{
		Gender: string(e.Category.Gender),
		Event:  string(e.Category.Event),
		Grade:  string(e.Category.Grade),
		Relay:  string(e.Relay),
		holderDoc: holderDoc{
			Time:    swimtime.Format(e.Seconds) + " " + swimtime.LeadoffMarker,
			Seconds: e.Seconds,
			Name:    e.Swimmer,
			Date:    dateString(e.Date),
			Meet:    e.Meet,
			Season:  string(e.Season),
			Origin:  string(e.Origin),
		},
	}
}

func relayOf(mr relay.MatchedRelay) relayDoc {
	r := mr.Result
	ev, _ := r.Type.Event()
	doc := relayDoc{
		Gender: string(r.Gender),
		Event:  string(ev),
		Time:   swimtime.Format(r.Seconds),
		Date:   dateString(r.Date),
		Meet:   r.Meet,
		Season: string(r.Season),
	}
	for _, slot := range r.Roster {
		doc.Swimmers = append(doc.Swimmers, slot.Name)
	}
	if mr.Match != nil {
		for _, leg := range mr.Match.Legs {
			doc.Splits = append(doc.Splits, legDoc{Name: leg.Swimmer, Stroke: leg.Stroke, Split: swimtime.Format(leg.Seconds)})
		}
	}
	return doc
}

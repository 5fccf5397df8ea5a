// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Gender of a swimmer or relay team.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// ParseGender accepts the spellings used by result pages and harvesters.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "boys", "boy", "men", "man":
		return GenderMale, true
	case "f", "female", "girls", "girl", "women", "woman":
		return GenderFemale, true
	}
	return "", false
}

// Label returns the team-page wording for a gender.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "boys"
	case GenderFemale:
		return "girls"
	}
	return string(g)
}

// Event is one canonical swimming event.
type Event string

// Individual events.
const (
	Event50Free    Event = "50 Free"
	Event100Free   Event = "100 Free"
	Event200Free   Event = "200 Free"
	Event500Free   Event = "500 Free"
	Event100Back   Event = "100 Back"
	Event100Breast Event = "100 Breast"
	Event100Fly    Event = "100 Fly"
	Event200IM     Event = "200 IM"
)

// Relay events.
const (
	Event200MedleyRelay Event = "200 Medley Relay"
	Event200FreeRelay   Event = "200 Free Relay"
	Event400FreeRelay   Event = "400 Free Relay"
)

// IndividualEvents lists the individual events in display order.
var IndividualEvents = []Event{
	Event50Free, Event100Free, Event200Free, Event500Free,
	Event100Back, Event100Breast, Event100Fly, Event200IM,
}

// RelayEvents lists the relay events in display order.
var RelayEvents = []Event{Event200MedleyRelay, Event200FreeRelay, Event400FreeRelay}

// IsRelay reports whether e is a relay event.
func (e Event) IsRelay() bool {
	return e == Event200MedleyRelay || e == Event200FreeRelay || e == Event400FreeRelay
}

// ParseEvent maps upstream spellings such as "50 Freestyle", "50-free",
// "100_free", "200 Individual Medley" or "400 Free Relay" to an Event.
func ParseEvent(s string) (Event, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer("-", " ", "_", " ", "yard", " ", "yd", " ").Replace(n)
	n = strings.Join(strings.Fields(n), " ")
	if n == "" {
		return "", false
	}

	distance, rest, _ := strings.Cut(n, " ")
	relay := strings.Contains(rest, "relay")
	switch {
	case relay && distance == "200" && strings.Contains(rest, "medley"):
		return Event200MedleyRelay, true
	case relay && distance == "200" && strings.HasPrefix(rest, "fr"):
		return Event200FreeRelay, true
	case relay && distance == "400" && strings.HasPrefix(rest, "fr"):
		return Event400FreeRelay, true
	case relay:
		return "", false
	}

	var stroke string
	switch {
	case strings.HasPrefix(rest, "fr"):
		stroke = "Free"
	case strings.HasPrefix(rest, "back"):
		stroke = "Back"
	case strings.HasPrefix(rest, "breast"):
		stroke = "Breast"
	case strings.HasPrefix(rest, "fly"), strings.HasPrefix(rest, "butter"):
		stroke = "Fly"
	case strings.HasPrefix(rest, "im"), strings.HasPrefix(rest, "individual medley"), rest == "medley":
		stroke = "IM"
	default:
		return "", false
	}
	e := Event(distance + " " + stroke)
	for _, known := range IndividualEvents {
		if e == known {
			return e, true
		}
	}
	return "", false
}

// Grade is a class year, or Open for the best across all grades.
// The zero value means the grade is unknown.
type Grade string

const (
	GradeNone      Grade = ""
	GradeFreshman  Grade = "FR"
	GradeSophomore Grade = "SO"
	GradeJunior    Grade = "JR"
	GradeSenior    Grade = "SR"
	GradeOpen      Grade = "Open"
)

// ClassGrades lists the tracked class grades in order.
var ClassGrades = []Grade{GradeFreshman, GradeSophomore, GradeJunior, GradeSenior}

// IsClass reports whether g is one of FR, SO, JR, SR.
func (g Grade) IsClass() bool {
	switch g {
	case GradeFreshman, GradeSophomore, GradeJunior, GradeSenior:
		return true
	}
	return false
}

// ParseGrade accepts "FR", "Fr.", "Freshman", "9" and the like.
// Unrecognized input yields GradeNone.
func ParseGrade(s string) Grade {
	n := strings.ToLower(strings.Trim(strings.TrimSpace(s), ".()"))
	switch n {
	case "fr", "freshman", "9", "09":
		return GradeFreshman
	case "so", "sophomore", "10":
		return GradeSophomore
	case "jr", "junior", "11":
		return GradeJunior
	case "sr", "senior", "12":
		return GradeSenior
	case "open", "all", "team":
		return GradeOpen
	}
	return GradeNone
}

// Category is the immutable key under which a single best time is tracked.
type Category struct {
	Gender Gender
	Event  Event
	Grade  Grade
}

func (c Category) String() string {
	g := c.Grade
	if g == GradeNone {
		g = "-"
	}
	return fmt.Sprintf("%s/%s/%s", c.Gender, c.Event, g)
}

// Open returns the aggregate category for c's gender and event.
func (c Category) Open() Category {
	return Category{Gender: c.Gender, Event: c.Event, Grade: GradeOpen}
}

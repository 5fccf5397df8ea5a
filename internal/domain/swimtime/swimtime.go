// Package swimtime converts between clock-format swim times and seconds.
package swimtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unparsed is the value given to times that cannot be read. It never wins a
// comparison.
var Unparsed = math.Inf(1)

// LeadoffMarker flags times taken from a relay leadoff in source tables.
const LeadoffMarker = "(r)"

// Parse converts "SS.ss", "M:SS.ss" or "MM:SS.ss" into seconds. Bold
// markers, a leading "00:" and the leadoff marker are tolerated. Anything
// else, including non-positive values, returns Unparsed.
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(strings.ReplaceAll(s, LeadoffMarker, ""))
	if s == "" {
		return Unparsed
	}

	minutes := 0.0
	if head, tail, ok := strings.Cut(s, ":"); ok {
		if strings.Contains(tail, ":") {
			return Unparsed
		}
		m, err := strconv.Atoi(head)
		if err != nil || m < 0 {
			return Unparsed
		}
		// seconds part must be two digits when minutes are present
		if whole, _, _ := strings.Cut(tail, "."); len(whole) != 2 {
			return Unparsed
		}
		minutes = float64(m)
		s = tail
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return Unparsed
	}
	if minutes > 0 && secs >= 60 {
		return Unparsed
	}
	total := minutes*60 + secs
	if total <= 0 {
		return Unparsed
	}
	return total
}

// Valid reports whether seconds came from a successful Parse.
func Valid(seconds float64) bool {
	return seconds > 0 && !math.IsInf(seconds, 0) && !math.IsNaN(seconds)
}

// Format renders seconds for display: "56.59", "1:00.60". Invalid values
// render as "-".
func Format(seconds float64) string {
	if !Valid(seconds) {
		return "-"
	}
	hundredths := int64(math.Round(seconds * 100))
	mins := hundredths / 6000
	rem := hundredths % 6000
	if mins == 0 {
		return fmt.Sprintf("%d.%02d", rem/100, rem%100)
	}
	return fmt.Sprintf("%d:%02d.%02d", mins, rem/100, rem%100)
}

// Sum adds leg times. Any invalid leg makes the total Unparsed.
func Sum(parts ...float64) float64 {
	if len(parts) == 0 {
		return Unparsed
	}
	total := 0.0
	for _, p := range parts {
		if !Valid(p) {
			return Unparsed
		}
		total += p
	}
	return total
}

// Round2 rounds to hundredths, the resolution of a touchpad.
func Round2(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

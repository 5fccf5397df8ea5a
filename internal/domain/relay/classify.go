package relay

import (
	"strings"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/swimtime"
)

// DefaultFreeSplitMax is the per-leg ceiling for a 4-leg record to count
// as a 200 free.
const DefaultFreeSplitMax = 35.0

// Classify decides the relay configuration from leg labels and leg times.
//
//   - 4 legs including a stroke label ("Back", "Breast", ...) is a 200 medley.
//   - 8 legs is a 400 free.
//   - 4 legs with generic labels ("Split 1" or none), each leg under 35s,
//     is a 200 free.
//
// Anything else is RelayUnknown.
func Classify(labels []string, splits []float64) model.RelayType {
	return classify(labels, splits, DefaultFreeSplitMax)
}

func classify(labels []string, splits []float64, freeMax float64) model.RelayType {
	switch len(splits) {
	case 8:
		return model.Relay400Free
	case 4:
		if hasStrokeLabel(labels) {
			return model.Relay200Medley
		}
		if !genericLabels(labels) {
			return model.RelayUnknown
		}
		for _, s := range splits {
			if !swimtime.Valid(s) || s >= freeMax {
				return model.RelayUnknown
			}
		}
		return model.Relay200Free
	}
	return model.RelayUnknown
}

func hasStrokeLabel(labels []string) bool {
	for _, l := range labels {
		if stroke(l) == "Back" {
			return true
		}
	}
	return false
}

func genericLabels(labels []string) bool {
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && !strings.HasPrefix(l, "split") && stroke(l) != "Free" {
			return false
		}
	}
	return true
}

// stroke maps a leg label to its display stroke. Generic labels map to "".
func stroke(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "back"):
		return "Back"
	case strings.HasPrefix(l, "breast"):
		return "Breast"
	case strings.HasPrefix(l, "fly"), strings.HasPrefix(l, "butter"):
		return "Fly"
	case strings.HasPrefix(l, "free"):
		return "Free"
	}
	return ""
}

// medleyOrder is the stroke order of a medley relay.
var medleyOrder = [4]string{"Back", "Breast", "Fly", "Free"}

// LegDetail is one swimmer's part of a relay, ready for display. 400 free
// legs are the swimmer's two 50s combined.
type LegDetail struct {
	Swimmer string
	Stroke  string
	Seconds float64
}

// Legs reconstructs per-swimmer legs of a split record of type t.
func Legs(rec model.SplitRecord, t model.RelayType) ([]LegDetail, error) {
	switch t {
	case model.Relay200Medley, model.Relay200Free:
		if len(rec.Splits) != 4 {
			return nil, ErrLegCount
		}
		legs := make([]LegDetail, 4)
		for i := range legs {
			legs[i] = LegDetail{Swimmer: nameAt(rec.Swimmers, i), Seconds: rec.Splits[i], Stroke: "Free"}
			if t == model.Relay200Medley {
				legs[i].Stroke = medleyOrder[i]
				if i < len(rec.Labels) {
					if s := stroke(rec.Labels[i]); s != "" {
						legs[i].Stroke = s
					}
				}
			}
		}
		return legs, nil
	case model.Relay400Free:
		if len(rec.Splits) != 8 {
			return nil, ErrLegCount
		}
		legs := make([]LegDetail, 4)
		for i := range legs {
			legs[i] = LegDetail{
				Swimmer: nameAt(rec.Swimmers, 2*i),
				Stroke:  "Free",
				Seconds: swimtime.Round2(swimtime.Sum(rec.Splits[2*i], rec.Splits[2*i+1])),
			}
		}
		return legs, nil
	}
	return nil, ErrUnknownType
}

// Total is the reconstructed relay time of a split record.
func Total(rec model.SplitRecord, t model.RelayType) (float64, error) {
	legs, err := Legs(rec, t)
	if err != nil {
		return swimtime.Unparsed, err
	}
	parts := make([]float64, len(legs))
	for i, l := range legs {
		parts[i] = l.Seconds
	}
	return swimtime.Round2(swimtime.Sum(parts...)), nil
}

func nameAt(names []string, i int) string {
	if i < len(names) {
		n, _ := CleanName(names[i])
		return n
	}
	return ""
}

package relay

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/recordbook/internal/domain/model"
)

// gradeSuffix matches "Wade Olsson - Jr." and "Wade Olsson (SR)".
var gradeSuffix = regexp.MustCompile(`(?i)\s*(?:-\s*([a-z]+)\.?|\(\s*([a-z0-9]+)\.?\s*\))\s*$`)

// CleanName strips a trailing grade suffix and returns the display name and
// the grade it named, if any.
func CleanName(raw string) (string, model.Grade) {
	name := strings.Join(strings.Fields(raw), " ")
	m := gradeSuffix.FindStringSubmatchIndex(name)
	if m == nil {
		return name, model.GradeNone
	}
	token := ""
	switch {
	case m[2] >= 0:
		token = name[m[2]:m[3]]
	case m[4] >= 0:
		token = name[m[4]:m[5]]
	}
	grade := model.ParseGrade(token)
	if grade == model.GradeNone || grade == model.GradeOpen {
		// A hyphenated surname is not a grade.
		return name, model.GradeNone
	}
	return strings.TrimSpace(name[:m[0]]), grade
}

var folder = cases.Fold()

// NormalizeName reduces a name to its comparison form: grade suffix
// removed, accents folded, case folded, whitespace collapsed.
func NormalizeName(raw string) string {
	name, _ := CleanName(raw)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, name); err == nil {
		name = folded
	}
	name = strings.NewReplacer(".", "", "'", "", "’", "").Replace(name)
	return strings.Join(strings.Fields(folder.String(name)), " ")
}

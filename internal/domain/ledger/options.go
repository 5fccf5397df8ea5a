package ledger

import (
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
)

// SeasonComparator orders two season tokens. It returns a negative number
// when a is earlier than b, zero when they are the same season and a
// positive number otherwise. ok is false when the pair cannot be ordered.
type SeasonComparator func(a, b model.Season) (cmp int, ok bool)

// ByStartYear orders seasons by the year they begin in.
func ByStartYear(a, b model.Season) (int, bool) {
	ya, okA := a.StartYear()
	yb, okB := b.StartYear()
	if !okA || !okB {
		return 0, false
	}
	return ya - yb, true
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithSeasonComparator replaces the season ordering check. A nil
// comparator disables the check.
func WithSeasonComparator(cmp SeasonComparator) Option {
	return func(l *Ledger) {
		l.compare = cmp
	}
}

// WithLogger sets the logger used for per-season progress.
func WithLogger(log logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

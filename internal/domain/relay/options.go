package relay

import (
	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithMinOverlap sets how many roster names must appear in a split record.
func WithMinOverlap(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.minOverlap = n
		}
	}
}

// WithTolerance sets the allowed |relay - reconstructed| gap for one relay type.
func WithTolerance(t model.RelayType, seconds float64) Option {
	return func(m *Matcher) {
		if seconds > 0 {
			m.tolerance[t] = seconds
		}
	}
}

// WithFreeSplitMax sets the per-leg ceiling used to recognise a 200 free.
func WithFreeSplitMax(seconds float64) Option {
	return func(m *Matcher) {
		if seconds > 0 {
			m.freeSplitMax = seconds
		}
	}
}

// WithAliases resolves name variants on both sides before comparing.
func WithAliases(r alias.Resolver) Option {
	return func(m *Matcher) {
		if r != nil {
			m.aliases = r
		}
	}
}

// WithLogger sets the logger used for match diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(m *Matcher) {
		if log != nil {
			m.log = log
		}
	}
}

package leadoff

import (
	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithBounds sets the inclusive plausibility window for a leadoff event.
func WithBounds(event model.Event, lowest, highest float64) Option {
	return func(x *Extractor) {
		if lowest > 0 && highest > lowest {
			x.bounds[event] = Bounds{Min: lowest, Max: highest}
		}
	}
}

// WithClassifier replaces how split records without a relay result are typed.
func WithClassifier(classify func(model.SplitRecord) model.RelayType) Option {
	return func(x *Extractor) {
		if classify != nil {
			x.classify = classify
		}
	}
}

// WithAliases resolves leadoff swimmer names to their formal form.
func WithAliases(r alias.Resolver) Option {
	return func(x *Extractor) {
		if r != nil {
			x.aliases = r
		}
	}
}

// WithLogger sets the logger used for rejected legs.
func WithLogger(log logger.Logger) Option {
	return func(x *Extractor) {
		if log != nil {
			x.log = log
		}
	}
}

// Package config defines run configuration and how it is loaded.
//
// Conventions:
// - New returns a Config filled with defaults.
// - Load layers defaults, an optional YAML file and RECORDBOOK_* env vars.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// DataDir holds seasons.yaml and the entries/, relays/ and splits/ trees.
	DataDir string `koanf:"data_dir"`

	// OutputDir receives the record artifacts.
	OutputDir string `koanf:"output_dir"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// AliasFile maps swimmer name variants to a formal name.
	AliasFile string `koanf:"alias_file"`

	// MinNameOverlap is how many of four relay swimmers must match a split record.
	MinNameOverlap int `koanf:"min_name_overlap"`

	// Tolerance200S and Tolerance400S bound |relay time - split total|.
	Tolerance200S float64 `koanf:"tolerance_200_s"`
	Tolerance400S float64 `koanf:"tolerance_400_s"`

	// FreeSplitMaxS is the per-leg ceiling that marks a 4-leg split record as a 200 free.
	FreeSplitMaxS float64 `koanf:"free_split_max_s"`

	// Leadoff plausibility bounds.
	Leadoff50MinS  float64 `koanf:"leadoff_50_min_s"`
	Leadoff50MaxS  float64 `koanf:"leadoff_50_max_s"`
	Leadoff100MinS float64 `koanf:"leadoff_100_min_s"`
	Leadoff100MaxS float64 `koanf:"leadoff_100_max_s"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		DataDir:        "data",
		OutputDir:      "data/records",
		MinNameOverlap: 3,
		Tolerance200S:  1.0,
		Tolerance400S:  2.0,
		FreeSplitMaxS:  35.0,
		Leadoff50MinS:  20.0,
		Leadoff50MaxS:  40.0,
		Leadoff100MinS: 45.0,
		Leadoff100MaxS: 90.0,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	if c.DataDir == "" {
		problems = append(problems, "data_dir must not be empty")
	}
	if c.OutputDir == "" {
		problems = append(problems, "output_dir must not be empty")
	}
	if c.MinNameOverlap < 1 || c.MinNameOverlap > 4 {
		problems = append(problems, "min_name_overlap must be between 1 and 4")
	}
	if c.Tolerance200S <= 0 || c.Tolerance400S <= 0 {
		problems = append(problems, "match tolerances must be positive")
	}
	if c.FreeSplitMaxS <= 0 {
		problems = append(problems, "free_split_max_s must be positive")
	}
	if c.Leadoff50MinS <= 0 || c.Leadoff50MinS >= c.Leadoff50MaxS {
		problems = append(problems, "leadoff_50 bounds must satisfy 0 < min < max")
	}
	if c.Leadoff100MinS <= 0 || c.Leadoff100MinS >= c.Leadoff100MaxS {
		problems = append(problems, "leadoff_100 bounds must satisfy 0 < min < max")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

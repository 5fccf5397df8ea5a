package alias

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a variant -> formal table from a YAML or JSON file.
func Load(path string) (*MapResolver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadAliases, path, err)
	}
	return Parse(raw)
}

// Parse decodes a variant -> formal table. JSON is accepted as YAML.
func Parse(raw []byte) (*MapResolver, error) {
	table := map[string]string{}
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseAliases, err)
	}
	return NewMapResolver(table), nil
}

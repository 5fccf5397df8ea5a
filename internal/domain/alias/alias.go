// Package alias resolves swimmer name variants to one formal name.
package alias

import (
	"strings"
)

// Resolver maps a name as it appears in some source to the name the team
// uses for that swimmer. Unknown names are returned unchanged.
type Resolver interface {
	Resolve(name string) string
}

// Nop returns every name unchanged.
type Nop struct{}

// Resolve implements Resolver.
func (Nop) Resolve(name string) string { return name }

// MapResolver is a case-insensitive variant -> formal table.
type MapResolver struct {
	formal map[string]string
}

// NewMapResolver builds a resolver from a variant -> formal table. Keys are
// matched ignoring case and repeated whitespace.
func NewMapResolver(table map[string]string) *MapResolver {
	r := &MapResolver{formal: make(map[string]string, len(table))}
	for variant, formal := range table {
		r.Add(variant, formal)
	}
	return r
}

// Add registers one variant. Empty variants or formal names are ignored.
func (r *MapResolver) Add(variant, formal string) {
	k := key(variant)
	formal = strings.TrimSpace(formal)
	if k == "" || formal == "" {
		return
	}
	r.formal[k] = formal
}

// Resolve implements Resolver.
func (r *MapResolver) Resolve(name string) string {
	if r == nil {
		return name
	}
	if formal, ok := r.formal[key(name)]; ok {
		return formal
	}
	return name
}

// Len returns the number of registered variants.
func (r *MapResolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.formal)
}

func key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

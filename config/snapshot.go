package config

import (
	"slices"

	"github.com/radolang/rado/ast"
)

// Snapshot is a total, resolved configuration: every declared config path
// has a value. Snapshots are immutable once resolved; resolving again
// builds a new one and never touches existing snapshots.
type Snapshot struct {
	values   map[ast.Path]ast.Value
	variants map[ast.Path]bool
	paths    []ast.Path
}

// NewSnapshot builds a snapshot directly from values and enum variants.
// Intended for tests and embedders that resolve configuration elsewhere;
// normal use goes through Collect and Resolve.
func NewSnapshot(values map[ast.Path]ast.Value, variants map[ast.Path]bool) *Snapshot {
	s := &Snapshot{
		values:   make(map[ast.Path]ast.Value, len(values)),
		variants: make(map[ast.Path]bool, len(variants)),
	}
	for p, v := range values {
		s.values[p] = v
		s.paths = append(s.paths, p)
	}
	for p, ok := range variants {
		if ok {
			s.variants[p] = true
		}
	}
	slices.Sort(s.paths)
	return s
}

// Lookup returns the value bound to a configuration path.
func (s *Snapshot) Lookup(p ast.Path) (ast.Value, bool) {
	v, ok := s.values[p]
	return v, ok
}

// Paths returns every configured path in sorted order.
func (s *Snapshot) Paths() []ast.Path {
	return slices.Clone(s.paths)
}

// Len returns how many paths are configured.
func (s *Snapshot) Len() int {
	return len(s.values)
}

// Values exposes the underlying value map for evaluation environments.
// The map is shared; callers must not mutate it.
func (s *Snapshot) Values() map[ast.Path]ast.Value {
	return s.values
}

// Variants exposes the enum variant set for evaluation environments.
// The map is shared; callers must not mutate it.
func (s *Snapshot) Variants() map[ast.Path]bool {
	return s.variants
}

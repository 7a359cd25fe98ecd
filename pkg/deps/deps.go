package deps

import "slices"

// Extractor discovers top-level module names in a piece of source code.
//
// Implementations must be deterministic and must never fail: text without
// any import statement yields an empty set.
type Extractor interface {
	// Name returns the extractor identifier (e.g., "python").
	Name() string
	// Extract returns the top-level modules imported by code.
	Extract(code string) Set
}

// ExtractorFunc adapts a plain function to the [Extractor] interface.
type ExtractorFunc struct {
	ID string
	Fn func(code string) Set
}

// Name returns the extractor identifier.
func (f ExtractorFunc) Name() string { return f.ID }

// Extract calls the wrapped function.
func (f ExtractorFunc) Extract(code string) Set { return f.Fn(code) }

// Set is an insertion-ordered set of module names.
//
// The zero value is ready to use. A Set is not safe for concurrent
// mutation.
type Set struct {
	names []string
	index map[string]struct{}
}

// NewSet returns a set holding names, deduplicated in order.
func NewSet(names ...string) Set {
	var s Set
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name if it is not already present. Empty names are ignored.
// It reports whether the set changed.
func (s *Set) Add(name string) bool {
	if name == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Union adds every name of other, keeping other's order for new names.
func (s *Set) Union(other Set) {
	for _, n := range other.names {
		s.Add(n)
	}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int { return len(s.names) }

// List returns the names in first-seen order. The slice is a copy.
func (s Set) List() []string {
	return slices.Clone(s.names)
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	out := s.List()
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same names, ignoring order.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, n := range s.names {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

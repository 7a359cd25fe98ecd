package manifest

import (
	"slices"

	"github.com/matzehuels/nbenv/pkg/deps"
)

// Manifest is the set of packages an execution host must provide.
// Packages are in first-appearance order; consumers treat them as a set.
type Manifest struct {
	Packages []string `json:"packages"`
	RunID    string   `json:"run_id,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// New builds a manifest from a dependency set.
func New(set deps.Set) *Manifest {
	pkgs := set.List()
	if pkgs == nil {
		pkgs = []string{}
	}
	return &Manifest{Packages: pkgs}
}

// Set returns the manifest's packages as a dependency set.
func (m *Manifest) Set() deps.Set {
	if m == nil {
		return deps.NewSet()
	}
	return deps.NewSet(m.Packages...)
}

// Len returns the number of packages.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Packages)
}

// Same reports whether two manifests list the same packages, ignoring order.
func (m *Manifest) Same(other *Manifest) bool {
	return m.Set().Equal(other.Set())
}

// Diff returns the packages only in m and only in other, sorted.
func (m *Manifest) Diff(other *Manifest) (added, removed []string) {
	mine, theirs := m.Set(), other.Set()
	for _, p := range mine.Sorted() {
		if !theirs.Has(p) {
			added = append(added, p)
		}
	}
	for _, p := range theirs.Sorted() {
		if !mine.Has(p) {
			removed = append(removed, p)
		}
	}
	return added, removed
}

func (m *Manifest) clone() *Manifest {
	c := *m
	c.Packages = slices.Clone(m.Packages)
	if c.Packages == nil {
		c.Packages = []string{}
	}
	return &c
}

package manifest

import (
	"context"
	"sync/atomic"
)

// Slot holds the live manifest for the process.
//
// Publish swaps in a full replacement, so readers see either the previous
// manifest or the new one, never a partial or empty state in between.
// The zero value is ready to use and holds no manifest.
type Slot struct {
	p       atomic.Pointer[Manifest]
	version atomic.Uint64
}

// Publish replaces the live manifest with a copy of m.
func (s *Slot) Publish(_ context.Context, m *Manifest) error {
	if m == nil {
		m = &Manifest{}
	}
	s.p.Store(m.clone())
	s.version.Add(1)
	return nil
}

// Load returns the live manifest, or nil if nothing was published yet.
// The returned manifest must not be modified.
func (s *Slot) Load() *Manifest {
	return s.p.Load()
}

// Version returns how many times the slot was published to.
func (s *Slot) Version() uint64 {
	return s.version.Load()
}

var _ Publisher = (*Slot)(nil)

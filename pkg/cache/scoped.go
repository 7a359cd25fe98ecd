package cache

// ScopedKeyer wraps a Keyer with a prefix so that several consumers can
// share one cache directory without seeing each other's entries. The server
// uses it to keep its pages apart from CLI renders.
//
//	serveKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NotebookKey generates a prefixed notebook key.
func (k *ScopedKeyer) NotebookKey(url string) string {
	return k.prefix + k.inner.NotebookKey(url)
}

// PageKey generates a prefixed page key.
func (k *ScopedKeyer) PageKey(docHash string, opts PageKeyOpts) string {
	return k.prefix + k.inner.PageKey(docHash, opts)
}

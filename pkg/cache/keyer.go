package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// NotebookKey is the key for a notebook body fetched from url.
	NotebookKey(url string) string

	// PageKey is the key for a rendered page of a notebook, identified by
	// the hash of its raw bytes.
	PageKey(docHash string, opts PageKeyOpts) string
}

// PageKeyOpts holds the render options that change a page's bytes.
type PageKeyOpts struct {
	Title      string `json:"title,omitempty"`
	PyScriptJS  string `json:"pyscript_js,omitempty"`
	PyScriptCSS string `json:"pyscript_css,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// NotebookKey implements [Keyer].
func (DefaultKeyer) NotebookKey(url string) string {
	return hashKey("notebook", url)
}

// PageKey implements [Keyer].
func (DefaultKeyer) PageKey(docHash string, opts PageKeyOpts) string {
	return hashKey("page", docHash, opts)
}

// KeyType returns the prefix of a key built by [DefaultKeyer], for metrics.
func KeyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

// Hash returns the hex SHA-256 of data. Notebook documents are identified
// by the hash of their raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "kind:sha256(json(parts))".
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/nbenv/pkg/observability"
)

// FileCache stores one JSON file per entry under dir, fanned out into
// subdirectories by the first byte of the key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get implements [Cache]. Unreadable and expired entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	entry, err := readEntry(path)
	switch {
	case os.IsNotExist(err):
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return nil, false, nil
	case err != nil && !isDecodeError(err):
		return nil, false, err
	}
	if err != nil || entry.Key != key || entry.expired(c.now()) {
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return nil, false, nil
	}

	observability.Cache().OnCacheHit(ctx, KeyType(key))
	return entry.Data, true, nil
}

// Set implements [Cache]. The entry is written to a temp file and renamed
// into place so concurrent readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	entry := fileEntry{Key: key, Data: data, StoredAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}

// Delete implements [Cache].
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close implements [Cache].
func (c *FileCache) Close() error { return nil }

// Clear removes every entry. The directory itself is kept.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes the entries on disk, grouped by key kind
// ("notebook", "page").
type Stats struct {
	Entries int
	Expired int
	Bytes   int64
	ByKind  map[string]int
}

// Stats walks the cache directory.
func (c *FileCache) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByKind: make(map[string]int)}
	now := c.now()
	err := c.walk(ctx, func(path string, e *fileEntry, size int64) error {
		st.Entries++
		st.Bytes += size
		if e == nil {
			st.Expired++
			return nil
		}
		if e.expired(now) {
			st.Expired++
		}
		st.ByKind[KeyType(strings.TrimPrefix(e.Key, "serve:"))]++
		return nil
	})
	return st, err
}

// Prune removes expired and unreadable entries and reports how many were
// removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	removed := 0
	now := c.now()
	err := c.walk(ctx, func(path string, e *fileEntry, _ int64) error {
		if e != nil && !e.expired(now) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// walk calls fn for every entry file. e is nil when the file cannot be
// decoded.
func (c *FileCache) walk(ctx context.Context, fn func(path string, e *fileEntry, size int64) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entry, err := readEntry(path)
		if err != nil {
			return fn(path, nil, info.Size())
		}
		return fn(path, entry, info.Size())
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

func readEntry(path string) (*fileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &decodeError{err}
	}
	return &e, nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode cache entry: " + e.err.Error() }

func isDecodeError(err error) bool {
	_, ok := err.(*decodeError)
	return ok
}

var _ Cache = (*FileCache)(nil)

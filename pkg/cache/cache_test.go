package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); hit || data != nil || err != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if len(h) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h))
	}
	if h != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	nk1 := k.NotebookKey("https://example.com/a.ipynb")
	nk2 := k.NotebookKey("https://example.com/b.ipynb")
	if nk1 == nk2 {
		t.Error("Different URLs should produce different keys")
	}
	if nk1 != k.NotebookKey("https://example.com/a.ipynb") {
		t.Error("NotebookKey should be deterministic")
	}
	if KeyType(nk1) != "notebook" {
		t.Errorf("KeyType(%q) = %q, want notebook", nk1, KeyType(nk1))
	}

	pk1 := k.PageKey("hash123", PageKeyOpts{Title: "a"})
	pk2 := k.PageKey("hash123", PageKeyOpts{Title: "b"})
	if pk1 == pk2 {
		t.Error("Different PageKeyOpts should produce different keys")
	}
	css := k.PageKey("hash123", PageKeyOpts{Title: "a", PyScriptCSS: "https://cdn.example/other.css"})
	if css == pk1 {
		t.Error("PyScriptCSS should be part of the page key")
	}
	if KeyType(pk1) != "page" {
		t.Errorf("KeyType(%q) = %q, want page", pk1, KeyType(pk1))
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "serve:")

	key := scoped.NotebookKey("https://example.com/a.ipynb")
	if key != "serve:"+inner.NotebookKey("https://example.com/a.ipynb") {
		t.Errorf("ScopedKeyer NotebookKey unexpected: %s", key)
	}

	pageKey := scoped.PageKey("abc", PageKeyOpts{})
	if !strings.HasPrefix(pageKey, "serve:page:") {
		t.Errorf("ScopedKeyer PageKey should be prefixed: %s", pageKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.NotebookKey("u")
	if key != "prefix:"+NewDefaultKeyer().NotebookKey("u") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"cells":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v", hit, err)
	}
	if string(data) != `{"cells":[]}` {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

// fakeClock lets tests move a FileCache through time.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newClockedCache(t *testing.T) (*FileCache, *fakeClock) {
	t.Helper()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedCache(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missed")
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("expired entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed on read")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without TTL should not expire")
	}
}

func TestFileCachePruneAndStats(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedCache(t)
	keyer := NewDefaultKeyer()

	nbKey := keyer.NotebookKey("https://example.com/a.ipynb")
	pageKey := NewScopedKeyer(keyer, "serve:").PageKey("abc", PageKeyOpts{})
	_ = c.Set(ctx, nbKey, []byte("nb"), time.Minute)
	_ = c.Set(ctx, pageKey, []byte("<html>"), time.Hour)

	clock.t = clock.t.Add(10 * time.Minute)
	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Entries != 2 || st.Expired != 1 {
		t.Errorf("Stats = %+v, want 2 entries, 1 expired", st)
	}
	if st.ByKind["notebook"] != 1 || st.ByKind["page"] != 1 {
		t.Errorf("ByKind = %v", st.ByKind)
	}
	if st.Bytes == 0 {
		t.Error("Bytes = 0")
	}

	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, hit, _ := c.Get(ctx, pageKey); !hit {
		t.Error("live entry pruned")
	}
}

func TestFileCacheKeyMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := newClockedCache(t)

	_ = c.Set(ctx, "a", []byte("v"), 0)
	path := c.path("b")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(c.path("a"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("entry stored under another key was returned")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("entries left after Clear: %d", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should survive Clear: %v", err)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "nbenv") {
		t.Errorf("DefaultDir = %q", dir)
	}
}

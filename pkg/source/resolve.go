package source

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// Kind says where a notebook comes from.
type Kind int

const (
	KindFile Kind = iota
	KindURL
	KindSample
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindSample:
		return "sample"
	}
	return "file"
}

// Target is a resolved notebook location.
type Target struct {
	Kind Kind
	// Location is the file path or URL to read.
	Location string
	// Name is a short display name.
	Name string
}

// Resolve classifies a command-line argument. Arguments with an http or
// https scheme are URLs. Otherwise an existing file wins over a sample of
// the same name, and anything else is treated as a file path.
func Resolve(arg string, catalog *Catalog) (Target, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Target{}, errors.New(errors.ErrCodeInvalidInput, "please enter a valid URL")
	}

	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		if err := errors.ValidateURL(arg); err != nil {
			return Target{}, err
		}
		return Target{Kind: KindURL, Location: arg, Name: urlName(arg)}, nil
	}

	if catalog != nil && catalog.Has(arg) {
		if _, err := os.Stat(arg); err != nil {
			s, _ := catalog.Lookup(arg)
			return Target{Kind: KindSample, Location: s.URL, Name: s.Name}, nil
		}
	}

	if err := errors.ValidateLocalPath(arg); err != nil {
		return Target{}, err
	}
	return Target{Kind: KindFile, Location: arg, Name: filepath.Base(arg)}, nil
}

func urlName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return raw
	}
	if name, err := url.PathUnescape(path.Base(u.Path)); err == nil {
		return name
	}
	return path.Base(u.Path)
}

// Notebook is acquired raw notebook bytes with their origin.
type Notebook struct {
	Raw    []byte
	Target Target
}

// Loader acquires notebooks from any supported location.
type Loader struct {
	Fetcher *Fetcher
	Catalog *Catalog
}

// NewLoader returns a loader. A nil fetcher gets an uncached default.
func NewLoader(f *Fetcher, c *Catalog) *Loader {
	if f == nil {
		f = NewFetcher()
	}
	return &Loader{Fetcher: f, Catalog: c}
}

// Load resolves arg and reads the notebook it names.
func (l *Loader) Load(ctx context.Context, arg string, refresh bool) (*Notebook, error) {
	t, err := Resolve(arg, l.Catalog)
	if err != nil {
		return nil, err
	}
	return l.LoadTarget(ctx, t, refresh)
}

// LoadTarget reads the notebook at an already resolved target.
func (l *Loader) LoadTarget(ctx context.Context, t Target, refresh bool) (*Notebook, error) {
	var (
		raw []byte
		err error
	)
	switch t.Kind {
	case KindURL, KindSample:
		raw, err = l.Fetcher.Fetch(ctx, t.Location, refresh)
	default:
		raw, err = ReadFile(t.Location)
	}
	if err != nil {
		return nil, err
	}
	return &Notebook{Raw: raw, Target: t}, nil
}

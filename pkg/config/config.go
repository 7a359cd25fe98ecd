// Package config loads the optional nbenv configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/nbenv/config.toml, falling
// back to ~/.config/nbenv/config.toml. A missing file yields [Default].
// Command-line flags override anything set here.
//
// # Example
//
//	[manifest]
//	format = "requirements"
//	path = "requirements.txt"
//
//	[cache]
//	ttl = "12h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[[samples]]
//	name = "intro"
//	url = "https://example.com/intro.ipynb"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/source"
)

// DefaultServerAddr is the listen address of nbenv serve.
const DefaultServerAddr = ":8080"

// Config is the parsed configuration file.
type Config struct {
	Manifest ManifestConfig  `toml:"manifest"`
	Cache    CacheConfig     `toml:"cache"`
	Redis    RedisConfig     `toml:"redis"`
	Mongo    MongoConfig     `toml:"mongo"`
	Server   ServerConfig    `toml:"server"`
	Samples  []source.Sample `toml:"samples"`
}

// ManifestConfig selects where nbenv deps writes the manifest.
type ManifestConfig struct {
	// Format is one of the manifest formats. Empty means the format is
	// inferred from the output path.
	Format string `toml:"format"`
	// Path is the default --output file. Empty means no file sink.
	Path string `toml:"path"`
}

// CacheConfig controls the notebook and page cache.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// RedisConfig enables the redis manifest sink when Addr is set.
type RedisConfig struct {
	Addr string `toml:"addr"`
	Key  string `toml:"key"`
}

// MongoConfig enables the mongo manifest sink when URI is set.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	ID         string `toml:"id"`
}

// ServerConfig configures nbenv serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache:    CacheConfig{TTL: Duration{cache.TTLNotebook}},
		Redis:    RedisConfig{Key: manifest.DefaultRedisKey},
		Mongo: MongoConfig{
			Database:   "nbenv",
			Collection: "manifests",
			ID:         manifest.DefaultMongoID,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// DefaultPath returns the configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "nbenv", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nbenv", "config.toml"), nil
}

// Load reads the file at path over [Default]. A missing file is not an
// error. Unknown keys are rejected so that typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := manifest.ParseFormat(c.Manifest.Format); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	_, err := c.Catalog()
	return err
}

// Catalog returns the built-in samples extended by the configured ones.
func (c *Config) Catalog() (*source.Catalog, error) {
	return source.NewCatalog(c.Samples...)
}

// CacheDir returns the configured cache directory or [cache.DefaultDir].
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

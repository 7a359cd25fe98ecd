// Package cli implements the nbenv command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/buildinfo"
	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/config"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/observability"
	"github.com/matzehuels/nbenv/pkg/pipeline"
	"github.com/matzehuels/nbenv/pkg/render"
	"github.com/matzehuels/nbenv/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nbenv"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config *config.Config

	// ConfigPath overrides the default config file location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level, pipeline, cache
// and HTTP events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "nbenv renders Jupyter notebooks and derives their Python environment",
		Long: `nbenv reads a Jupyter notebook from a file, a URL or the sample catalog,
renders its cells and publishes the list of top-level packages its code
imports as an environment manifest.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/nbenv/config.toml)")

	// Register all subcommands
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.samplesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			c.Logger.Debug("no config location", "err", err)
			return nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runOpts holds the flags shared by every command that processes a notebook.
type runOpts struct {
	noCache bool
	refresh bool
}

func (o *runOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the notebook cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "refetch URL notebooks even if cached")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(md render.Markdown, pub manifest.Publisher, noCache bool) (*pipeline.Runner, error) {
	catalog, err := c.Config.Catalog()
	if err != nil {
		return nil, err
	}
	fetcher := source.NewFetcher(
		source.WithCache(c.newCache(noCache), cache.NewDefaultKeyer(), c.Config.Cache.TTL.Duration),
	)

	runner := pipeline.NewRunner(md, pub, c.Logger)
	runner.Loader = source.NewLoader(fetcher, catalog)
	return runner, nil
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache()
	}
	dir, err := c.Config.CacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// process runs the pipeline on one notebook argument, publishing to the
// configured sinks plus any extra publishers.
func (c *CLI) process(ctx context.Context, arg string, md render.Markdown, opts runOpts, extra ...manifest.Publisher) (*pipeline.Result, error) {
	sinks, closeSinks, err := c.sinks(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSinks()

	runner, err := c.newRunner(md, manifest.Multi(append(extra, sinks...)), opts.noCache)
	if err != nil {
		return nil, err
	}

	spin := newSpinner(ctx, os.Stderr, "Processing "+arg+"...")
	spin.Start()
	result, err := runner.Execute(ctx, pipeline.Options{Source: arg, Refresh: opts.refresh})
	spin.Stop()
	return result, err
}

// =============================================================================
// Manifest Sinks
// =============================================================================

// sinks connects to the redis and mongo sinks enabled in the config. The
// returned func releases the connections.
func (c *CLI) sinks(ctx context.Context) (manifest.Multi, func(), error) {
	var (
		pubs    manifest.Multi
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if addr := c.Config.Redis.Addr; addr != "" {
		client, err := manifest.DialRedis(ctx, addr)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		pubs = append(pubs, manifest.Named{
			Name:      "redis",
			Publisher: manifest.NewRedisSink(client, c.Config.Redis.Key, manifest.FormatJSON),
		})
		c.Logger.Debug("redis sink enabled", "addr", addr, "key", c.Config.Redis.Key)
	}

	if uri := c.Config.Mongo.URI; uri != "" {
		coll, disconnect, err := manifest.DialMongo(ctx, uri, c.Config.Mongo.Database, c.Config.Mongo.Collection)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = disconnect(context.Background()) })
		pubs = append(pubs, manifest.Named{
			Name:      "mongo",
			Publisher: manifest.NewMongoSink(coll, c.Config.Mongo.ID),
		})
		c.Logger.Debug("mongo sink enabled", "database", c.Config.Mongo.Database, "collection", c.Config.Mongo.Collection)
	}

	return pubs, closeAll, nil
}

// manifestFormat resolves the --format flag against the config. An empty
// result lets file sinks infer the format from the path.
func (c *CLI) manifestFormat(flag string) (manifest.Format, error) {
	name := flag
	if name == "" {
		name = c.Config.Manifest.Format
	}
	if name == "" {
		return "", nil
	}
	return manifest.ParseFormat(name)
}

// =============================================================================
// Output
// =============================================================================

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

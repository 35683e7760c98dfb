// Package cli implements the rigwall command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/buildinfo"
	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/config"
	"github.com/matzehuels/rigwall/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rigwall"

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

	// Config is the loaded rigwall.toml (or the defaults). ConfigPath is
	// empty when no file was found.
	Config     config.Config
	ConfigPath string

	configFlag string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rigwall lays out a filterable masonry gallery of delivered trucks",
		Long:         `Rigwall generates a catalog of delivered tow trucks and carriers, filters and sorts it, and lays it out as a masonry gallery. The gallery can be rendered to HTML, SVG, JSON or PNG, browsed in the terminal, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default: $XDG_CONFIG_HOME/rigwall/rigwall.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.submitCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, path, err := config.Load(c.configFlag)
	if err != nil {
		return err
	}
	c.Config, c.ConfigPath = cfg, path
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG standard
// location (~/.cache/rigwall/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// flagOr returns the flag value when the user set it, else fallback.
func flagOr[T any](cmd *cobra.Command, name string, value, fallback T) T {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// pipelineOptions fills the generate and layout settings from the config.
func (c *CLI) pipelineOptions() pipeline.Options {
	g := c.Config.Gallery
	return pipeline.Options{
		Seed:           c.Config.Seed,
		Roster:         c.Config.Roster,
		PageSize:       g.PageSize,
		CaptionHeight:  g.CaptionHeight,
		Gaps:           g.Gaps(),
		MeasureTimeout: g.MeasureTimeout,
		Title:          c.Config.Render.Title,
		ImageBase:      c.Config.Render.ImageBase,
		Formats:        c.Config.Render.Formats,
		Scale:          c.Config.Render.Scale,
		Logger:         c.Logger,
	}
}

// loadCatalog reads a catalog file, or returns nil when path is empty so
// the pipeline generates one.
func loadCatalog(path string) ([]catalog.Vehicle, error) {
	if path == "" {
		return nil, nil
	}
	vs, err := catalog.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return vs, nil
}

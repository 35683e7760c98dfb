// Package config loads rigwall.toml.
//
// Lookup order: an explicit --config path, then
// $XDG_CONFIG_HOME/rigwall/rigwall.toml (or ~/.config/rigwall/rigwall.toml),
// else built-in defaults. Command-line flags override whatever is loaded.
//
//	seed = 42
//
//	[gallery]
//	page_size = 20
//	measure_timeout = "2s"
//
//	[server]
//	addr = ":8080"
//	redis = "redis://localhost:6379/0"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rigwall/pkg/catalog"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/paginate"
)

// FileName is the configuration file name.
const FileName = "rigwall.toml"

// Config is the full file.
type Config struct {
	// Seed fixes catalog generation; 0 draws a new catalog on every run.
	Seed uint64 `toml:"seed"`

	Gallery Gallery        `toml:"gallery"`
	Roster  catalog.Roster `toml:"roster"`
	Render  Render         `toml:"render"`
	Server  Server         `toml:"server"`
	Cache   Cache          `toml:"cache"`
}

// Gallery tunes pagination and layout.
type Gallery struct {
	PageSize       int           `toml:"page_size"`
	CaptionHeight  float64       `toml:"caption_height"`
	HorizontalGap  float64       `toml:"horizontal_gap"`
	VerticalGap    float64       `toml:"vertical_gap"`
	MeasureTimeout time.Duration `toml:"measure_timeout"`
	Images         string        `toml:"images"`
}

// Render sets defaults for rendered files.
type Render struct {
	Title     string   `toml:"title"`
	ImageBase string   `toml:"image_base"`
	Formats   []string `toml:"formats"`
	Scale     float64  `toml:"scale"`
}

// Server configures `rigwall serve`.
type Server struct {
	Addr           string        `toml:"addr"`
	Redis          string        `toml:"redis"`
	SessionTTL     time.Duration `toml:"session_ttl"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	SubmitRate     float64       `toml:"submit_rate"`
	SubmitBurst    int           `toml:"submit_burst"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
}

// Cache configures the on-disk pipeline cache.
type Cache struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	gaps := masonry.DefaultGaps()
	return Config{
		Gallery: Gallery{
			PageSize:       paginate.DefaultPageSize,
			CaptionHeight:  76,
			HorizontalGap:  gaps.Horizontal,
			VerticalGap:    gaps.Vertical,
			MeasureTimeout: masonry.DefaultMeasureTimeout,
		},
		Roster: catalog.DefaultRoster(),
		Render: Render{
			Title:   "Recent Deliveries",
			Formats: []string{"html"},
			Scale:   1,
		},
		Server: Server{
			Addr:         ":8080",
			SessionTTL:   30 * time.Minute,
			SubmitRate:   0.2,
			SubmitBurst:  3,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Gaps returns the configured gutters.
func (g Gallery) Gaps() *masonry.Gaps {
	return &masonry.Gaps{Horizontal: g.HorizontalGap, Vertical: g.VerticalGap}
}

// Find returns the file to load: explicit if given (it must exist), else
// the user config file if present, else "".
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, nil
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(dir, "rigwall", FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return path, nil
}

func userConfigDir() (string, error) {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return x, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// Load finds and decodes the configuration. Keys missing from the file keep
// their defaults; unknown keys are an error.
func Load(explicit string) (Config, string, error) {
	cfg := Default()
	path, err := Find(explicit)
	if err != nil || path == "" {
		return cfg, "", err
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, path, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, path, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// Decode parses TOML from r on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "parse config")
	}
	return cfg, cfg.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
}

// Validate checks ranges and the roster.
func (c Config) Validate() error {
	if c.Gallery.PageSize <= 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "gallery.page_size must be positive")
	}
	if c.Gallery.CaptionHeight < 0 || c.Gallery.HorizontalGap < 0 || c.Gallery.VerticalGap < 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "gallery sizes must not be negative")
	}
	if c.Gallery.MeasureTimeout <= 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "gallery.measure_timeout must be positive")
	}
	if err := c.Roster.WithDefaults().Validate(); err != nil {
		return err
	}
	if c.Server.SubmitRate < 0 || c.Server.SubmitBurst < 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "server submit limits must not be negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

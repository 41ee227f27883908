// Package config loads orgchart settings.
//
// Settings are layered: built-in defaults, then the TOML file
// (~/.config/orgchart/config.toml unless --config names another), then
// ORGCHART_* environment variables. A .env file in the working directory is
// loaded into the environment first without overriding variables already set.
//
//	slot = "org-chart"
//
//	[storage]
//	backend = "sqlite"
//
//	[layout]
//	level_height = 140
//	sibling_gap = 220
//
//	[ui]
//	lang = "en"
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bichil/orgchart/pkg/chart/layout"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/storage"
	"github.com/bichil/orgchart/pkg/upload"
)

// FileName is the config file looked up in the config directory.
const FileName = "config.toml"

// Config is the full settings tree.
type Config struct {
	Slot    string          `toml:"slot"`
	Storage storage.Config  `toml:"storage"`
	Layout  LayoutConfig    `toml:"layout"`
	Export  ExportConfig    `toml:"export"`
	Server  ServerConfig    `toml:"server"`
	Upload  upload.S3Config `toml:"upload"`
	UI      UIConfig        `toml:"ui"`
}

// LayoutConfig tunes auto-layout and the scatter preset.
type LayoutConfig struct {
	LevelHeight float64 `toml:"level_height"`
	SiblingGap  float64 `toml:"sibling_gap"`
	OriginX     float64 `toml:"origin_x"`
	JitterX     float64 `toml:"jitter_x"`
	JitterY     float64 `toml:"jitter_y"`
}

// Options returns the deterministic layout options.
func (c LayoutConfig) Options() layout.Options {
	return layout.Options{LevelHeight: c.LevelHeight, SiblingGap: c.SiblingGap, OriginX: c.OriginX}
}

// Scatter returns the scatter preset options.
func (c LayoutConfig) Scatter() layout.ScatterOptions {
	return layout.ScatterOptions{Layout: c.Options(), JitterX: c.JitterX, JitterY: c.JitterY}
}

// ExportConfig controls image exports and their cache.
type ExportConfig struct {
	Scale      float64       `toml:"scale"`
	Padding    float64       `toml:"padding"`
	Background string        `toml:"background"`
	RSVGPath   string        `toml:"rsvg_path"`
	CacheDir   string        `toml:"cache_dir"`
	NoCache    bool          `toml:"no_cache"`
	Timeout    time.Duration `toml:"timeout"`
}

// Options returns the render options.
func (c ExportConfig) Options() export.Options {
	return export.Options{Scale: c.Scale, Padding: c.Padding, Background: c.Background}
}

// ServerConfig configures "orgchart serve".
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
	CacheSize   int      `toml:"cache_size"`
	Metrics     bool     `toml:"metrics"`
}

// UIConfig holds interactive preferences.
type UIConfig struct {
	Lang    string `toml:"lang"`
	Confirm bool   `toml:"confirm"` // ask before destructive actions
}

// Language resolves the configured language, falling back to $LANG.
func (c UIConfig) Language() i18n.Lang {
	if c.Lang != "" {
		return i18n.Match(c.Lang)
	}
	if env := os.Getenv("LANG"); env != "" {
		return i18n.Match(env)
	}
	return i18n.Default
}

// Default returns the built-in settings.
func Default() *Config {
	lo := layout.DefaultOptions()
	sc := layout.DefaultScatterOptions()
	eo := export.DefaultOptions()
	return &Config{
		Slot:    storage.DefaultSlot,
		Storage: storage.Config{Backend: storage.BackendFile},
		Layout: LayoutConfig{
			LevelHeight: lo.LevelHeight,
			SiblingGap:  lo.SiblingGap,
			OriginX:     lo.OriginX,
			JitterX:     sc.JitterX,
			JitterY:     sc.JitterY,
		},
		Export: ExportConfig{
			Scale:      eo.Scale,
			Padding:    eo.Padding,
			Background: eo.Background,
			Timeout:    30 * time.Second,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 64,
			Metrics:   true,
		},
		UI: UIConfig{Confirm: true},
	}
}

// DefaultPath returns the config file location inside the storage directory.
func DefaultPath() (string, error) {
	dir, err := storage.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load builds the settings. An empty path means [DefaultPath], which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	if _, err := LoadEnv(".env"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load .env")
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.loadFile(path); err != nil {
		if !explicit && stderrors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown setting %q", path, undecoded[0].String())
	}
	return nil
}

// Validate rejects settings that would fail later in a less obvious way.
func (c *Config) Validate() error {
	var errs []error
	if err := errors.ValidateSlotName(c.Slot); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(storage.Backends, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of %v", c.Storage.Backend, storage.Backends))
	}
	if c.Layout.LevelHeight <= 0 || c.Layout.SiblingGap <= 0 {
		errs = append(errs, fmt.Errorf("layout.level_height and layout.sibling_gap must be positive"))
	}
	if c.Layout.JitterX < 0 || c.Layout.JitterY < 0 {
		errs = append(errs, fmt.Errorf("layout jitter must not be negative"))
	}
	if c.Export.Scale <= 0 || c.Export.Scale > 8 {
		errs = append(errs, fmt.Errorf("export.scale must be in (0, 8]"))
	}
	if c.Export.Padding < 0 {
		errs = append(errs, fmt.Errorf("export.padding must not be negative"))
	}
	if c.Server.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("server.cache_size must not be negative"))
	}
	if c.UI.Lang != "" && c.UI.Lang != string(i18n.Mongolian) && c.UI.Lang != string(i18n.English) {
		errs = append(errs, fmt.Errorf("ui.lang %q is not mn or en", c.UI.Lang))
	}
	if err := stderrors.Join(errs...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid configuration")
	}
	return nil
}

// Write saves c as TOML, creating the directory.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

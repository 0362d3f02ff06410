// Package config handles loading and saving mm configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/mindmap/config.yaml
//   - State:   ~/.local/state/mindmap/ (recent databases)
//
// The MM_DB environment variable overrides the configured database path.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

// maxRecent bounds the recent database list.
const maxRecent = 9

// DatabaseConfig says where conversations are read from.
type DatabaseConfig struct {
	Path   string   `yaml:"path,omitempty"`   // SQLite database or JSON backup
	Recent []string `yaml:"recent,omitempty"` // Most recently opened first
}

// LayoutConfig tunes the force simulation.
type LayoutConfig struct {
	LinkDistance      float64 `yaml:"link_distance,omitempty" validate:"gte=0"`
	ChargeStrength    float64 `yaml:"charge_strength,omitempty"`
	CollideRadius     float64 `yaml:"collide_radius,omitempty" validate:"gte=0"`
	PreservePositions bool    `yaml:"preserve_positions,omitempty"` // Keep positions across reloads
	Seed              uint64  `yaml:"seed,omitempty"`
}

// ViewportConfig bounds zooming and times camera transitions.
type ViewportConfig struct {
	MinScale       float64 `yaml:"min_scale,omitempty" validate:"gt=0"`
	MaxScale       float64 `yaml:"max_scale,omitempty" validate:"gtfield=MinScale"`
	CenterScale    float64 `yaml:"center_scale,omitempty" validate:"gt=0"`
	ZoomDuration   int     `yaml:"zoom_duration_ms,omitempty" validate:"gte=0"`
	ResetDuration  int     `yaml:"reset_duration_ms,omitempty" validate:"gte=0"`
	CenterDuration int     `yaml:"center_duration_ms,omitempty" validate:"gte=0"`
}

// RenderConfig holds export and drawing settings.
type RenderConfig struct {
	Width  int     `yaml:"width,omitempty" validate:"gte=0"`
	Height int     `yaml:"height,omitempty" validate:"gte=0"`
	TagDim float64 `yaml:"tag_dim,omitempty" validate:"gte=0,lte=1"` // Opacity outside a tag filter
}

// UIConfig holds terminal preference settings.
type UIConfig struct {
	Theme       string  `yaml:"theme,omitempty" validate:"omitempty,oneof=dark light"`
	Mouse       *bool   `yaml:"mouse,omitempty"`
	FPS         int     `yaml:"fps,omitempty" validate:"gte=1,lte=120"`
	DetailRatio float64 `yaml:"detail_ratio,omitempty" validate:"gte=0.2,lte=0.8"` // Detail pane share of the width
}

// Config is the top-level configuration for mm.
type Config struct {
	Database DatabaseConfig `yaml:"database,omitempty"`
	Layout   LayoutConfig   `yaml:"layout,omitempty"`
	Viewport ViewportConfig `yaml:"viewport,omitempty"`
	Render   RenderConfig   `yaml:"render,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	lo := layout.DefaultOptions(0, 0)
	vp := viewport.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			LinkDistance:   lo.LinkDistance,
			ChargeStrength: lo.ChargeStrength,
			CollideRadius:  lo.CollideRadius,
			Seed:           lo.Seed,
		},
		Viewport: ViewportConfig{
			MinScale:       vp.MinScale,
			MaxScale:       vp.MaxScale,
			CenterScale:    vp.CenterScale,
			ZoomDuration:   int(vp.ZoomDuration / time.Millisecond),
			ResetDuration:  int(vp.ResetDuration / time.Millisecond),
			CenterDuration: int(vp.CenterDuration / time.Millisecond),
		},
		Render: RenderConfig{
			Width:  1200,
			Height: 800,
			TagDim: 0.15,
		},
		UI: UIConfig{
			Theme:       "dark",
			FPS:         30,
			DetailRatio: 0.4,
		},
	}
}

// ConfigDir returns the XDG config directory for mm.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mindmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mindmap")
}

// StateDir returns the XDG state directory for mm.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "mindmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "mindmap")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies environment
// overrides. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	for i := range cfg.Database.Recent {
		cfg.Database.Recent[i] = expandHome(cfg.Database.Recent[i])
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if db := os.Getenv("MM_DB"); db != "" {
		c.Database.Path = expandHome(db)
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// AddRecent moves path to the front of the recent database list.
func (c *Config) AddRecent(path string) {
	if path == "" {
		return
	}
	out := []string{path}
	for _, p := range c.Database.Recent {
		if !strings.EqualFold(p, path) && len(out) < maxRecent {
			out = append(out, p)
		}
	}
	c.Database.Recent = out
}

// LayoutOptions returns simulation options for a viewport of width x height.
func (c Config) LayoutOptions(width, height float64) layout.Options {
	opts := layout.DefaultOptions(width, height)
	c.TuneLayout(&opts)
	return opts
}

// TuneLayout applies the configured layout settings to opts.
func (c Config) TuneLayout(opts *layout.Options) {
	if c.Layout.LinkDistance > 0 {
		opts.LinkDistance = c.Layout.LinkDistance
	}
	if c.Layout.ChargeStrength != 0 {
		opts.ChargeStrength = c.Layout.ChargeStrength
	}
	if c.Layout.CollideRadius > 0 {
		opts.CollideRadius = c.Layout.CollideRadius
	}
	if c.Layout.Seed != 0 {
		opts.Seed = c.Layout.Seed
	}
}

// ViewportOptions returns the configured viewport options.
func (c Config) ViewportOptions() viewport.Options {
	opts := viewport.DefaultOptions()
	if c.Viewport.MinScale > 0 {
		opts.MinScale = c.Viewport.MinScale
	}
	if c.Viewport.MaxScale > 0 {
		opts.MaxScale = c.Viewport.MaxScale
	}
	if c.Viewport.CenterScale > 0 {
		opts.CenterScale = c.Viewport.CenterScale
	}
	opts.ZoomDuration = time.Duration(c.Viewport.ZoomDuration) * time.Millisecond
	opts.ResetDuration = time.Duration(c.Viewport.ResetDuration) * time.Millisecond
	opts.CenterDuration = time.Duration(c.Viewport.CenterDuration) * time.Millisecond
	return opts
}

// MouseEnabled reports whether mouse support is on. It defaults to true.
func (u UIConfig) MouseEnabled() bool {
	return u.Mouse == nil || *u.Mouse
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

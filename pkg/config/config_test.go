package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Database.Path != "" {
		t.Errorf("expected no default database, got %q", cfg.Database.Path)
	}
	if cfg.Layout.LinkDistance != 150 {
		t.Errorf("expected link_distance 150, got %f", cfg.Layout.LinkDistance)
	}
	if cfg.UI.FPS != 30 {
		t.Errorf("expected fps 30, got %d", cfg.UI.FPS)
	}
	if !cfg.UI.MouseEnabled() {
		t.Error("expected mouse enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := ConfigDir(); got != "/tmp/test-xdg/mindmap" {
		t.Errorf("expected /tmp/test-xdg/mindmap, got %q", got)
	}
	if got := ConfigPath(); got != "/tmp/test-xdg/mindmap/config.yaml" {
		t.Errorf("unexpected config path %q", got)
	}
}

func TestStateDir_XDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/test-state")
	if got := StateDir(); got != "/tmp/test-state/mindmap" {
		t.Errorf("expected /tmp/test-state/mindmap, got %q", got)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	t.Setenv("MM_DB", "")
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Render.Width != 1200 {
		t.Errorf("expected defaults, got width %d", cfg.Render.Width)
	}
}

func TestLoadFrom_ValidYAML(t *testing.T) {
	t.Setenv("MM_DB", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `database:
  path: ~/notes/conversations.db
  recent:
    - /absolute/backup.json
layout:
  link_distance: 90
  charge_strength: -120
  preserve_positions: true
viewport:
  max_scale: 6
  zoom_duration_ms: 0
render:
  tag_dim: 0.3
ui:
  theme: light
  mouse: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "notes/conversations.db"); cfg.Database.Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Database.Path)
	}
	if cfg.Database.Recent[0] != "/absolute/backup.json" {
		t.Errorf("expected absolute path preserved, got %q", cfg.Database.Recent[0])
	}
	if !cfg.Layout.PreservePositions {
		t.Error("expected preserve_positions")
	}
	if cfg.Viewport.MinScale != DefaultConfig().Viewport.MinScale {
		t.Errorf("unset keys should keep defaults, got min_scale %f", cfg.Viewport.MinScale)
	}
	if cfg.UI.Theme != "light" || cfg.UI.MouseEnabled() {
		t.Errorf("ui section not applied: %+v", cfg.UI)
	}
	if cfg.UI.FPS != 30 {
		t.Errorf("expected default fps, got %d", cfg.UI.FPS)
	}

	vp := cfg.ViewportOptions()
	if vp.MaxScale != 6 {
		t.Errorf("expected max scale 6, got %f", vp.MaxScale)
	}
	if vp.ZoomDuration != 0 {
		t.Errorf("expected instant zoom, got %v", vp.ZoomDuration)
	}
	if vp.ResetDuration != time.Duration(DefaultConfig().Viewport.ResetDuration)*time.Millisecond {
		t.Errorf("reset duration changed: %v", vp.ResetDuration)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_OutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "viewport:\n  min_scale: 4\n  max_scale: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for inverted zoom extent")
	}
	if !strings.Contains(err.Error(), "MaxScale") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  path: /from/file.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MM_DB", "/from/env.db")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "/from/env.db" {
		t.Errorf("expected MM_DB to win, got %q", cfg.Database.Path)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	t.Setenv("MM_DB", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/data/conversations.db"
	cfg.Layout.CollideRadius = 40
	cfg.UI.DetailRatio = 0.5

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded.Database.Path != "/data/conversations.db" {
		t.Errorf("expected database path, got %q", loaded.Database.Path)
	}
	if loaded.Layout.CollideRadius != 40 {
		t.Errorf("expected collide radius 40, got %f", loaded.Layout.CollideRadius)
	}
	if loaded.UI.DetailRatio != 0.5 {
		t.Errorf("expected detail ratio 0.5, got %f", loaded.UI.DetailRatio)
	}
}

func TestAddRecent(t *testing.T) {
	var cfg Config
	cfg.AddRecent("/a.db")
	cfg.AddRecent("/b.db")
	cfg.AddRecent("/A.db")
	cfg.AddRecent("")

	got := cfg.Database.Recent
	if len(got) != 2 || got[0] != "/A.db" || got[1] != "/b.db" {
		t.Errorf("unexpected recent list %v", got)
	}

	for i := range maxRecent + 3 {
		cfg.AddRecent(filepath.Join("/db", string(rune('a'+i))))
	}
	if len(cfg.Database.Recent) != maxRecent {
		t.Errorf("expected %d recent entries, got %d", maxRecent, len(cfg.Database.Recent))
	}
}

func TestLayoutOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.LinkDistance = 80
	cfg.Layout.Seed = 7

	opts := cfg.LayoutOptions(800, 600)
	if opts.LinkDistance != 80 || opts.Seed != 7 {
		t.Errorf("layout section not applied: %+v", opts)
	}
	if opts.CenterX != 400 || opts.CenterY != 300 {
		t.Errorf("expected centre (400,300), got (%f,%f)", opts.CenterX, opts.CenterY)
	}

	// zero values leave the stock tuning in place
	var empty Config
	base := layout.DefaultOptions(800, 600)
	tuned := base
	empty.TuneLayout(&tuned)
	if tuned.ChargeStrength != base.ChargeStrength || tuned.CollideRadius != base.CollideRadius {
		t.Errorf("empty config changed tuning: %+v", tuned)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandHome(tt.input); got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

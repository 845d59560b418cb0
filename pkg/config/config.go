// Package config handles loading and saving sv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/sv/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// MaxRecent bounds the recent file list.
const MaxRecent = 10

// GridConfig sizes the sheet cells, in terminal columns and lines.
type GridConfig struct {
	CellWidth      int `yaml:"cell_width,omitempty"`
	CellHeight     int `yaml:"cell_height,omitempty"`
	RowHeaderWidth int `yaml:"row_header_width,omitempty"`
	// Columns overrides the sheet's column count; 0 uses the sheet's.
	Columns int `yaml:"columns,omitempty"`
}

// ScrollConfig tunes drag, fling and smooth scroll behavior.
type ScrollConfig struct {
	FlingThreshold float64       `yaml:"fling_threshold,omitempty"` // cells per second
	Friction       float64       `yaml:"friction,omitempty"`        // decay per second
	MinVelocity    float64       `yaml:"min_velocity,omitempty"`    // cells per second
	SmoothStep     int           `yaml:"smooth_step,omitempty"`     // cells per tick
	TickInterval   time.Duration `yaml:"tick_interval,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme       string `yaml:"theme,omitempty"` // dark, light
	ShowSummary *bool  `yaml:"show_summary,omitempty"`
	Watch       *bool  `yaml:"watch,omitempty"` // reload on file change
}

// ExportConfig controls snapshot export.
type ExportConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // svg, png
}

// RecentFile is a sheet opened before.
type RecentFile struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table,omitempty"`
}

// Config is the top-level configuration for sv.
type Config struct {
	Grid   GridConfig   `yaml:"grid,omitempty"`
	Scroll ScrollConfig `yaml:"scroll,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
	Recent []RecentFile `yaml:"recent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			CellWidth:      12,
			CellHeight:     1,
			RowHeaderWidth: 6,
		},
		Scroll: ScrollConfig{
			FlingThreshold: 40,
			Friction:       4,
			MinVelocity:    4,
			SmoothStep:     1,
			TickInterval:   16 * time.Millisecond,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Export: ExportConfig{
			Format: "svg",
		},
	}
}

// SummaryEnabled reports whether the column summary is shown (default on).
func (c Config) SummaryEnabled() bool {
	return c.UI.ShowSummary == nil || *c.UI.ShowSummary
}

// WatchEnabled reports whether live reload is on (default on).
func (c Config) WatchEnabled() bool {
	return c.UI.Watch == nil || *c.UI.Watch
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.Grid.CellWidth < 1 {
		problems = append(problems, fmt.Sprintf("grid.cell_width %d < 1", c.Grid.CellWidth))
	}
	if c.Grid.CellHeight < 1 {
		problems = append(problems, fmt.Sprintf("grid.cell_height %d < 1", c.Grid.CellHeight))
	}
	if c.Grid.RowHeaderWidth < 1 {
		problems = append(problems, fmt.Sprintf("grid.row_header_width %d < 1", c.Grid.RowHeaderWidth))
	}
	if c.Grid.Columns < 0 {
		problems = append(problems, fmt.Sprintf("grid.columns %d < 0", c.Grid.Columns))
	}
	if c.Scroll.Friction <= 0 {
		problems = append(problems, "scroll.friction must be positive")
	}
	if c.Scroll.TickInterval <= 0 {
		problems = append(problems, "scroll.tick_interval must be positive")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		problems = append(problems, fmt.Sprintf("ui.theme %q is not dark or light", c.UI.Theme))
	}
	if c.Export.Format != "svg" && c.Export.Format != "png" {
		problems = append(problems, fmt.Sprintf("export.format %q is not svg or png", c.Export.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ConfigDir returns the XDG config directory for sv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sv")
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
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Fields missing from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	for i := range cfg.Recent {
		cfg.Recent[i].Path = expandHome(cfg.Recent[i].Path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
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

// AddRecent moves f to the front of the recent list, dropping the oldest
// entries beyond MaxRecent.
func (c *Config) AddRecent(f RecentFile) {
	c.Recent = slices.DeleteFunc(c.Recent, func(r RecentFile) bool { return r == f })
	c.Recent = slices.Insert(c.Recent, 0, f)
	if len(c.Recent) > MaxRecent {
		c.Recent = c.Recent[:MaxRecent]
	}
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

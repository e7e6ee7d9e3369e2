// Package config loads the application settings from a TOML file and builds
// the process logger from them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/chazu/sketchsolid/pkg/contour"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// Config is the full settings tree. Every key is optional in the file;
// missing keys keep their Default value.
type Config struct {
	Sketch  Sketch  `toml:"sketch"`
	Extrude Extrude `toml:"extrude"`
	Store   Store   `toml:"store"`
	Log     Log     `toml:"log"`
}

// Sketch holds the sketch-mode input settings.
type Sketch struct {
	Tolerance          float64 `toml:"tolerance"`
	GridStep           float64 `toml:"grid_step"`
	SnapRadius         float64 `toml:"snap_radius"`
	PlaneSize          float64 `toml:"plane_size"`
	DefaultOrientation string  `toml:"default_orientation"`
}

// Orientation parses DefaultOrientation.
func (s Sketch) Orientation() (plane.Orientation, error) {
	return plane.ParseOrientation(s.DefaultOrientation)
}

// Extrude holds the solid generation settings.
type Extrude struct {
	Depth       float64 `toml:"depth"`
	ArcSegments int     `toml:"arc_segments"`
	MeshCells   int     `toml:"mesh_cells"`
}

// Store locates the sketch library database.
type Store struct {
	Path string `toml:"path"`
}

// Log configures the zap logger. An empty File logs to stderr.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in settings. The tolerance is a little over the
// grid step so that grid-snapped endpoints always connect.
func Default() Config {
	return Config{
		Sketch: Sketch{
			Tolerance:          contour.DefaultTolerance,
			GridStep:           0.5,
			SnapRadius:         1.0,
			PlaneSize:          20,
			DefaultOrientation: "XY",
		},
		Extrude: Extrude{
			Depth:       1.0,
			ArcSegments: 32,
			MeshCells:   200,
		},
		Store: Store{Path: "sketches.db"},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected so that typos do not pass silently.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("config: %s", sme.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if !(c.Sketch.Tolerance > 0) || math.IsInf(c.Sketch.Tolerance, 0) {
		errs = append(errs, fmt.Errorf("sketch.tolerance %v: %w", c.Sketch.Tolerance, contour.ErrInvalidTolerance))
	}
	if c.Sketch.GridStep < 0 {
		errs = append(errs, fmt.Errorf("sketch.grid_step must not be negative, got %v", c.Sketch.GridStep))
	}
	if c.Sketch.SnapRadius < 0 {
		errs = append(errs, fmt.Errorf("sketch.snap_radius must not be negative, got %v", c.Sketch.SnapRadius))
	}
	if !(c.Sketch.PlaneSize > 0) {
		errs = append(errs, fmt.Errorf("sketch.plane_size must be positive, got %v", c.Sketch.PlaneSize))
	}
	if _, err := c.Sketch.Orientation(); err != nil {
		errs = append(errs, fmt.Errorf("sketch.default_orientation: %w", err))
	}
	if !(c.Extrude.Depth > 0) {
		errs = append(errs, fmt.Errorf("extrude.depth must be positive, got %v", c.Extrude.Depth))
	}
	if c.Extrude.ArcSegments < 3 {
		errs = append(errs, fmt.Errorf("extrude.arc_segments must be at least 3, got %d", c.Extrude.ArcSegments))
	}
	if c.Extrude.MeshCells <= 0 {
		errs = append(errs, fmt.Errorf("extrude.mesh_cells must be positive, got %d", c.Extrude.MeshCells))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Encode renders the settings as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Package config loads facet's sampling and meshing settings from YAML,
// with environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/facet/pkg/interval"
	"github.com/chazu/facet/pkg/region"
	"gopkg.in/yaml.v3"
)

// Bounds is the sampled box.
type Bounds struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

// Interval returns the bounds along axis a.
func (b Bounds) Interval(a int) interval.Interval {
	return interval.Interval{Lower: b.Min[a], Upper: b.Max[a]}
}

// Config holds every tunable of the CLI pipeline.
type Config struct {
	Bounds Bounds `json:"bounds" yaml:"bounds"`

	// Resolution is samples per unit length.
	Resolution float64 `json:"resolution" yaml:"resolution"`

	// PowerOfTwo resamples the region to equal power-of-two axes.
	PowerOfTwo bool `json:"power_of_two" yaml:"power_of_two"`

	// Workers bounds sampler concurrency; 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`

	MinCellVoxels int `json:"min_cell_voxels" yaml:"min_cell_voxels"`

	// MeshCells is the marching cubes resolution along the longest axis.
	MeshCells int `json:"mesh_cells" yaml:"mesh_cells"`

	EvalTimeout time.Duration `json:"eval_timeout" yaml:"eval_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bounds: Bounds{
			Min: [3]float64{-2, -2, -2},
			Max: [3]float64{2, 2, 2},
		},
		Resolution:    8,
		PowerOfTwo:    false,
		Workers:       0,
		MinCellVoxels: 64,
		MeshCells:     64,
		EvalTimeout:   5 * time.Second,
		LogLevel:      "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path
// is not empty) and then with FACET_* environment variables. The result
// is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("FACET_RESOLUTION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: FACET_RESOLUTION: %w", err)
		}
		cfg.Resolution = f
	}
	if v := os.Getenv("FACET_WORKERS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FACET_WORKERS: %w", err)
		}
		cfg.Workers = i
	}
	if v := os.Getenv("FACET_EVAL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: FACET_EVAL_TIMEOUT: %w", err)
		}
		cfg.EvalTimeout = d
	}
	if v := os.Getenv("FACET_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	for a, name := range []string{"x", "y", "z"} {
		if !(c.Bounds.Min[a] <= c.Bounds.Max[a]) {
			errs = append(errs, fmt.Errorf("bounds: %s min %g exceeds max %g", name, c.Bounds.Min[a], c.Bounds.Max[a]))
		}
	}
	if !(c.Resolution > 0) {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %g", c.Resolution))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MinCellVoxels < 1 {
		errs = append(errs, fmt.Errorf("min_cell_voxels must be at least 1, got %d", c.MinCellVoxels))
	}
	if c.MeshCells < 1 {
		errs = append(errs, fmt.Errorf("mesh_cells must be at least 1, got %d", c.MeshCells))
	}
	if c.EvalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("eval_timeout must be positive, got %s", c.EvalTimeout))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", c.LogLevel)
}

// Region returns the sample grid described by Bounds and Resolution.
func (c Config) Region() region.Region {
	return region.New(c.Bounds.Interval(0), c.Bounds.Interval(1), c.Bounds.Interval(2), c.Resolution)
}

// Package config loads twirl's defaults from TWIRL_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "twirl"

// Geometry kernels selectable with TWIRL_KERNEL.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

type Config struct {
	Bound         float64       `envconfig:"BOUND" default:"12"`
	Resolution    int           `envconfig:"RESOLUTION" default:"240"`
	Depth         int           `envconfig:"DEPTH" default:"500"`
	LayerHeight   float64       `envconfig:"LAYER_HEIGHT" default:"0.2"`
	ExtrudeHeight float64       `envconfig:"EXTRUDE_HEIGHT" default:"0.21"`
	Stride        int           `envconfig:"STRIDE" default:"1"`
	MeshCells     int           `envconfig:"MESH_CELLS" default:"200"`
	Kernel        string        `envconfig:"KERNEL" default:"sdfx"`
	Workers       int           `envconfig:"WORKERS" default:"0"`
	EvalTimeout   time.Duration `envconfig:"EVAL_TIMEOUT" default:"5s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no render or export can use.
func (c *Config) Validate() error {
	switch {
	case c.Bound <= 0:
		return fmt.Errorf("config: bound must be positive, got %g", c.Bound)
	case c.Resolution <= 0:
		return fmt.Errorf("config: resolution must be positive, got %d", c.Resolution)
	case c.Depth < 1:
		return fmt.Errorf("config: depth must be at least 1, got %d", c.Depth)
	case c.LayerHeight <= 0 || c.ExtrudeHeight <= 0:
		return fmt.Errorf("config: layer and extrude heights must be positive")
	case c.Stride < 1:
		return fmt.Errorf("config: stride must be at least 1, got %d", c.Stride)
	case c.MeshCells < 1:
		return fmt.Errorf("config: mesh cells must be at least 1, got %d", c.MeshCells)
	case c.Workers < 0:
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	case c.Kernel != KernelSdfx && c.Kernel != KernelManifold:
		return fmt.Errorf("config: unknown kernel %q", c.Kernel)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level. Validate has already checked it.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}

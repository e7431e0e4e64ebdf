// Package config loads runtime configuration from an optional YAML
// file, layered over built-in defaults and overridable through
// CORBEL_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written in the
// usual "30s" / "24h" form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config carries every runtime knob.
type Config struct {
	// LogMode selects the zap preset: "production" or "development".
	LogMode string `yaml:"log_mode"`
	// ConfidenceThreshold is the minimum parse confidence below which a
	// constraint triggers a clarification instead of silently applying.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// RunTimeout is the per-run processing budget.
	RunTimeout Duration `yaml:"run_timeout"`
	// RunTTL is how long terminal runs stay retrievable.
	RunTTL Duration `yaml:"run_ttl"`
	// MeshCells is the marching-cubes resolution for mesh export.
	MeshCells int `yaml:"mesh_cells"`
	// ExportDir is where artifact files are written.
	ExportDir string `yaml:"export_dir"`
	// ExportFormats lists the artifact formats to emit per run.
	ExportFormats []string `yaml:"export_formats"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogMode:             "production",
		ConfidenceThreshold: 0.5,
		RunTimeout:          Duration(30 * time.Second),
		RunTTL:              Duration(24 * time.Hour),
		MeshCells:           200,
		ExportDir:           "out",
		ExportFormats:       []string{"step", "stl", "obj"},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped
// when path is empty) and then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	if c.LogMode != "production" && c.LogMode != "development" {
		return fmt.Errorf("log_mode must be production or development, got %q", c.LogMode)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %v", c.ConfidenceThreshold)
	}
	if c.RunTimeout.Std() <= 0 {
		return fmt.Errorf("run_timeout must be positive")
	}
	if c.MeshCells <= 0 {
		return fmt.Errorf("mesh_cells must be positive, got %d", c.MeshCells)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CORBEL_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("CORBEL_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("CORBEL_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RunTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CORBEL_MESH_CELLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MeshCells = n
		}
	}
	if v := os.Getenv("CORBEL_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ConfidenceThreshold = f
		}
	}
}

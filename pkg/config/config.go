// Package config handles loading and managing scenariq configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for scenariq.
type Config struct {
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Output     OutputConfig     `yaml:"output"`
	Storage    StorageConfig    `yaml:"storage"`
}

// EvaluationConfig controls how (option, scenario) pairs are evaluated.
type EvaluationConfig struct {
	Parallelism int `yaml:"parallelism"` // concurrent pairs, 1 = sequential
}

// OutputConfig controls CLI report rendering.
type OutputConfig struct {
	Format string `yaml:"format"` // text, markdown, json
}

// StorageConfig selects where the run service keeps case and result blobs.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, s3, gcs
	LocalPath string `yaml:"local_path"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Evaluation: EvaluationConfig{
			Parallelism: 4,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalPath: filepath.Join(cacheHome(), "scenariq", "blobs"),
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Evaluation.Parallelism < 1 {
		cfg.Evaluation.Parallelism = 1
	}

	return cfg, nil
}

// FindConfigFile looks for .scenariq/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".scenariq", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// ResultsDir returns the local directory where CLI evaluation results are
// kept for a given case path. Uses ~/.cache/scenariq/<case-slug>/ to
// avoid polluting the case directory.
func ResultsDir(casePath string) string {
	return filepath.Join(cacheHome(), "scenariq", caseSlug(casePath), "results")
}

func cacheHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache")
}

// caseSlug creates a filesystem-safe identifier from a case path.
// Uses the last two path components for readability.
func caseSlug(casePath string) string {
	abs, err := filepath.Abs(casePath)
	if err != nil {
		abs = casePath
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wardenscan/warden/internal/taint"
	"github.com/wardenscan/warden/output"
)

// Config is the decoded shape of .warden/config.yaml: pipeline timing and
// mode, LLM provider/tier selection, frame enablement, per-file timeout
// tuning, and the taint confidence model's overridable weights.
type Config struct {
	LLM         LLMConfig               `yaml:"llm"`
	Pipeline    PipelineConfig          `yaml:"pipeline"`
	Frames      FramesConfig            `yaml:"frames"`
	FileTimeout FileTimeoutConfig       `yaml:"file_timeout"`
	Taint       taint.ConfidenceConfig  `yaml:"taint"`
	Analysis    AnalysisConfig          `yaml:"analysis"`
}

// LLMConfig selects providers/models and bounds concurrency for the
// provider-orchestration layer.
type LLMConfig struct {
	Provider         string   `yaml:"provider"`
	SmartModel       string   `yaml:"model"`
	FastModel        string   `yaml:"fast_model"`
	FastProviders    []string `yaml:"fast_providers"`
	BlockedProviders []string `yaml:"blocked_providers"`
	Concurrency      int      `yaml:"concurrency"`
	TimeoutSeconds   int      `yaml:"timeout_seconds"`
}

// PipelineConfig governs the six-phase orchestrator's overall behavior.
type PipelineConfig struct {
	Mode           string `yaml:"mode"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	NonInteractive bool   `yaml:"non_interactive"`
}

// FramesConfig lists which validation frames run and how many may run
// concurrently under the PARALLEL execution strategy.
type FramesConfig struct {
	Enabled       []string `yaml:"enabled"`
	ParallelLimit int      `yaml:"parallel_limit"`
}

// FileTimeoutConfig backs the per-file dynamic timeout formula
// clamp(size_bytes/bytes_per_second, min, max), with a higher floor for
// providers that run on the local host.
type FileTimeoutConfig struct {
	BytesPerSecond int     `yaml:"bytes_per_second"`
	MinSeconds     float64 `yaml:"min_seconds"`
	MaxSeconds     float64 `yaml:"max_seconds"`
	MinLocalSeconds float64 `yaml:"min_local_seconds"`
}

// AnalysisConfig carries per-language or per-frame level overrides, e.g.
// forcing a language into "signal-only" mode instead of full catalog
// matching.
type AnalysisConfig struct {
	LevelOverrides map[string]string `yaml:"level_overrides"`
}

// Default returns the built-in defaults used when .warden/config.yaml is
// absent or partially specified. yaml.Unmarshal only overwrites fields
// present in the document, so decoding into a Default() value gives every
// omitted field its default rather than Go's zero value.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "openai",
			SmartModel:     "gpt-4o",
			FastModel:      "gpt-4o-mini",
			Concurrency:    4,
			TimeoutSeconds: 60,
		},
		Pipeline: PipelineConfig{
			Mode:           "full",
			TimeoutSeconds: 300,
		},
		Frames: FramesConfig{
			ParallelLimit: 3,
		},
		FileTimeout: FileTimeoutConfig{
			BytesPerSecond:  10000,
			MinSeconds:      5,
			MaxSeconds:      300,
			MinLocalSeconds: 60,
		},
		Taint: taint.DefaultConfidenceConfig(),
	}
}

// Load reads <projectRoot>/.warden/config.yaml (if present), applies
// environment variable overrides, validates the taint confidence weights,
// and returns the resulting Config. A missing config file is not an
// error — Default() alone, plus env overrides, is a valid configuration.
// A malformed file falls back to Default() with a logged warning rather
// than failing the scan outright, matching spec's "warn-and-fall-back"
// policy for value-level configuration errors.
func Load(projectRoot string, logger *output.Logger) (Config, error) {
	cfg := Default()

	path := filepath.Join(projectRoot, ".warden", "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no project config; defaults + env apply.
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	default:
		if uerr := yaml.Unmarshal(data, &cfg); uerr != nil {
			if logger != nil {
				logger.Warning("config: %s is malformed (%v), falling back to defaults", path, uerr)
			}
			cfg = Default()
		}
	}

	applyEnvOverrides(&cfg)
	taint.ValidateConfig(&cfg.Taint, logger)

	return cfg, nil
}

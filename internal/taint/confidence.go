package taint

import "github.com/wardenscan/warden/output"

// ConfidenceConfig holds the tunable weights behind every confidence
// value the taint engine produces. Defaults come from spec §4.1;
// overrides live in .warden/config.yaml's `taint:` block and are decoded
// by internal/config, which calls ValidateConfig before handing a
// ConfidenceConfig to this package's analyzers.
type ConfidenceConfig struct {
	SourceCatalog         float64 `yaml:"source_catalog"`
	SourceSignalBase      float64 `yaml:"source_signal_base"`
	SourceSignalPerHint   float64 `yaml:"source_signal_per_hint"`
	SourceSignalCap       float64 `yaml:"source_signal_cap"`
	SinkBase              float64 `yaml:"sink_base"`
	PropagationAssignment float64 `yaml:"propagation_assignment"`
	SanitizerPenalty      float64 `yaml:"sanitizer_penalty"`
	BlockerThreshold      float64 `yaml:"blocker_threshold"`
}

// DefaultConfidenceConfig returns the spec-mandated defaults.
func DefaultConfidenceConfig() ConfidenceConfig {
	return ConfidenceConfig{
		SourceCatalog:         0.9,
		SourceSignalBase:      0.65,
		SourceSignalPerHint:   0.10,
		SourceSignalCap:       0.90,
		SinkBase:              0.60,
		PropagationAssignment: 0.75,
		SanitizerPenalty:      0.3,
		BlockerThreshold:      0.8,
	}
}

// Clamp forces every field into [0.0, 1.0] and returns the names of the
// fields it had to adjust, so the caller can log a single warning line
// per out-of-range override instead of silently accepting bad config.
func (c *ConfidenceConfig) Clamp() []string {
	var adjusted []string
	fields := []struct {
		name string
		val  *float64
	}{
		{"source_catalog", &c.SourceCatalog},
		{"source_signal_base", &c.SourceSignalBase},
		{"source_signal_per_hint", &c.SourceSignalPerHint},
		{"source_signal_cap", &c.SourceSignalCap},
		{"sink_base", &c.SinkBase},
		{"propagation_assignment", &c.PropagationAssignment},
		{"sanitizer_penalty", &c.SanitizerPenalty},
		{"blocker_threshold", &c.BlockerThreshold},
	}
	for _, f := range fields {
		clamped := clamp01(*f.val)
		if clamped != *f.val {
			*f.val = clamped
			adjusted = append(adjusted, f.name)
		}
	}
	return adjusted
}

// ValidateConfig clamps every weight in cfg into [0.0, 1.0] and logs one
// warning line per field that had to be adjusted. internal/config calls
// this after decoding the `taint:` block of .warden/config.yaml, whether
// the block came from YAML or was left at DefaultConfidenceConfig()
// because decoding failed.
func ValidateConfig(cfg *ConfidenceConfig, logger *output.Logger) {
	adjusted := cfg.Clamp()
	if logger == nil || len(adjusted) == 0 {
		return
	}
	for _, field := range adjusted {
		logger.Warning("taint config: %s out of range [0,1], clamped", field)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

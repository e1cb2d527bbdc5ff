package pipeline

import "context"

// hotspotThreshold is the file size (bytes) above which a file is
// flagged as a hotspot worth extra reviewer attention — a cheap proxy
// for the LLM-variant analysis phase's richer complexity scoring.
const hotspotThreshold = 20000

// technicalDebtHoursPerKB approximates remediation cost; a placeholder
// constant standing in for the LLM-backed estimate spec.md's "LLM
// variant if LLM service present" describes without requiring a live
// LLM call in the non-LLM path.
const technicalDebtHoursPerKB = 0.1

// AnalysisPhase produces QualityMetrics: hotspots, quick wins, and a
// technical-debt estimate. Runs when EnableAnalysis is set (default
// true).
type AnalysisPhase struct{}

func (AnalysisPhase) Name() string { return "analysis" }

func (AnalysisPhase) Enabled(cfg Config) bool { return cfg.EnableAnalysis }

func (AnalysisPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	metrics := &QualityMetrics{}

	var totalBytes int
	for _, f := range files {
		totalBytes += len(f.SourceCode)
		if len(f.SourceCode) > hotspotThreshold {
			metrics.Hotspots = append(metrics.Hotspots, f.Path)
		}
		if len(f.SourceCode) == 0 {
			metrics.QuickWins = append(metrics.QuickWins, f.Path+": empty file, safe to remove or populate")
		}
	}

	metrics.TechnicalDebtHours = float64(totalBytes) / 1024 * technicalDebtHoursPerKB
	ctx.QualityMetrics = metrics
	return nil
}

package pipeline

import (
	"context"

	"github.com/wardenscan/warden/internal/frame"
)

// Cleaner proposes a refactoring suggestion for a file. Same
// extension-point treatment as Fortifier.
type Cleaner interface {
	Suggest(goCtx context.Context, f CodeFileInput) (suggestion string, ok bool)
}

// CleaningPhase produces cleaning suggestions and updates
// QualityScoreAfter. Runs when EnableCleaning is set (forced false at
// the basic analysis level).
type CleaningPhase struct {
	Cleaner Cleaner
}

func (CleaningPhase) Name() string { return "cleaning" }

func (CleaningPhase) Enabled(cfg Config) bool { return cfg.EnableCleaning }

func (p CleaningPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	if p.Cleaner == nil {
		return nil
	}

	for _, f := range files {
		suggestion, ok := p.Cleaner.Suggest(goCtx, f)
		if !ok {
			continue
		}
		ctx.CleaningSuggestions = append(ctx.CleaningSuggestions, CleaningSuggestion{
			FilePath:   f.Path,
			Suggestion: suggestion,
		})
	}

	ctx.QualityScoreAfter = calculateQualityScore(ctx.Findings)
	return nil
}

// severityPenalty is how many points each finding of a given severity
// costs off a starting score of 10.0.
var severityPenalty = map[frame.Severity]float64{
	frame.SeverityCritical: 2.0,
	frame.SeverityHigh:     1.0,
	frame.SeverityMedium:   0.5,
	frame.SeverityLow:      0.2,
	frame.SeverityInfo:     0.0,
}

// calculateQualityScore maps a findings list to a 0-10 score,
// penalizing by severity. A pristine file scores 10.0; 5.0 is a
// legitimate mid-range score and must never be treated as
// sentinel-missing by callers.
func calculateQualityScore(findings []frame.Finding) float64 {
	score := 10.0
	for _, f := range findings {
		score -= severityPenalty[f.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

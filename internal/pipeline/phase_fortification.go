package pipeline

import "context"

// Fortifier proposes a fix suggestion for a finding. This is an
// extension point: spec.md §9 notes the fortification contract is
// stubbed in the original source and only needs to expose this output
// shape to reporting, not drive core logic.
type Fortifier interface {
	Suggest(goCtx context.Context, f VerifiableFinding) (suggestion string, ok bool)
}

// FortificationPhase produces fix suggestions for current findings.
// Runs when EnableFortification is set (forced false at the basic
// analysis level).
type FortificationPhase struct {
	Fortifier Fortifier
}

func (FortificationPhase) Name() string { return "fortification" }

func (FortificationPhase) Enabled(cfg Config) bool { return cfg.EnableFortification }

func (p FortificationPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	if p.Fortifier == nil {
		return nil
	}

	for _, f := range ctx.Findings {
		suggestion, ok := p.Fortifier.Suggest(goCtx, VerifiableFinding{
			ID:          f.ID,
			RuleID:      f.RuleID,
			Message:     f.Message,
			CodeSnippet: f.CodeSnippet,
			FilePath:    f.FilePath,
		})
		if !ok {
			continue
		}
		ctx.Fortifications = append(ctx.Fortifications, Fortification{
			FindingID:  f.ID,
			Suggestion: suggestion,
		})
	}
	return nil
}

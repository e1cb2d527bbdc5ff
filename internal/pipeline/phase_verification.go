package pipeline

import "context"

// Verifier filters a frame's findings down to the IDs that survive
// LLM-backed false-positive review. Implementations wrap
// internal/llm's orchestrated client with the memory-manager-style
// cache spec.md describes; nil means "no verifier wired", in which
// case every finding survives unchanged.
type Verifier interface {
	Verify(goCtx context.Context, frameID string, findings []VerifiableFinding) (survivingIDs map[string]bool, err error)
}

// VerifiableFinding is the minimal shape handed to a Verifier — spec's
// "convert to dicts" step, narrowed to what a false-positive check
// actually needs.
type VerifiableFinding struct {
	ID          string
	RuleID      string
	Message     string
	CodeSnippet string
	FilePath    string
}

// VerificationPhase filters false positives via the configured
// Verifier. Runs when EnableIssueValidation is set. Per-frame statuses
// are never flipped here even if a frame's findings drop to zero —
// that flip belongs exclusively to baseline subtraction.
type VerificationPhase struct {
	Verifier Verifier
}

func (VerificationPhase) Name() string { return "verification" }

func (VerificationPhase) Enabled(cfg Config) bool { return cfg.EnableIssueValidation }

func (p VerificationPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	if p.Verifier == nil {
		return nil
	}

	results := ctx.CloneFrameResults()
	for frameID, entry := range results {
		if len(entry.Result.Findings) == 0 {
			continue
		}

		verifiable := make([]VerifiableFinding, len(entry.Result.Findings))
		for i, f := range entry.Result.Findings {
			verifiable[i] = VerifiableFinding{
				ID:          f.ID,
				RuleID:      f.RuleID,
				Message:     f.Message,
				CodeSnippet: f.CodeSnippet,
				FilePath:    f.FilePath,
			}
		}

		surviving, err := p.Verifier.Verify(goCtx, frameID, verifiable)
		if err != nil {
			ctx.Warnings = append(ctx.Warnings, "verification: "+frameID+": "+err.Error())
			continue
		}

		filtered := entry.Result.Findings[:0:0]
		for _, f := range entry.Result.Findings {
			if surviving[f.ID] {
				filtered = append(filtered, f)
			}
		}
		entry.Result.Findings = filtered
		entry.Result.IssuesFound = len(filtered)
		ctx.SetFrameResult(frameID, entry)
	}

	ctx.AggregateFindings()
	return nil
}

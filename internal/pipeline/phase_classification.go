package pipeline

import (
	"context"
	"strings"
)

// ClassificationPhase decides which frames run, and which suppression
// rules apply. It cannot be disabled — spec.md names this a core
// invariant — so Enabled always returns true regardless of cfg.
type ClassificationPhase struct {
	// Classify returns frame-name hints for the given files; nil
	// defaults to languageDefaultFrameHints, a static mapping good
	// enough to drive frame selection without an LLM call.
	Classify func(ctx *Context, files []CodeFileInput) (hints []string, reasoning string)
}

func (ClassificationPhase) Name() string { return "classification" }

func (ClassificationPhase) Enabled(cfg Config) bool { return true }

func (p ClassificationPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	classify := p.Classify
	if classify == nil {
		classify = defaultClassify
	}

	hints, reasoning := classify(ctx, files)

	// SelectedFrames must be a non-nil (possibly empty) slice the
	// moment classification runs, to distinguish "ran, chose nothing"
	// from "did not run" for every later phase's precondition check.
	if hints == nil {
		hints = []string{}
	}
	ctx.SelectedFrames = hints
	ctx.FramesSelected = true
	ctx.ClassificationReasoning = reasoning
	ctx.FramePriorities = defaultFramePriorities()

	return nil
}

func defaultFramePriorities() map[string]int {
	return map[string]int{
		"security":    10,
		"antipattern": 5,
		"resilience":  5,
	}
}

// defaultClassify always selects the security frame — the reference
// implementation frame spec.md describes in depth — plus antipattern
// for any file whose language has a registered taint pack, matching the
// "fall back to running all configured frames" spirit without an LLM.
func defaultClassify(ctx *Context, files []CodeFileInput) ([]string, string) {
	hints := []string{"security"}
	for _, f := range files {
		if strings.TrimSpace(f.Language) != "" {
			hints = append(hints, "antipattern")
			break
		}
	}
	return hints, "default heuristic classification: security always selected"
}

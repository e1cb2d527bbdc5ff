package pipeline

import (
	"context"

	"github.com/wardenscan/warden/internal/cache"
	"github.com/wardenscan/warden/internal/frame"
)

// ValidationPhase runs the selected frames over each file and populates
// ctx.FrameResults, then re-aggregates ctx.Findings. Runs when
// EnableValidation is set; its precondition (selected_frames must be
// non-nil) is checked by the Orchestrator before Execute is called, per
// spec's "phase still runs with whatever state exists" rule.
type ValidationPhase struct {
	Registry *frame.Registry
	Runner   *frame.Runner
	Cache    *cache.Cache
}

func (ValidationPhase) Name() string { return "validation" }

func (ValidationPhase) Enabled(cfg Config) bool { return cfg.EnableValidation }

func (p ValidationPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	if p.Registry == nil {
		return nil
	}

	matched, fellBack := p.Registry.Match(ctx.SelectedFrames)
	if fellBack {
		ctx.Warnings = append(ctx.Warnings, "validation: no selected frame hint matched a loaded frame, running all frames")
	}

	for _, f := range files {
		frameFile := frame.CodeFile{Path: f.Path, Language: f.Language, SourceCode: f.SourceCode}
		applicable := filterApplicable(matched, f.Language)

		results := p.runWithCache(goCtx, applicable, frameFile)
		for frameID, result := range results {
			ctx.SetFrameResult(frameID, FrameResultEntry{Result: result})
		}
	}

	ctx.AggregateFindings()
	return nil
}

func filterApplicable(frames []frame.Frame, language string) []frame.Frame {
	var out []frame.Frame
	for _, f := range frames {
		if f.Descriptor().Applies(language) {
			out = append(out, f)
		}
	}
	return out
}

// runWithCache consults the findings cache before invoking each frame.
// A cache hit short-circuits the frame entirely — no invocation, no LLM
// cost — and is reported as a passed/failed FrameResult reconstructed
// from the cached findings so the caller can't tell the difference from
// a live run.
func (p ValidationPhase) runWithCache(goCtx context.Context, frames []frame.Frame, file frame.CodeFile) map[string]frame.FrameResult {
	if p.Cache == nil {
		return p.Runner.Run(goCtx, frames, file)
	}

	var toRun []frame.Frame
	out := make(map[string]frame.FrameResult)
	contentHash := cache.HashContent(file.SourceCode)

	for _, f := range frames {
		key := cache.Key{FrameID: f.Descriptor().FrameID, AbsolutePath: file.Path, ContentHash: contentHash}
		if findings, hit := p.Cache.Get(key); hit {
			out[f.Descriptor().FrameID] = frame.NewFrameResult(f.Descriptor().FrameID, f.Descriptor().Name, findings, 0, 1)
			continue
		}
		toRun = append(toRun, f)
	}

	if len(toRun) == 0 {
		return out
	}

	live := p.Runner.Run(goCtx, toRun, file)
	for frameID, result := range live {
		out[frameID] = result
		key := cache.Key{FrameID: frameID, AbsolutePath: file.Path, ContentHash: contentHash}
		_ = p.Cache.Set(key, result.Findings)
	}
	return out
}

package pipeline

import "context"

// Phase is one discrete step of the six-phase pipeline. Each phase
// reads whatever prior state it needs from ctx and extends it in place;
// Execute never returns a replacement Context, only an error for
// unrecoverable failures (which the Orchestrator records on
// ctx.Errors rather than aborting the remaining phases).
type Phase interface {
	Name() string
	Enabled(cfg Config) bool
	Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error
}

// CodeFileInput is one file's analysis input, handed to every phase.
type CodeFileInput struct {
	Path       string
	Language   string
	SourceCode []byte
}

// Config is the subset of internal/config.Config (and its analysis-level
// override) a phase needs to decide whether it runs. Declared locally
// rather than importing internal/config directly so internal/pipeline
// doesn't need to know about YAML decoding or env overrides — the
// Orchestrator's caller is responsible for projecting the real config
// into this shape.
type Config struct {
	AnalysisLevel          string // "basic", "standard", "deep"
	UseLLM                 bool
	EnablePreAnalysis      bool
	EnableAnalysis         bool
	EnableValidation       bool
	EnableIssueValidation  bool
	EnableFortification    bool
	EnableCleaning         bool
	ParallelLimit          int
}

// ApplyBasicLevelOverrides forcibly disables LLM-dependent phases when
// AnalysisLevel is "basic", per spec's basic-level override rule. This
// must run before any phase executes.
func (c Config) ApplyBasicLevelOverrides() Config {
	if c.AnalysisLevel != "basic" {
		return c
	}
	c.UseLLM = false
	c.EnableFortification = false
	c.EnableCleaning = false
	c.EnableIssueValidation = false
	return c
}

// preconditionOK implements spec's phase-precondition check for
// Validation, Verification, Fortification, and Cleaning: the context
// must already have SelectedFrames (not "classification did not run")
// and, past Validation, must have FrameResults populated. A failed
// precondition appends a warning but the phase still runs — this
// function only decides whether to warn, the caller always executes
// the phase regardless of its result.
func preconditionOK(ctx *Context, requireFrameResults bool) (ok bool, reason string) {
	if !ctx.FramesSelected {
		return false, "selected_frames is unset: classification did not run"
	}
	if requireFrameResults && ctx.FrameResults == nil {
		return false, "frame_results is unset"
	}
	return true, ""
}

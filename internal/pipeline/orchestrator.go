package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenscan/warden/internal/baseline"
	"github.com/wardenscan/warden/internal/frame"
	"github.com/wardenscan/warden/output"
)

// DefaultDeadline is the overall pipeline deadline spec.md mandates
// (config `timeout`).
const DefaultDeadline = 300 * time.Second

// Orchestrator wires the eight phases together in fixed order, enforces
// precondition gates and the overall deadline, and drives post-
// processing once the phase loop finishes.
type Orchestrator struct {
	Phases   []Phase
	Deadline time.Duration
	Logger   *output.Logger
}

// NewOrchestrator builds an Orchestrator with the phases in spec's fixed
// order. Callers that need to wire Verifier/Fortifier/Cleaner/Registry
// dependencies construct the phase values themselves and pass them
// through phases.
func NewOrchestrator(phases []Phase, logger *output.Logger) *Orchestrator {
	return &Orchestrator{Phases: phases, Deadline: DefaultDeadline, Logger: logger}
}

// Run executes every configured phase over files against ctx, in order,
// honoring cfg's enable gates (after basic-level overrides) and an
// overall deadline. Phase-level errors are recorded on ctx.Errors; the
// next phase still runs if its precondition passes — the only
// unconditionally fatal event is deadline expiry.
func (o *Orchestrator) Run(goCtx context.Context, ctx *Context, files []CodeFileInput, cfg Config) ValidationPipeline {
	cfg = cfg.ApplyBasicLevelOverrides()

	pipelineRecord := ValidationPipeline{
		ID:        ctx.PipelineID,
		Status:    StatusRunning,
		StartedAt: ctx.StartedAt,
	}

	deadline := o.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	deadlineCtx, cancel := context.WithTimeout(goCtx, deadline)
	defer cancel()

	for _, phase := range o.Phases {
		if !phase.Enabled(cfg) {
			continue
		}

		if deadlineCtx.Err() != nil {
			ctx.Errors = append(ctx.Errors, fmt.Sprintf("pipeline deadline exceeded before phase %s ran", phase.Name()))
			pipelineRecord.Status = StatusFailed
			break
		}

		o.checkPrecondition(ctx, phase)

		if err := phase.Execute(deadlineCtx, ctx, files); err != nil {
			ctx.Errors = append(ctx.Errors, fmt.Sprintf("phase %s: %v", phase.Name(), err))
			if o.Logger != nil {
				o.Logger.Warning("pipeline: phase %s failed: %v", phase.Name(), err)
			}
		}
	}

	if deadlineCtx.Err() != nil {
		ctx.Errors = append(ctx.Errors, "pipeline deadline exceeded")
		pipelineRecord.Status = StatusFailed
	}

	pipelineRecord.CompletedAt = time.Now()
	return pipelineRecord
}

// checkPrecondition implements spec's precondition check ahead of
// Validation, Verification, Fortification, and Cleaning: it only
// records a warning, never skips the phase.
func (o *Orchestrator) checkPrecondition(ctx *Context, phase Phase) {
	switch phase.Name() {
	case "validation", "verification", "fortification", "cleaning":
		requireResults := phase.Name() != "validation"
		if ok, reason := preconditionOK(ctx, requireResults); !ok {
			ctx.Warnings = append(ctx.Warnings, fmt.Sprintf("precondition failed before %s: %s", phase.Name(), reason))
		}
	}
}

// PostProcess runs baseline subtraction and reconciles final pipeline
// state. LLM-based false-positive verification already happened inside
// VerificationPhase during the phase loop; this step is the part of
// spec's post-processor that must run after every phase, unconditionally.
func (o *Orchestrator) PostProcess(ctx *Context, record ValidationPipeline) ValidationPipeline {
	b := baseline.Load(ctx.ProjectRoot, o.Logger)
	ctx.FrameResults = applyBaselineSubtraction(b, ctx)
	ctx.AggregateFindings()

	return o.reconcile(ctx, record)
}

func applyBaselineSubtraction(b baseline.Baseline, ctx *Context) map[string]FrameResultEntry {
	results := ctx.CloneFrameResults()

	bareResults := make(map[string]frame.FrameResult, len(results))
	for id, entry := range results {
		bareResults[id] = entry.Result
	}

	subtracted := b.Subtract(ctx.ProjectRoot, bareResults)

	out := make(map[string]FrameResultEntry, len(results))
	for id, entry := range results {
		entry.Result = subtracted[id]
		out[id] = entry
	}
	return out
}

// reconcile is the state-consistency reconciler (spec.md §4.10): it
// recomputes frames_passed/frames_failed, derives the final pipeline
// status from frame results, sets CompletedAt, and appends a sentinel
// error if status is FAILED but no error was ever recorded.
func (o *Orchestrator) reconcile(ctx *Context, record ValidationPipeline) ValidationPipeline {
	results := ctx.CloneFrameResults()

	record.FramesExecuted = len(results)
	record.FramesPassed = 0
	record.FramesFailed = 0

	hasBlockerFailure := false
	hasFailure := false
	for _, entry := range results {
		switch entry.Result.Status {
		case frame.StatusPassed, frame.StatusWarning, frame.StatusSkipped:
			record.FramesPassed++
		default:
			record.FramesFailed++
			hasFailure = true
			if entry.Result.IsBlocker {
				hasBlockerFailure = true
			}
		}
	}

	if record.Status != StatusFailed {
		switch {
		case hasBlockerFailure:
			record.Status = StatusFailed
		case hasFailure:
			record.Status = StatusCompletedWithFailures
		default:
			record.Status = StatusCompleted
		}
	}

	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}

	if record.Status == StatusFailed && len(ctx.Errors) == 0 {
		ctx.Errors = append(ctx.Errors, "pipeline failed with no specific error recorded")
	}

	return record
}

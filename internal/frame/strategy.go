package frame

import (
	"context"
	"sync"
)

// Strategy selects how the frame runner schedules frames over a file.
type Strategy string

const (
	// StrategySequential runs one frame at a time, in priority order.
	StrategySequential Strategy = "SEQUENTIAL"
	// StrategyParallel runs up to Runner.ParallelLimit frames concurrently
	// over one bounded worker set; a panicking or erroring frame never
	// aborts its peers.
	StrategyParallel Strategy = "PARALLEL"
	// StrategyFailFast runs frames sequentially in priority order and
	// stops before running any further frame once one has produced a
	// finding with IsBlocker=true and SeverityCritical.
	StrategyFailFast Strategy = "FAIL_FAST"
)

// DefaultParallelLimit is the spec-mandated default bound on concurrent
// frames under the PARALLEL strategy.
const DefaultParallelLimit = 3

// RuleGate declares the pre/post custom-rule hooks a frame may carry.
// Pre rules run before the frame; if any produces a blocker violation
// and OnFail is "stop", the frame is skipped entirely. Post rules run
// after the frame and are logged but never retroactively change its
// result.
type RuleGate struct {
	PreRules  []Rule
	PostRules []Rule
	OnFail    string // "stop" or "continue"
}

// Rule is a narrow precondition or postcondition check attached to a
// frame via RuleGate, distinct from a Check (which produces Findings
// inside a frame's own execution).
type Rule interface {
	Name() string
	Evaluate(file CodeFile) (violated bool, isBlocker bool)
}

// Runner drives a set of frames over one file according to a Strategy.
type Runner struct {
	Strategy      Strategy
	ParallelLimit int
	Gates         map[string]RuleGate // keyed by frame ID
}

// NewRunner builds a Runner with spec defaults: SEQUENTIAL, parallel
// limit 3.
func NewRunner() *Runner {
	return &Runner{
		Strategy:      StrategySequential,
		ParallelLimit: DefaultParallelLimit,
		Gates:         make(map[string]RuleGate),
	}
}

// frameOutcome pairs a frame's result with its identity for result
// aggregation, since PARALLEL completion order is not guaranteed.
type frameOutcome struct {
	frameID string
	result  FrameResult
}

// Run executes frames over file according to r.Strategy and returns one
// FrameResult per frame, keyed by frame ID. A frame skipped by its pre
// rule gate is omitted from the map entirely (spec: "the frame is
// skipped (not executed) and returns None").
func (r *Runner) Run(ctx context.Context, frames []Frame, file CodeFile) map[string]FrameResult {
	if r.ParallelLimit <= 0 {
		r.ParallelLimit = DefaultParallelLimit
	}

	switch r.Strategy {
	case StrategyParallel:
		return r.runParallel(ctx, frames, file)
	case StrategyFailFast:
		return r.runFailFast(ctx, frames, file)
	default:
		return r.runSequential(ctx, frames, file)
	}
}

// runFailFast runs frames one at a time in the given order and stops
// before running any frame still queued once a prior one has produced a
// critical, blocking finding.
func (r *Runner) runFailFast(ctx context.Context, frames []Frame, file CodeFile) map[string]FrameResult {
	out := make(map[string]FrameResult, len(frames))
	for _, f := range frames {
		result, ok := r.runOne(ctx, f, file)
		if !ok {
			continue
		}
		out[f.Descriptor().FrameID] = result
		if hasCriticalBlocker(result.Findings) {
			break
		}
	}
	return out
}

// hasCriticalBlocker reports whether any finding is both a blocker and
// critical severity, the FAIL_FAST stop condition.
func hasCriticalBlocker(findings []Finding) bool {
	for _, f := range findings {
		if f.IsBlocker && f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func (r *Runner) runSequential(ctx context.Context, frames []Frame, file CodeFile) map[string]FrameResult {
	out := make(map[string]FrameResult, len(frames))
	for _, f := range frames {
		if result, ok := r.runOne(ctx, f, file); ok {
			out[f.Descriptor().FrameID] = result
		}
	}
	return out
}

func (r *Runner) runParallel(ctx context.Context, frames []Frame, file CodeFile) map[string]FrameResult {
	jobs := make(chan Frame, len(frames))
	for _, f := range frames {
		jobs <- f
	}
	close(jobs)

	outcomes := make(chan frameOutcome, len(frames))
	var wg sync.WaitGroup
	for i := 0; i < r.ParallelLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if result, ok := r.runOne(ctx, f, file); ok {
					outcomes <- frameOutcome{frameID: f.Descriptor().FrameID, result: result}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	out := make(map[string]FrameResult)
	for o := range outcomes {
		out[o.frameID] = o.result
	}
	return out
}

// runOne applies the pre/post rule gate around a single frame execution,
// recovering panics into a FrameResult{Status: StatusError} so one
// broken frame never disrupts the runner.
func (r *Runner) runOne(ctx context.Context, f Frame, file CodeFile) (FrameResult, bool) {
	descriptor := f.Descriptor()
	gate := r.Gates[descriptor.FrameID]

	preBlocked := false
	for _, rule := range gate.PreRules {
		violated, isBlocker := rule.Evaluate(file)
		if violated && isBlocker {
			preBlocked = true
		}
	}
	if preBlocked && gate.OnFail == "stop" {
		return FrameResult{}, false
	}

	result := r.execute(ctx, f, file)

	for _, rule := range gate.PostRules {
		// Post violations are logged by the caller via metadata; they
		// never retroactively flip result.Status, per spec.
		if violated, _ := rule.Evaluate(file); violated {
			if result.Metadata == nil {
				result.Metadata = make(map[string]any)
			}
			result.Metadata["post_violation:"+rule.Name()] = true
		}
	}

	return result, true
}

func (r *Runner) execute(ctx context.Context, f Frame, file CodeFile) (result FrameResult) {
	descriptor := f.Descriptor()
	defer func() {
		if rec := recover(); rec != nil {
			result = FrameResult{
				FrameID:   descriptor.FrameID,
				FrameName: descriptor.Name,
				Status:    StatusError,
				Metadata:  map[string]any{"panic": rec},
			}
		}
	}()

	fr, err := f.Execute(ctx, file)
	if err != nil {
		return FrameResult{
			FrameID:   descriptor.FrameID,
			FrameName: descriptor.Name,
			Status:    StatusError,
			Metadata:  map[string]any{"error": err.Error()},
		}
	}
	return fr
}

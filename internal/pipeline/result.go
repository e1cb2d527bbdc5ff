package pipeline

import (
	"time"

	"github.com/wardenscan/warden/internal/frame"
)

// Result is the immutable result DTO the result builder produces from a
// finished Context: everything a report renderer needs, with no
// remaining reference back into the mutable Context.
type Result struct {
	ScanID             string
	Status             Status
	StartedAt          time.Time
	CompletedAt        time.Time
	Findings           []frame.Finding
	SeverityCounts     map[frame.Severity]int
	ManualReviewCount  int
	QualityScore       float64
	FrameResults       []frame.FrameResult
	TotalTokens        int
	PromptTokens       int
	CompletionTokens   int
	RequestCount       int
	Errors             []string
	Warnings           []string
	ExecutionStrategy  string
	Advisories         []string
	Artifacts          []string
}

// BuildResult produces the final Result DTO from ctx and its
// ValidationPipeline record, applying the quality-score rule: if
// QualityScoreBefore is present and non-zero, it's the base for
// calculateQualityScore's adjustment; otherwise the score is derived
// from linter-style metrics alone. A score of exactly 0 is only ever
// sentinel-missing when QualityScoreBefore was never set at all — once
// set, 0 and 5.0 are both legitimate values.
func BuildResult(ctx *Context, record ValidationPipeline, executionStrategy string) Result {
	severityCounts := make(map[frame.Severity]int)
	manualReview := 0
	for _, f := range ctx.Findings {
		severityCounts[f.Severity]++
		if f.VerificationMetadata.ReviewRequired {
			manualReview++
		}
	}

	var frameResults []frame.FrameResult
	for _, entry := range ctx.CloneFrameResults() {
		frameResults = append(frameResults, entry.Result)
	}

	score := deriveQualityScore(ctx)

	return Result{
		ScanID:            ctx.PipelineID,
		Status:            record.Status,
		StartedAt:         record.StartedAt,
		CompletedAt:       record.CompletedAt,
		Findings:          ctx.Findings,
		SeverityCounts:    severityCounts,
		ManualReviewCount: manualReview,
		QualityScore:      score,
		FrameResults:      frameResults,
		TotalTokens:       ctx.TotalTokens,
		PromptTokens:      ctx.PromptTokens,
		CompletionTokens:  ctx.CompletionTokens,
		RequestCount:      ctx.RequestCount,
		Errors:            ctx.Errors,
		Warnings:          ctx.Warnings,
		ExecutionStrategy: executionStrategy,
	}
}

func deriveQualityScore(ctx *Context) float64 {
	if ctx.QualityScoreBefore != 0 {
		return applyFindingsPenalty(ctx.QualityScoreBefore, ctx.Findings)
	}
	// No pre-scan baseline score: derive entirely from current findings,
	// the same formula used as the penalty step above but against a
	// fresh 10.0 base instead of a caller-supplied one.
	return calculateQualityScore(ctx.Findings)
}

// applyFindingsPenalty subtracts each finding's severity penalty from
// base, floored at zero. Shares severityPenalty with
// calculateQualityScore so a pre-scan baseline score and a from-scratch
// score degrade by the same rule.
func applyFindingsPenalty(base float64, findings []frame.Finding) float64 {
	score := base
	for _, f := range findings {
		score -= severityPenalty[f.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

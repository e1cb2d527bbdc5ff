// Package pipeline implements the six-phase analysis state machine:
// pre-analysis, triage, analysis, classification, validation,
// verification, fortification, and cleaning, wired together by an
// Orchestrator that owns a single PipelineContext per scan, enforces
// phase-precondition gates and an overall deadline, and hands the
// finished context to the post-processor (LLM verification, baseline
// subtraction, state-consistency reconciliation) and result builder.
package pipeline

package frame

import "time"

// Severity is a Finding's priority level, ordered low to critical for
// comparisons.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// rank gives Severity a total order for sorting and "any X or above"
// checks, e.g. the frame-status rule (any critical -> failed).
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is the same severity as or more severe than other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// DataFlowStep is one hop of a taint-flow's source-to-sink path, carried
// in a Finding's MachineContext for evidence-backed findings.
type DataFlowStep struct {
	Description string
	File        string
	Line        uint32
}

// MachineContext is the taint-flow evidence a Finding carries when it
// was promoted from a TaintPath (spec's "Taint-path promotion" rule) or
// produced by a data-flow-aware check.
type MachineContext struct {
	Source       string
	Sink         string
	DataFlowPath []DataFlowStep
}

// VerificationMetadata records the outcome of the fortification/
// verification phase's LLM-assisted false-positive check on this
// specific Finding.
type VerificationMetadata struct {
	Verified       bool
	ReviewRequired bool
	Reasoning      string
	Provider       string
}

// Finding is the unit of output: produced by a check/frame, immutable
// once the verification phase has run over it. ID must survive
// serialization — callers compute it once at creation, never
// regenerate it from mutable fields.
type Finding struct {
	ID                   string
	Severity             Severity
	Message              string
	Location             string // "path:line[:col]"
	Detail               string
	CodeSnippet          string
	RuleID               string
	FilePath             string
	IsBlocker            bool
	VerificationMetadata VerificationMetadata
	MachineContext       *MachineContext
}

// IsCountedBlocker reports whether this Finding counts toward pipeline
// failure. A Finding under review is reported but never a blocker, even
// if IsBlocker was set when it was created — spec's
// verification_metadata.review_required invariant.
func (f Finding) IsCountedBlocker() bool {
	return f.IsBlocker && !f.VerificationMetadata.ReviewRequired
}

// Status is a FrameResult's verdict for one file.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// FrameResult is one frame's verdict on one file.
type FrameResult struct {
	FrameID     string
	FrameName   string
	Status      Status
	Duration    time.Duration
	IssuesFound int
	IsBlocker   bool
	Findings    []Finding
	Metadata    map[string]any
}

// DeriveStatus applies spec's frame-status rule: failed if any finding
// is an explicit blocker or critical; warning if any high; passed if
// only medium/low/none; skipped if zero files were scanned (callers
// pass fileCount separately since an empty Findings slice alone can't
// distinguish "ran clean" from "never ran").
func DeriveStatus(findings []Finding, fileCount int) Status {
	if fileCount == 0 {
		return StatusSkipped
	}
	hasHigh := false
	for _, f := range findings {
		if f.IsCountedBlocker() || f.Severity == SeverityCritical {
			return StatusFailed
		}
		if f.Severity == SeverityHigh {
			hasHigh = true
		}
	}
	if hasHigh {
		return StatusWarning
	}
	return StatusPassed
}

// NewFrameResult builds a FrameResult with IssuesFound and Status
// derived from findings, satisfying the FrameResult.issues_found ==
// len(findings) invariant by construction.
func NewFrameResult(frameID, frameName string, findings []Finding, duration time.Duration, fileCount int) FrameResult {
	status := DeriveStatus(findings, fileCount)
	blocker := false
	for _, f := range findings {
		if f.IsCountedBlocker() {
			blocker = true
			break
		}
	}
	return FrameResult{
		FrameID:     frameID,
		FrameName:   frameName,
		Status:      status,
		Duration:    duration,
		IssuesFound: len(findings),
		IsBlocker:   blocker,
		Findings:    findings,
		Metadata:    make(map[string]any),
	}
}

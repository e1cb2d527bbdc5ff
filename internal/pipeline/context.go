package pipeline

import (
	"sync"
	"time"

	"github.com/wardenscan/warden/internal/frame"
)

// FrameResultEntry is one frame's full validation record:
// context.frame_results[frame_id] per spec.md §4.6 — the frame's
// FrameResult plus the pre/post rule-gate violations observed around
// its execution.
type FrameResultEntry struct {
	Result         frame.FrameResult
	PreViolations  []string
	PostViolations []string
}

// ProjectIntelligence is pre-analysis's structural summary of the
// project: entry points inferred from filenames and route/auth
// decorators, auth patterns, input sources, and critical sinks. Used as
// context by later phases (classification, the security frame's AST
// step) rather than reported directly.
type ProjectIntelligence struct {
	EntryPoints   []string
	AuthPatterns  []string
	InputSources  []string
	CriticalSinks []string
}

// FileContext is per-file metadata accumulated across phases: pre-
// analysis's type inference, triage's lane label, and whatever
// classification attaches.
type FileContext struct {
	Path         string
	Language     string
	TriageLane   string
	TypeSummary  map[string]string
}

// QualityMetrics is analysis phase output: hotspots, quick wins, and
// technical debt estimate, consumed by the result builder's quality
// score calculation.
type QualityMetrics struct {
	Hotspots           []string
	QuickWins          []string
	TechnicalDebtHours float64
}

// Fortification is one fortification-phase suggestion: spec.md §9
// leaves this phase's exact contract unspecified beyond "same output
// shape, consumed by reporting, not core logic" — this is that shape.
type Fortification struct {
	FindingID   string
	Suggestion  string
	AppliedFix  string
	Applied     bool
}

// CleaningSuggestion is one cleaning-phase suggestion, same
// extension-point treatment as Fortification.
type CleaningSuggestion struct {
	FilePath     string
	Suggestion   string
	Refactoring  string
}

// Context is PipelineContext: the shared mutable state threaded through
// every phase. Created at scan start, extended in place by each phase,
// owned by the Orchestrator, released when the result DTO is built. A
// Context is accessed from one phase at a time; frame-parallelism
// inside the Validation phase must scope writes to FrameResults[frameID]
// via resultsMu, which has no overlap across frames.
type Context struct {
	PipelineID  string
	StartedAt   time.Time
	FilePath    string
	ProjectRoot string
	Language    string
	SourceCode  []byte

	ASTCache            map[string]any
	ProjectIntelligence *ProjectIntelligence
	FileContexts        map[string]*FileContext

	Findings []frame.Finding

	resultsMu    sync.Mutex
	FrameResults map[string]FrameResultEntry

	// SelectedFrames distinguishes nil ("classification did not run", a
	// precondition failure) from an empty-but-non-nil slice
	// ("classification ran and chose nothing", valid and must run zero
	// frames cleanly). Callers must preserve this distinction explicitly
	// rather than relying on Go's len(nil)==0 collapsing the two.
	SelectedFrames    []string
	FramesSelected    bool
	SuppressionRules  []string
	FramePriorities   map[string]int
	ClassificationReasoning string

	QualityMetrics      *QualityMetrics
	QualityScoreBefore  float64
	QualityScoreAfter   float64

	Fortifications      []Fortification
	CleaningSuggestions []CleaningSuggestion

	Errors   []string
	Warnings []string

	TotalTokens      int
	PromptTokens     int
	CompletionTokens int
	RequestCount     int
}

// NewContext builds a fresh Context for one file scan.
func NewContext(pipelineID, filePath, projectRoot, language string, sourceCode []byte) *Context {
	return &Context{
		PipelineID:   pipelineID,
		StartedAt:    time.Now(),
		FilePath:     filePath,
		ProjectRoot:  projectRoot,
		Language:     language,
		SourceCode:   sourceCode,
		ASTCache:     make(map[string]any),
		FileContexts: make(map[string]*FileContext),
		FrameResults: make(map[string]FrameResultEntry),
	}
}

// SetFrameResult writes one frame's result under its own key,
// synchronized so concurrent frame execution under the PARALLEL
// strategy never races on the shared map.
func (c *Context) SetFrameResult(frameID string, entry FrameResultEntry) {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	c.FrameResults[frameID] = entry
}

// CloneFrameResults returns a snapshot of FrameResults safe to range
// over without holding the context's lock.
func (c *Context) CloneFrameResults() map[string]FrameResultEntry {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	out := make(map[string]FrameResultEntry, len(c.FrameResults))
	for k, v := range c.FrameResults {
		out[k] = v
	}
	return out
}

// AggregateFindings recomputes Findings as the union of every frame
// result's findings, per the invariant that context.findings is derived
// state, not independently mutated.
func (c *Context) AggregateFindings() {
	results := c.CloneFrameResults()
	var all []frame.Finding
	for _, entry := range results {
		all = append(all, entry.Result.Findings...)
	}
	frame.SortFindings(all)
	c.Findings = all
}

// Status is ValidationPipeline's final state.
type Status string

const (
	StatusRunning                Status = "running"
	StatusCompleted              Status = "completed"
	StatusCompletedWithFailures  Status = "completed_with_failures"
	StatusFailed                 Status = "failed"
)

// ValidationPipeline is the tracking record for one scan.
type ValidationPipeline struct {
	ID            string
	Status        Status
	StartedAt     time.Time
	CompletedAt   time.Time
	FramesExecuted int
	FramesPassed   int
	FramesFailed   int
}

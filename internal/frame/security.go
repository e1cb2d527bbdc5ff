package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wardenscan/warden/internal/llm"
	"github.com/wardenscan/warden/internal/taint"
)

// SemanticAnalyzer is the LSP-backed caller/callee lookup the security
// frame consults for best-effort data-flow context (step 4). A nil
// Analyzer on SecurityFrame skips this step entirely rather than erroring
// — spec's "best-effort" framing for this step.
type SemanticAnalyzer interface {
	Callers(ctx context.Context, path string, line uint32) ([]CallSite, error)
	Callees(ctx context.Context, path string, line uint32) ([]CallSite, error)
}

// CallSite is one caller or callee returned by a SemanticAnalyzer.
type CallSite struct {
	Name     string
	Location string
}

// SemanticSearcher is the project-wide semantic index the security frame
// consults for cross-file context (step 5). A nil Searcher skips this
// step.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SemanticChunk, error)
}

// SemanticChunk is one retrieved chunk of related source from another
// file in the project.
type SemanticChunk struct {
	FilePath string
	Content  string
}

// SecurityFrame is the reference validation frame: pattern checks, AST
// signal extraction, taint-path collection, best-effort LSP data flow and
// semantic-search context, LLM verification, and taint-path promotion —
// the seven-step pipeline from
// original_source/.../security/security_frame.py, rebuilt against this
// module's Frame/CheckRegistry/taint contracts instead of that file's
// asyncio/Tree-sitter/LSP stack.
type SecurityFrame struct {
	Checks     *CheckRegistry
	Catalog    *taint.TaintCatalog
	Confidence taint.ConfidenceConfig

	// PythonTaintPaths supplies pre-computed taint paths for a Python
	// file, since Python taint analysis runs inter-procedurally over the
	// whole call graph (see taint.PathsFromSummary) and cannot be derived
	// from a single CodeFile the way the other four languages can. Nil
	// means no paths are available (e.g. the call graph build failed or
	// this is not a Python scan).
	PythonTaintPaths func(path string) []taint.TaintPath

	Analyzer SemanticAnalyzer
	Searcher SemanticSearcher
	LLM      llm.Client
}

// NewSecurityFrame builds a SecurityFrame with the four built-in pattern
// checks registered and default confidence weights, ready for optional
// Analyzer/Searcher/LLM wiring by the caller.
func NewSecurityFrame(catalog *taint.TaintCatalog) *SecurityFrame {
	registry := NewCheckRegistry()
	RegisterBuiltinChecks(registry)
	return &SecurityFrame{
		Checks:     registry,
		Catalog:    catalog,
		Confidence: taint.DefaultConfidenceConfig(),
	}
}

func (f *SecurityFrame) Descriptor() Descriptor {
	return Descriptor{
		FrameID:     "security",
		Name:        "Security Analysis",
		Description: "Detects SQL injection, XSS, secrets, and other security vulnerabilities",
		Category:    "global",
		Priority:    100,
		Scope:       ScopeFileLevel,
		IsBlocker:   true,
		Version:     "1.0.0",
		Author:      "warden",
		// Applicability left empty: applies to all languages.
	}
}

// astSignals are structural hints extracted from a tree-walk of the
// file, not findings themselves — they exist only to enrich the LLM
// prompt in step 6, per spec.md §4.5 step 2.
type astSignals struct {
	DangerousCalls       []string
	StringConcatenations []string
	InputSources         []string
	SQLQueries           []string
}

var (
	dangerousCallRe = regexp.MustCompile(`(?i)\b(eval|exec|compile|subprocess|os\.system|popen|spawn|execfile)\s*\(`)
	sqlCallRe       = regexp.MustCompile(`(?i)\b(execute|executemany|raw|query|cursor)\s*\(`)
	inputSourceRe   = regexp.MustCompile(`(?i)\b(request\.\w+|input\(|sys\.argv|stdin|getenv|\.form\[|\.params\[)`)
	stringConcatRe  = regexp.MustCompile(`["'][^"']*["']\s*\+|\+\s*["'][^"']*["']`)
)

// extractASTSignals is a line-oriented stand-in for the teacher's
// Tree-sitter AST walk: the same four signal categories, found by regex
// over source text rather than a parsed tree, consistent with how this
// module treats the four non-Python languages throughout (see
// internal/taint.RegexAnalyzer).
func extractASTSignals(source string) astSignals {
	var sig astSignals
	for _, line := range strings.Split(source, "\n") {
		if dangerousCallRe.MatchString(line) {
			sig.DangerousCalls = append(sig.DangerousCalls, strings.TrimSpace(line))
		}
		if sqlCallRe.MatchString(line) {
			sig.SQLQueries = append(sig.SQLQueries, strings.TrimSpace(line))
		}
		if inputSourceRe.MatchString(line) {
			sig.InputSources = append(sig.InputSources, strings.TrimSpace(line))
		}
		if stringConcatRe.MatchString(line) {
			sig.StringConcatenations = append(sig.StringConcatenations, strings.TrimSpace(line))
		}
	}
	return sig
}

func formatASTSignals(sig astSignals) string {
	var b strings.Builder
	writeTop5 := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(title)
		b.WriteString(":\n")
		for i, item := range items {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	writeTop5("[Dangerous Function Calls]", sig.DangerousCalls)
	writeTop5("[SQL Query Callsites]", sig.SQLQueries)
	writeTop5("[Input Sources]", sig.InputSources)
	return b.String()
}

// dataFlowContext is step 4's best-effort LSP output: who calls into a
// finding's line (blast radius) and who it calls out to (data sources),
// with tainted-path detection layered on the data sources by name
// heuristic, per spec.md §4.5 step 4.
type dataFlowContext struct {
	BlastRadius  []string
	DataSources  []string
	TaintedPaths []string
}

var taintedSourceHints = []string{"request", "input", "param", "query", "body", "form", "user", "args", "data", "payload"}

func (f *SecurityFrame) analyzeDataFlow(ctx context.Context, file CodeFile, findings []Finding) dataFlowContext {
	var out dataFlowContext
	if f.Analyzer == nil {
		return out
	}
	for _, finding := range findings {
		line := lineFromLocation(finding.Location)
		if line == 0 {
			continue
		}
		if callers, err := f.Analyzer.Callers(ctx, file.Path, line); err == nil {
			for i, c := range callers {
				if i >= 3 {
					break
				}
				out.BlastRadius = append(out.BlastRadius, fmt.Sprintf("%s in %s", c.Name, c.Location))
			}
		}
		if callees, err := f.Analyzer.Callees(ctx, file.Path, line); err == nil {
			for i, c := range callees {
				if i >= 3 {
					break
				}
				out.DataSources = append(out.DataSources, fmt.Sprintf("%s from %s", c.Name, c.Location))
				if containsAnyHint(strings.ToLower(c.Name), taintedSourceHints) {
					out.TaintedPaths = append(out.TaintedPaths, fmt.Sprintf("%s -> %s:%d", c.Name, file.Path, line))
				}
			}
		}
	}
	return out
}

func containsAnyHint(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func lineFromLocation(location string) uint32 {
	parts := strings.Split(location, ":")
	if len(parts) < 2 {
		return 0
	}
	var line uint32
	_, err := fmt.Sscanf(parts[1], "%d", &line)
	if err != nil {
		return 0
	}
	return line
}

func formatDataFlow(d dataFlowContext) string {
	var b strings.Builder
	if len(d.TaintedPaths) > 0 {
		b.WriteString("[Tainted Data Paths]:\n")
		for _, p := range d.TaintedPaths {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if len(d.BlastRadius) > 0 {
		b.WriteString("[Blast Radius]:\n")
		for _, p := range d.BlastRadius {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if len(d.DataSources) > 0 {
		b.WriteString("[Data Sources]:\n")
		for _, p := range d.DataSources {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	return b.String()
}

// llmSecurityFinding is one entry of the LLM verification step's fixed
// JSON response schema.
type llmSecurityFinding struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	LineNumber int    `json:"line_number"`
	Detail     string `json:"detail"`
}

type llmSecurityResponse struct {
	Findings []llmSecurityFinding `json:"findings"`
}

var promptInjectionMarkers = regexp.MustCompile("(?i)(ignore (all|previous) instructions|system:|\\bassistant:|```)")

// escapeForPrompt neutralizes prompt-injection-shaped substrings before a
// source/sink string is interpolated into the LLM prompt. It never
// touches the value stored on the Finding/MachineContext — those keep
// the raw string for downstream consumers, per spec.md §4.5 step 6
// ("not HTML-escape — raw strings are preserved for consumers").
func escapeForPrompt(s string) string {
	return promptInjectionMarkers.ReplaceAllStringFunc(s, func(m string) string {
		return "[redacted:" + m + "]"
	})
}

func (f *SecurityFrame) verifyWithLLM(ctx context.Context, file CodeFile, sig astSignals, flow dataFlowContext, semantic []SemanticChunk) []Finding {
	if f.LLM == nil {
		return nil
	}

	var prompt strings.Builder
	prompt.WriteString(escapeForPrompt(string(file.SourceCode)))
	if astStr := formatASTSignals(sig); astStr != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(escapeForPrompt(astStr))
	}
	if flowStr := formatDataFlow(flow); flowStr != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(escapeForPrompt(flowStr))
	}
	for i, chunk := range semantic {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&prompt, "\n\n[Related context from %s]:\n%s", chunk.FilePath, escapeForPrompt(truncate(chunk.Content, 200)))
	}

	ctx = llm.WithActiveFrame(ctx, f.Descriptor().Name)
	resp, err := f.LLM.Send(ctx, llm.Request{
		SystemPrompt: "You are a senior application security engineer. Find additional vulnerabilities not already reported. Respond with JSON: {\"findings\": [{\"severity\":..., \"message\":..., \"line_number\":..., \"detail\":...}]}",
		UserMessage:  prompt.String(),
	})
	if err != nil || !resp.Success || resp.Content == "" {
		return nil
	}

	var parsed llmSecurityResponse
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil
	}

	findings := make([]Finding, 0, len(parsed.Findings))
	for _, lf := range parsed.Findings {
		sev := severityFromString(lf.Severity)
		findings = append(findings, Finding{
			RuleID:   "llm-security",
			Severity: sev,
			Message:  fmt.Sprintf("[AI Security Analysis] %s", lf.Message),
			Location: fmt.Sprintf("%s:%d", file.Path, lf.LineNumber),
			Detail:   lf.Detail,
			FilePath: file.Path,
			VerificationMetadata: VerificationMetadata{
				Verified: true,
				Provider: resp.Provider,
			},
		})
	}
	return findings
}

func severityFromString(s string) Severity {
	switch strings.ToLower(s) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "low":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// promoteTaintPaths converts every TaintPath at or above the blocker
// threshold into a high-severity blocking Finding, and every path below
// it into a non-blocking medium Finding, per spec.md §4.5 step 7.
func promoteTaintPaths(paths []taint.TaintPath, threshold float64, filePath string) []Finding {
	findings := make([]Finding, 0, len(paths))
	for i, p := range paths {
		severity := SeverityMedium
		blocker := false
		if p.Confidence >= threshold {
			severity = SeverityHigh
			blocker = true
		}
		findings = append(findings, Finding{
			ID:       fmt.Sprintf("security-taint-%s-%d", filePath, i),
			RuleID:   "taint-path",
			Severity: severity,
			Message:  fmt.Sprintf("tainted data flows from %s to %s", p.Source.Name, p.Sink.Name),
			Location: fmt.Sprintf("%s:%d", filePath, p.Sink.Line),
			FilePath: filePath,
			IsBlocker: blocker,
			MachineContext: &MachineContext{
				Source: p.Source.Name,
				Sink:   p.Sink.Name,
				DataFlowPath: []DataFlowStep{
					{Description: "source", File: filePath, Line: p.Source.Line},
					{Description: "sink", File: filePath, Line: p.Sink.Line},
				},
			},
		})
	}
	return findings
}

// Execute runs the seven-step security pipeline over one file.
func (f *SecurityFrame) Execute(ctx context.Context, file CodeFile) (FrameResult, error) {
	start := time.Now()

	// Step 1: pattern checks.
	var checkResults []CheckResult
	if f.Checks != nil {
		checkResults = f.Checks.RunAll(file)
	}
	var findings []Finding
	for _, cr := range checkResults {
		findings = append(findings, cr.Findings...)
	}

	// Step 2: AST signal extraction (context only, not findings).
	sig := extractASTSignals(string(file.SourceCode))

	// Step 3: taint analysis.
	var paths []taint.TaintPath
	if lang, ok := taint.LanguageForPath(file.Path); ok && f.Catalog != nil {
		if lang == taint.LangPython {
			if f.PythonTaintPaths != nil {
				paths = f.PythonTaintPaths(file.Path)
			}
		} else {
			p, err := taint.AnalyzeFile(file.Path, string(file.SourceCode), f.Catalog, f.Confidence)
			if err == nil {
				paths = p
			}
		}
	}

	// Step 4: LSP data flow, best-effort.
	flow := f.analyzeDataFlow(ctx, file, findings)

	// Step 5: semantic-search context, best-effort.
	var semantic []SemanticChunk
	if f.Searcher != nil {
		if chunks, err := f.Searcher.Search(ctx, fmt.Sprintf("Security sensitive logic related to %s", file.Path), 3); err == nil {
			for _, c := range chunks {
				if c.FilePath != file.Path {
					semantic = append(semantic, c)
				}
			}
		}
	}

	// Step 6: LLM verification.
	findings = append(findings, f.verifyWithLLM(ctx, file, sig, flow, semantic)...)

	// Step 7: taint-path promotion.
	findings = append(findings, promoteTaintPaths(paths, f.Confidence.BlockerThreshold, file.Path)...)

	SortFindings(findings)
	result := NewFrameResult(f.Descriptor().FrameID, f.Descriptor().Name, findings, time.Since(start), 1)
	result.Metadata["checks_executed"] = len(checkResults)
	result.Metadata["taint_paths_found"] = len(paths)
	result.Metadata["dangerous_calls_found"] = len(sig.DangerousCalls)
	return result, nil
}

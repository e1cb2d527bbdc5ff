package taint

import (
	"regexp"
	"strings"
)

// RegexAnalyzer extracts TaintPath instances from JavaScript, TypeScript,
// Go, and Java source using a three-pass, line-oriented regex strategy:
// direct assignment from a catalog source, propagation to a fixpoint
// (bounded at maxPropagationPasses), then sink matching. No AST is built;
// this is intentionally approximate, matching spec's "AST-grade tools
// are not in scope" call for these four languages.
type RegexAnalyzer struct {
	lang       Language
	catalog    *TaintCatalog
	confidence ConfidenceConfig
}

const maxPropagationPasses = 5

// NewRegexAnalyzer builds a RegexAnalyzer for one of
// {javascript, typescript, go, java}.
func NewRegexAnalyzer(lang Language, catalog *TaintCatalog, confidence ConfidenceConfig) *RegexAnalyzer {
	return &RegexAnalyzer{lang: lang, catalog: catalog, confidence: confidence}
}

var (
	jsAssignRe        = regexp.MustCompile(`^\s*(?:const|let|var)\s+(\w+)\s*(?::\s*[\w<>\[\].]+\s*)?=\s*(.+?);?\s*$`)
	jsDestructureRe   = regexp.MustCompile(`^\s*(?:const|let|var)\s*\{\s*([\w,\s]+)\}\s*=\s*(.+?);?\s*$`)
	goAssignRe        = regexp.MustCompile(`^\s*(\w+)\s*:=\s*(.+?)\s*$`)
	javaAssignRe      = regexp.MustCompile(`^\s*(?:[\w.]+(?:<[\w,\s<>\[\].]*>)?\s+)(\w+)\s*=\s*(.+?);\s*$`)
	templateLiteralRe = regexp.MustCompile(`\$\{([^}]*)\}`)
	propertyAssignRe  = regexp.MustCompile(`\.(\w+)\s*=\s*(.+?);?\s*$`)
)

// trackedTaint is the running state for one tainted variable: the
// originating source plus the running confidence after every decay
// (propagation or sanitizer penalty) applied so far, and every sanitizer
// pattern seen in its assignment chain.
type trackedTaint struct {
	source      string
	kind        string
	line        uint32
	confidence  float64
	sanitizedBy []string
}

// Analyze scans source line by line and returns every TaintPath found.
// Parse/regex failures never panic; a line that matches nothing is
// simply skipped, per spec's "parse errors yield an empty path list,
// never a crash" edge case (there is no real parser here to fail, but
// the same tolerance applies to malformed lines).
func (a *RegexAnalyzer) Analyze(source string) []TaintPath {
	lines := strings.Split(source, "\n")
	tainted := make(map[string]trackedTaint)

	// Pass 1: direct assignment from a catalog source.
	for i, line := range lines {
		lineNo := uint32(i + 1) //nolint:gosec
		rhs := a.assignmentRHS(line)
		if rhs == "" {
			continue
		}
		if src, conf, ok := a.matchesSource(rhs); ok {
			for _, name := range a.assignmentTargets(line) {
				tainted[name] = trackedTaint{source: src, kind: "source", line: lineNo, confidence: conf}
			}
		}
	}

	// Pass 2: propagation to a fixpoint, bounded. A sanitizer call
	// wrapping an already-tainted variable keeps the variable tainted
	// (the caller may misuse the output) but applies the sanitizer
	// penalty and records the sanitizer for later reporting.
	for pass := 0; pass < maxPropagationPasses; pass++ {
		changed := false
		for i, line := range lines {
			lineNo := uint32(i + 1) //nolint:gosec
			rhs := a.assignmentRHS(line)
			if rhs == "" {
				continue
			}
			for _, name := range a.assignmentTargets(line) {
				if _, already := tainted[name]; already {
					continue
				}
				src, ok := a.referencedTaintedVar(rhs, tainted)
				if !ok {
					continue
				}
				next := trackedTaint{source: src.source, kind: src.kind, line: lineNo, sanitizedBy: src.sanitizedBy}
				if pattern, ok := a.matchesAnySanitizer(rhs); ok {
					next.confidence = src.confidence * a.confidence.SanitizerPenalty
					next.sanitizedBy = appendUnique(next.sanitizedBy, pattern)
				} else {
					next.confidence = a.confidence.PropagationAssignment
				}
				tainted[name] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	// Pass 3: sink matching.
	var paths []TaintPath
	for i, line := range lines {
		lineNo := uint32(i + 1) //nolint:gosec
		expanded := expandTemplateLiterals(line)
		for _, pattern := range a.catalog.SinkPatterns() {
			sinkType, _ := a.catalog.SinkType(pattern)
			for _, arg := range matchSinkArgs(expanded, pattern) {
				if path, ok := a.buildPath(arg, pattern, sinkType, lineNo, tainted); ok {
					paths = append(paths, path)
				}
			}
		}
		if a.lang == LangJavaScript || a.lang == LangTypeScript {
			if name, expr, ok := a.matchPropertyAssignSink(expanded); ok {
				if path, ok := a.buildPath(expr, name, "HTML-content", lineNo, tainted); ok {
					paths = append(paths, path)
				}
			}
		}
	}
	return paths
}

// buildPath resolves a sink argument expression against the tracked
// taint table and, if it references a tainted variable, produces the
// TaintPath — folding in both the sanitizer history already recorded on
// the variable's propagation chain and any sanitizer wrapping the
// argument at the sink call site itself.
func (a *RegexAnalyzer) buildPath(arg, sinkName, sinkType string, sinkLine uint32, tainted map[string]trackedTaint) (TaintPath, bool) {
	src, ok := a.referencedTaintedVar(arg, tainted)
	if !ok {
		return TaintPath{}, false
	}
	confidence := src.confidence
	sanitizers := append([]string(nil), src.sanitizedBy...)
	if pattern, ok := a.matchesAnySanitizer(arg); ok {
		confidence *= a.confidence.SanitizerPenalty
		sanitizers = appendUnique(sanitizers, pattern)
	}
	return TaintPath{
		Source:      Endpoint{Name: src.source, Kind: src.kind, Line: src.line, Confidence: src.confidence},
		Sink:        Endpoint{Name: sinkName, Kind: sinkType, Line: sinkLine},
		Sanitizers:  sanitizers,
		IsSanitized: len(sanitizers) > 0,
		Confidence:  confidence,
	}, true
}

// assignmentTargets returns every variable name a line assigns to
// (usually one; destructuring can produce several).
func (a *RegexAnalyzer) assignmentTargets(line string) []string {
	switch a.lang {
	case LangJavaScript, LangTypeScript:
		if m := jsAssignRe.FindStringSubmatch(line); m != nil {
			return []string{m[1]}
		}
		if m := jsDestructureRe.FindStringSubmatch(line); m != nil {
			var names []string
			for _, part := range strings.Split(m[1], ",") {
				if n := strings.TrimSpace(part); n != "" {
					names = append(names, n)
				}
			}
			return names
		}
	case LangGo:
		if m := goAssignRe.FindStringSubmatch(line); m != nil {
			return []string{m[1]}
		}
	case LangJava:
		if m := javaAssignRe.FindStringSubmatch(line); m != nil {
			return []string{m[1]}
		}
	}
	return nil
}

// assignmentRHS returns the right-hand side expression of an assignment
// line, or "" if the line isn't a recognised assignment.
func (a *RegexAnalyzer) assignmentRHS(line string) string {
	switch a.lang {
	case LangJavaScript, LangTypeScript:
		if m := jsAssignRe.FindStringSubmatch(line); m != nil {
			return m[2]
		}
		if m := jsDestructureRe.FindStringSubmatch(line); m != nil {
			return m[2]
		}
	case LangGo:
		if m := goAssignRe.FindStringSubmatch(line); m != nil {
			return m[2]
		}
	case LangJava:
		if m := javaAssignRe.FindStringSubmatch(line); m != nil {
			return m[2]
		}
	}
	return ""
}

func (a *RegexAnalyzer) matchesSource(expr string) (name string, confidence float64, ok bool) {
	for _, pattern := range a.catalog.SourcesFor(a.lang) {
		if containsWord(expr, pattern) {
			return pattern, a.confidence.SourceCatalog, true
		}
	}
	return "", 0, false
}

func (a *RegexAnalyzer) matchesAnySanitizer(expr string) (pattern string, ok bool) {
	for _, p := range a.catalog.AllSanitizerPatterns() {
		if containsWord(expr, p) {
			return p, true
		}
	}
	return "", false
}

func (a *RegexAnalyzer) referencedTaintedVar(expr string, tainted map[string]trackedTaint) (trackedTaint, bool) {
	for name, src := range tainted {
		if containsWord(expr, name) {
			return src, true
		}
	}
	return trackedTaint{}, false
}

func (a *RegexAnalyzer) matchPropertyAssignSink(line string) (name, expr string, ok bool) {
	m := propertyAssignRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	if !a.catalog.IsAssignSink(m[1]) {
		return "", "", false
	}
	return m[1], m[2], true
}

// matchSinkArgs finds every call to pattern on the line and returns the
// raw (comma-split) argument list of each call. Handles both bare calls
// ("execute(x)") and dotted-method calls ("cursor.execute(x)") since the
// leading `(?:^|[^\w.])` requires a word boundary before pattern.
func matchSinkArgs(line, pattern string) []string {
	re := regexp.MustCompile(`(?:^|[^\w])` + regexp.QuoteMeta(pattern) + `\s*\(([^)]*)\)`)
	var args []string
	for _, m := range re.FindAllStringSubmatch(line, -1) {
		for _, arg := range strings.Split(m[1], ",") {
			if a := strings.TrimSpace(arg); a != "" {
				args = append(args, a)
			}
		}
	}
	return args
}

// expandTemplateLiterals strips the `${...}` wrapper from JS/TS template
// interpolations so an enclosed tainted variable still matches a later
// word-boundary search, per spec's "template literals are expanded
// before sink-arg matching" edge case.
func expandTemplateLiterals(line string) string {
	return templateLiteralRe.ReplaceAllString(line, " $1 ")
}

// containsWord reports whether needle appears in haystack at a word
// boundary (not as a substring of a longer identifier).
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	re := regexp.MustCompile(`(?:^|[^\w])` + regexp.QuoteMeta(needle) + `(?:$|[^\w])`)
	return re.MatchString(" " + haystack + " ")
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

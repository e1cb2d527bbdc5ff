package taint

import "fmt"

// AnalyzeFile extracts TaintPath instances from a single source file in
// one of {javascript, typescript, go, java}. Python is intentionally not
// handled here: Python taint paths come from the inter-procedural engine
// in graph/callgraph/builder, which needs the whole call graph (not one
// file) to build def-use chains — see WireCallGraphBuilder and
// PathsFromSummary.
//
// Unsupported languages return an empty slice rather than an error, per
// spec's "unsupported languages return empty" edge case.
func AnalyzeFile(path, source string, catalog *TaintCatalog, confidence ConfidenceConfig) ([]TaintPath, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, nil
	}
	switch lang {
	case LangPython:
		return nil, fmt.Errorf("taint: %s is analyzed via the call-graph builder, not AnalyzeFile", path)
	case LangJavaScript, LangTypeScript, LangGo, LangJava:
		return NewRegexAnalyzer(lang, catalog, confidence).Analyze(source), nil
	default:
		return nil, nil
	}
}

package taint

import (
	taintanalysis "github.com/wardenscan/warden/graph/callgraph/analysis/taint"
	"github.com/wardenscan/warden/graph/callgraph/builder"
	"github.com/wardenscan/warden/graph/callgraph/core"
)

// WireCallGraphBuilder installs this catalog as the pattern source, and
// confidence as the weight source, for graph/callgraph/builder's Python
// intra-procedural taint pass — replacing the empty placeholder slices
// and hardcoded 1.0/0.7 weights it used before any catalog or
// ConfidenceConfig existed. Call once per scan, before building the call
// graph.
func (c *TaintCatalog) WireCallGraphBuilder(confidence ConfidenceConfig) {
	builder.PatternResolver = func(filePath string) (sources, sinks, sanitizers []string) {
		lang, ok := LanguageForPath(filePath)
		if !ok {
			lang = LangPython
		}
		return c.SourcesFor(lang), c.SinkPatterns(), c.AllSanitizerPatterns()
	}
	builder.ConfidenceResolver = func() taintanalysis.ConfidenceParams {
		return taintanalysis.ConfidenceParams{
			SourceCatalog:   confidence.SourceCatalog,
			PropagationCall: confidence.PropagationAssignment,
		}
	}
}

// PathsFromSummary converts the existing Python taint engine's output
// (core.TaintSummary, produced by graph/callgraph/builder.
// GenerateTaintSummaries) into the TaintPath shape every language
// analyzer in this package returns, so downstream consumers (the
// security frame, the result builder) never need to know which engine
// produced a given path.
func PathsFromSummary(summary *core.TaintSummary, catalog *TaintCatalog) []TaintPath {
	if summary == nil {
		return nil
	}
	paths := make([]TaintPath, 0, len(summary.Detections))
	for _, d := range summary.Detections {
		sinkType, _ := catalog.SinkType(d.SinkCall)
		var sanitizers []string
		if d.Sanitized && d.SanitizerCall != "" {
			sanitizers = []string{d.SanitizerCall}
		}
		sourceName := d.SourcePattern
		if sourceName == "" {
			sourceName = d.SourceVar
		}
		paths = append(paths, TaintPath{
			Source: Endpoint{
				Name:       sourceName,
				Kind:       "source",
				Line:       d.SourceLine,
				Confidence: d.Confidence,
			},
			Sink: Endpoint{
				Name: d.SinkCall,
				Kind: sinkType,
				Line: d.SinkLine,
			},
			Transformations: d.PropagationPath,
			Sanitizers:      sanitizers,
			IsSanitized:     d.Sanitized,
			Confidence:      d.Confidence,
		})
	}
	return paths
}

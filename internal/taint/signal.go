package taint

import "strings"

// sinkHint maps a substring of a call-target name to the sink type it
// most likely represents, when the catalog has no explicit entry.
var sinkHints = []struct {
	contains string
	sinkType string
}{
	{"exec", "CMD-argument"},
	{"system", "CMD-argument"},
	{"spawn", "CMD-argument"},
	{"popen", "CMD-argument"},
	{"query", "SQL-value"},
	{"execute", "SQL-value"},
	{"render", "HTML-content"},
	{"template", "HTML-content"},
	{"write", "FILE-path"},
	{"writefile", "FILE-path"},
	{"open", "FILE-path"},
	{"eval", "CODE-execution"},
	{"deserialize", "CODE-execution"},
	{"unmarshal", "CODE-execution"},
	{"pickle", "CODE-execution"},
}

// sourceHints are substrings (of a name or a module hint) that suggest
// externally-controlled input.
var sourceHints = []string{
	"request", "input", "param", "query", "body", "header", "cookie", "arg", "env", "form",
}

// SignalInference is the heuristic fallback used when the catalog has no
// entry for a symbol. It never returns a confidence above
// ConfidenceConfig.SourceSignalCap for sources, and always returns
// ConfidenceConfig.SinkBase for sinks (signal inference only identifies
// sink *type*, not sink strength — that nuance is catalog-only).
type SignalInference struct {
	confidence ConfidenceConfig
}

// NewSignalInference builds a SignalInference bound to a specific
// confidence configuration (so overrides from .warden/config.yaml flow
// through consistently).
func NewSignalInference(cfg ConfidenceConfig) *SignalInference {
	return &SignalInference{confidence: cfg}
}

// InferSink guesses a sink type from a call-target name. paramNames is
// accepted for forward-compatibility with richer heuristics (e.g.
// flagging a "cmd"/"query" parameter name) but is not yet consulted.
func (s *SignalInference) InferSink(name string, _ []string, _ string) (sinkType string, confidence float64, ok bool) {
	lower := strings.ToLower(name)
	for _, hint := range sinkHints {
		if strings.Contains(lower, hint.contains) {
			return hint.sinkType, s.confidence.SinkBase, true
		}
	}
	return "", 0, false
}

// InferSource guesses whether a name represents externally-controlled
// input, accumulating +SourceSignalPerHint confidence per distinct hint
// matched across the name and the optional module hint, capped at
// SourceSignalCap.
func (s *SignalInference) InferSource(name, moduleHint string) (role string, confidence float64, ok bool) {
	lower := strings.ToLower(name)
	hints := 0
	for _, hint := range sourceHints {
		if strings.Contains(lower, hint) {
			hints++
		}
	}
	if moduleHint != "" {
		lowerModule := strings.ToLower(moduleHint)
		for _, hint := range sourceHints {
			if strings.Contains(lowerModule, hint) {
				hints++
			}
		}
	}
	if hints == 0 {
		return "", 0, false
	}
	conf := s.confidence.SourceSignalBase + float64(hints)*s.confidence.SourceSignalPerHint
	if conf > s.confidence.SourceSignalCap {
		conf = s.confidence.SourceSignalCap
	}
	return "user_input", conf, true
}

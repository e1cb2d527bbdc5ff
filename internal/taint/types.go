package taint

// Language identifies one of the five languages the analyzer pipeline
// understands. Values match the directory names under packs/.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangJava       Language = "java"
)

// LanguageForPath infers a Language from a file extension. Returns false
// for anything outside the five supported languages.
func LanguageForPath(path string) (Language, bool) {
	switch ext(path) {
	case ".py":
		return LangPython, true
	case ".ts", ".tsx":
		return LangTypeScript, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".go":
		return LangGo, true
	case ".java":
		return LangJava, true
	}
	return "", false
}

func ext(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			break
		}
		if path[i] == '.' {
			dot = i
			break
		}
	}
	if dot == -1 {
		return ""
	}
	return path[dot:]
}

// Endpoint is one end of a TaintPath: the source that introduced taint,
// or the sink that consumed it.
type Endpoint struct {
	Name       string
	Kind       string
	Line       uint32
	Confidence float64
}

// TaintPath is evidence of one data flow from a source to a sink,
// possibly passing through a sanitizer that weakens (but does not
// necessarily eliminate) the finding.
type TaintPath struct {
	Source          Endpoint
	Sink            Endpoint
	Transformations []string
	Sanitizers      []string
	IsSanitized     bool
	Confidence      float64
}

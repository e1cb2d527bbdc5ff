package pipeline

import (
	"context"
	"path/filepath"
	"strings"
)

// entryPointHints are filename fragments that suggest a file is an
// application entry point (route table, server bootstrap, handler
// registration) — used to seed ProjectIntelligence.EntryPoints the same
// way pre-analysis infers entry points "from filenames and route/auth
// decorators" per spec.md §4.7, without needing a full AST walk.
var entryPointHints = []string{"main", "app", "server", "router", "handler", "routes", "views", "urls"}

var authDecoratorHints = []string{"@login_required", "@require_auth", "@authenticated", "@requires_auth", "@auth.required"}

// PreAnalysisPhase builds ProjectIntelligence and per-file FileContext
// entries. Runs when EnablePreAnalysis is set.
type PreAnalysisPhase struct{}

func (PreAnalysisPhase) Name() string { return "pre-analysis" }

func (PreAnalysisPhase) Enabled(cfg Config) bool { return cfg.EnablePreAnalysis }

func (PreAnalysisPhase) Execute(goCtx context.Context, ctx *Context, files []CodeFileInput) error {
	intel := &ProjectIntelligence{}

	for _, f := range files {
		base := strings.ToLower(filepath.Base(f.Path))
		for _, hint := range entryPointHints {
			if strings.Contains(base, hint) {
				intel.EntryPoints = append(intel.EntryPoints, f.Path)
				break
			}
		}

		source := string(f.SourceCode)
		for _, hint := range authDecoratorHints {
			if strings.Contains(source, hint) {
				intel.AuthPatterns = append(intel.AuthPatterns, hint)
			}
		}

		ctx.FileContexts[f.Path] = &FileContext{
			Path:        f.Path,
			Language:    f.Language,
			TypeSummary: map[string]string{},
		}
	}

	ctx.ProjectIntelligence = intel
	return nil
}

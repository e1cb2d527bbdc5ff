package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenscan/warden/analytics"
	"github.com/wardenscan/warden/graph"
	"github.com/wardenscan/warden/graph/callgraph/builder"
	cgcore "github.com/wardenscan/warden/graph/callgraph/core"
	cgregistry "github.com/wardenscan/warden/graph/callgraph/registry"
	wcache "github.com/wardenscan/warden/internal/cache"
	wconfig "github.com/wardenscan/warden/internal/config"
	wframe "github.com/wardenscan/warden/internal/frame"
	wllm "github.com/wardenscan/warden/internal/llm"
	_ "github.com/wardenscan/warden/internal/llm/providers"
	wpipeline "github.com/wardenscan/warden/internal/pipeline"
	"github.com/wardenscan/warden/internal/taint"
	"github.com/wardenscan/warden/output"
)

// skippedDirs are directories the file walk never descends into —
// dependency trees and VCS metadata, matching the skip-list graph's own
// directory walker (graph/utils.go) uses for its language discovery.
var skippedDirs = map[string]bool{
	".git":         true,
	".warden":      true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the frame-based validation pipeline with LLM-verified findings",
	Long: `Validate walks a project through warden's six-phase validation pipeline:
pre-analysis, classification, triage, analysis, frame validation (pattern
checks, taint analysis, and LLM verification), and post-processing
(baseline subtraction).

Unlike "scan", which executes Python DSL rules against the call graph,
"validate" drives the pluggable frame registry — the security frame's
seven-step reference pipeline plus any additional frames registered on
this build.

Examples:
  # Validate the current directory
  warden validate

  # Validate a specific project, failing the build on any high+ finding
  warden validate --project /path/to/project --fail-on high,critical

  # Emit JSON for CI consumption
  warden validate --project . --output json --output-file findings.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	validateCmd.Flags().String("project", ".", "Project directory to validate")
	validateCmd.Flags().String("output", "text", "Output format: text, json")
	validateCmd.Flags().String("output-file", "", "Write output to file instead of stdout")
	validateCmd.Flags().String("fail-on", "critical,high", "Comma-separated severities that fail the build (or \"none\")")
	validateCmd.Flags().String("level", "standard", "Analysis level: basic, standard, deep")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	startTime := time.Now()

	projectPath, _ := cmd.Flags().GetString("project")
	outputFormat, _ := cmd.Flags().GetString("output")
	outputFile, _ := cmd.Flags().GetString("output-file")
	failOnStr, _ := cmd.Flags().GetString("fail-on")
	level, _ := cmd.Flags().GetString("level")

	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	verbosity := output.VerbosityDefault
	if verboseFlag {
		verbosity = output.VerbosityVerbose
	}
	logger := output.NewLogger(verbosity)

	analytics.ReportEventWithProperties(analytics.ValidateStarted, map[string]interface{}{
		"output_format": outputFormat,
		"level":         level,
	})

	cfg, err := wconfig.Load(absProject, logger)
	if err != nil {
		analytics.ReportEventWithProperties(analytics.ValidateFailed, map[string]interface{}{"phase": "config"})
		return fmt.Errorf("loading config: %w", err)
	}

	catalog, err := taint.LoadCatalog(absProject)
	if err != nil {
		analytics.ReportEventWithProperties(analytics.ValidateFailed, map[string]interface{}{"phase": "taint_catalog"})
		return fmt.Errorf("loading taint catalog: %w", err)
	}
	for _, w := range catalog.Warnings {
		logger.Warning("taint catalog: %s", w)
	}

	findingsCache, err := wcache.New(filepath.Join(absProject, ".warden", "findings_cache"))
	if err != nil {
		analytics.ReportEventWithProperties(analytics.ValidateFailed, map[string]interface{}{"phase": "cache"})
		return fmt.Errorf("creating findings cache: %w", err)
	}

	pythonTaintPaths := buildPythonTaintPaths(absProject, catalog, cfg.Taint, logger)

	registry := buildFrameRegistry(cfg, catalog, pythonTaintPaths, logger)
	phases := buildPipelinePhases(registry, findingsCache)
	orchestrator := wpipeline.NewOrchestrator(phases, logger)

	pcfg := wpipeline.Config{
		AnalysisLevel:         level,
		UseLLM:                cfg.LLM.Provider != "",
		EnablePreAnalysis:     true,
		EnableAnalysis:        true,
		EnableValidation:      true,
		EnableIssueValidation: true,
		EnableFortification:   true,
		EnableCleaning:        true,
		ParallelLimit:         cfg.Frames.ParallelLimit,
	}

	files, err := discoverSourceFiles(absProject)
	if err != nil {
		analytics.ReportEventWithProperties(analytics.ValidateFailed, map[string]interface{}{"phase": "discovery"})
		return fmt.Errorf("discovering source files: %w", err)
	}
	logger.Progress("validate: found %d source files under %s", len(files), absProject)

	goCtx := context.Background()
	var allFindings []wframe.Finding
	var allErrors []string
	pipelineID := fmt.Sprintf("validate-%d", startTime.UnixNano())

	for _, f := range files {
		ctx := wpipeline.NewContext(pipelineID, f.Path, absProject, f.Language, f.SourceCode)
		record := orchestrator.Run(goCtx, ctx, []wpipeline.CodeFileInput{f}, pcfg)
		record = orchestrator.PostProcess(ctx, record)
		result := wpipeline.BuildResult(ctx, record, "sequential")
		allFindings = append(allFindings, result.Findings...)
		allErrors = append(allErrors, result.Errors...)
	}
	wframe.SortFindings(allFindings)

	duration := time.Since(startTime)
	if err := writeValidationOutput(allFindings, outputFormat, outputFile); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	failOn := output.ParseFailOn(failOnStr)
	if err := output.ValidateSeverities(failOn); err != nil {
		return err
	}
	exitCode := exitCodeForFindings(allFindings, failOn, len(allErrors) > 0)

	analytics.ReportEventWithProperties(analytics.ValidateCompleted, map[string]interface{}{
		"finding_count": len(allFindings),
		"file_count":    len(files),
		"duration_ms":   duration.Milliseconds(),
		"exit_code":     int(exitCode),
	})

	if exitCode != output.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}

// buildFrameRegistry registers every frame this build ships with. The
// security frame is always wired; its LLM collaborator is the
// provider-orchestration layer built from cfg.LLM, or left nil when no
// provider is configured (the frame's nil-safe LLM step then simply
// skips verification rather than failing the scan).
func buildFrameRegistry(cfg wconfig.Config, catalog *taint.TaintCatalog, pythonTaintPaths func(path string) []taint.TaintPath, logger *output.Logger) *wframe.Registry {
	registry := wframe.NewRegistry()

	securityFrame := wframe.NewSecurityFrame(catalog)
	securityFrame.Confidence = cfg.Taint
	securityFrame.LLM = buildOrchestratedClient(cfg, logger)
	securityFrame.PythonTaintPaths = pythonTaintPaths
	registry.Register(securityFrame)

	return registry
}

// buildPythonTaintPaths builds one whole-project call graph up front and
// returns a closure the security frame calls per Python file — Python
// taint analysis is inter-procedural (graph/callgraph/builder.
// GenerateTaintSummaries walks the call graph, not a single file), so it
// cannot be derived from a CodeFile the way the other four languages'
// RegexAnalyzer can. Wires catalog and confidence into the call-graph
// builder's package-level resolvers before building, so Python paths
// carry the same catalog patterns and ConfidenceConfig weights as every
// other language instead of the builder's pre-catalog hardcoded
// defaults. A project with no parseable files, or a call-graph build
// failure, degrades to "no Python taint paths" rather than failing the
// whole validate run.
func buildPythonTaintPaths(projectPath string, catalog *taint.TaintCatalog, confidence taint.ConfidenceConfig, logger *output.Logger) func(path string) []taint.TaintPath {
	catalog.WireCallGraphBuilder(confidence)

	codeGraph := graph.Initialize(projectPath)
	if len(codeGraph.Nodes) == 0 {
		return nil
	}

	moduleRegistry, err := cgregistry.BuildModuleRegistry(projectPath)
	if err != nil {
		logger.Warning("taint: building module registry: %v", err)
		moduleRegistry = cgcore.NewModuleRegistry()
	}

	callGraph, err := builder.BuildCallGraph(codeGraph, moduleRegistry, projectPath, logger)
	if err != nil {
		logger.Warning("taint: building call graph for Python analysis: %v", err)
		return nil
	}

	byFile := make(map[string][]taint.TaintPath)
	for fqn, summary := range callGraph.Summaries {
		funcNode, ok := callGraph.Functions[fqn]
		if !ok || summary == nil {
			continue
		}
		paths := taint.PathsFromSummary(summary, catalog)
		if len(paths) == 0 {
			continue
		}
		byFile[funcNode.File] = append(byFile[funcNode.File], paths...)
	}

	return func(path string) []taint.TaintPath {
		return byFile[path]
	}
}

// buildOrchestratedClient resolves the configured smart provider and its
// fast-tier pool from the self-registering provider registry
// (internal/llm/providers), wrapping both in the circuit-breaker- and
// metrics-aware OrchestratedClient. A provider that reports itself
// unavailable (e.g. missing credential) is silently dropped from its
// tier rather than treated as a configuration error, per
// internal/llm.Create's contract; an unresolvable smart provider falls
// back to the "offline" no-op client so the pipeline still runs without
// LLM-backed verification.
func buildOrchestratedClient(cfg wconfig.Config, logger *output.Logger) *wllm.OrchestratedClient {
	creds := credentialsFromEnv()
	blocked := make(map[string]bool, len(cfg.LLM.BlockedProviders))
	for _, p := range cfg.LLM.BlockedProviders {
		blocked[p] = true
	}

	smart, ok, err := wllm.Create(cfg.LLM.Provider, wllm.ProviderConfig{Model: cfg.LLM.SmartModel, Credentials: creds})
	if err != nil || !ok {
		if err != nil {
			logger.Warning("llm: smart provider %q unavailable: %v", cfg.LLM.Provider, err)
		}
		smart, _, _ = wllm.Create("offline", wllm.ProviderConfig{})
	}

	var fast []wllm.Client
	for _, providerID := range cfg.LLM.FastProviders {
		if blocked[providerID] {
			continue
		}
		client, ok, err := wllm.Create(providerID, wllm.ProviderConfig{Model: cfg.LLM.FastModel, Credentials: creds})
		if err != nil || !ok {
			continue
		}
		fast = append(fast, client)
	}

	return &wllm.OrchestratedClient{
		Smart:   smart,
		Fast:    fast,
		Breaker: wllm.NewProviderCircuitBreaker(logger),
		Metrics: wllm.NewMetricsCollector(),
	}
}

// credentialsFromEnv reads the handful of provider API keys a provider
// factory might need. Providers that require none (the CLI-subprocess
// and offline clients) simply ignore the map entries they don't use.
func credentialsFromEnv() map[string]string {
	return map[string]string{
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"openai":    os.Getenv("OPENAI_API_KEY"),
	}
}

// buildPipelinePhases wires the eight phases in spec's fixed order.
// Verification/Fortification/Cleaning are left with nil collaborators —
// their extension-point interfaces aren't backed by a concrete
// implementation in this build — so each becomes a documented no-op per
// its own nil-check rather than a half-wired LLM call.
func buildPipelinePhases(registry *wframe.Registry, findingsCache *wcache.Cache) []wpipeline.Phase {
	return []wpipeline.Phase{
		wpipeline.PreAnalysisPhase{},
		wpipeline.ClassificationPhase{},
		wpipeline.TriagePhase{},
		wpipeline.AnalysisPhase{},
		wpipeline.ValidationPhase{Registry: registry, Runner: wframe.NewRunner(), Cache: findingsCache},
		wpipeline.VerificationPhase{},
		wpipeline.FortificationPhase{},
		wpipeline.CleaningPhase{},
	}
}

// discoverSourceFiles walks root and returns every file whose extension
// maps to one of the five languages internal/taint understands, reading
// its content eagerly the same way graph/utils.go's getFiles does for
// the DSL engine's file discovery.
func discoverSourceFiles(root string) ([]wpipeline.CodeFileInput, error) {
	var files []wpipeline.CodeFileInput
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skippedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := taint.LanguageForPath(path)
		if !ok {
			return nil
		}

		source, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		files = append(files, wpipeline.CodeFileInput{Path: path, Language: string(lang), SourceCode: source})
		return nil
	})
	return files, err
}

// exitCodeForFindings applies the same precedence DetermineExitCode uses
// for DSL detections (error > matching finding > success), reimplemented
// over frame.Finding since this command's findings never pass through
// dsl.EnrichedDetection.
func exitCodeForFindings(findings []wframe.Finding, failOn []string, hadErrors bool) output.ExitCode {
	if hadErrors {
		return output.ExitCodeError
	}
	if len(failOn) == 0 {
		return output.ExitCodeSuccess
	}

	failOnSet := make(map[string]bool, len(failOn))
	for _, s := range failOn {
		failOnSet[strings.ToLower(s)] = true
	}
	for _, f := range findings {
		if failOnSet[strings.ToLower(string(f.Severity))] {
			return output.ExitCodeFindings
		}
	}
	return output.ExitCodeSuccess
}

// validateOutputFinding is the JSON output shape: a flattened,
// stable projection of frame.Finding that doesn't leak the package's
// internal MachineContext pointer representation.
type validateOutputFinding struct {
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	Location    string `json:"location"`
	Detail      string `json:"detail,omitempty"`
	IsBlocker   bool   `json:"is_blocker"`
	Verified    bool   `json:"verified"`
	Provider    string `json:"provider,omitempty"`
}

func writeValidationOutput(findings []wframe.Finding, format, outputFile string) error {
	w := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		out := make([]validateOutputFinding, len(findings))
		for i, f := range findings {
			out[i] = validateOutputFinding{
				RuleID:    f.RuleID,
				Severity:  string(f.Severity),
				Message:   f.Message,
				Location:  f.Location,
				Detail:    f.Detail,
				IsBlocker: f.IsCountedBlocker(),
				Verified:  f.VerificationMetadata.Verified,
				Provider:  f.VerificationMetadata.Provider,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		if len(findings) == 0 {
			fmt.Fprintln(w, "No findings.")
			return nil
		}
		for _, f := range findings {
			marker := " "
			if f.IsCountedBlocker() {
				marker = "!"
			}
			fmt.Fprintf(w, "%s [%s] %s: %s\n", marker, strings.ToUpper(string(f.Severity)), f.Location, f.Message)
		}
		fmt.Fprintf(w, "\n%d finding(s)\n", len(findings))
		return nil
	}
}

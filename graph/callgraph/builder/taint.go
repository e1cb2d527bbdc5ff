package builder

import (
	"log"

	"github.com/wardenscan/warden/graph"
	"github.com/wardenscan/warden/graph/callgraph/analysis/taint"
	"github.com/wardenscan/warden/graph/callgraph/core"
	"github.com/wardenscan/warden/graph/callgraph/extraction"
)

// PatternResolver resolves the source/sink/sanitizer call-target patterns
// used by intra-procedural taint analysis for a given file. internal/taint
// installs this at scan startup once its TaintCatalog has loaded; nil
// means fall back to analysis/taint's hardcoded stdlib tiers only.
var PatternResolver func(filePath string) (sources, sinks, sanitizers []string)

// ConfidenceResolver resolves the confidence weights intra-procedural
// taint analysis applies at a source match and at call-propagation decay.
// internal/taint installs this alongside PatternResolver so Python taint
// paths carry the same validated ConfidenceConfig as the other four
// languages; nil falls back to analysis/taint's own defaults.
var ConfidenceResolver func() taint.ConfidenceParams

// GenerateTaintSummaries analyzes all Python functions for taint flows.
// This is Pass 5 of the call graph building process.
//
// For each function:
//  1. Extract statements from AST
//  2. Build def-use chains
//  3. Analyze intra-procedural taint
//  4. Store TaintSummary in callGraph.Summaries
//
// Parameters:
//   - callGraph: the call graph being built (will be populated with summaries)
//   - codeGraph: the parsed AST nodes (currently unused, reserved for future use)
//   - registry: module registry (currently unused, reserved for future use)
func GenerateTaintSummaries(callGraph *core.CallGraph, codeGraph *graph.CodeGraph, registry *core.ModuleRegistry) {
	_ = codeGraph  // Reserved for future use
	_ = registry   // Reserved for future use
	analyzed := 0
	total := len(callGraph.Functions)

	// Iterate over all indexed functions
	for funcFQN, funcNode := range callGraph.Functions {
		// Read source code for this function's file
		sourceCode, err := ReadFileBytes(funcNode.File)
		if err != nil {
			log.Printf("Warning: failed to read file %s for taint analysis: %v", funcNode.File, err)
			continue
		}

		// Parse the Python file to get AST
		tree, err := extraction.ParsePythonFile(sourceCode)
		if err != nil {
			log.Printf("Warning: failed to parse %s for taint analysis: %v", funcNode.File, err)
			continue
		}

		// Find the function node in the AST by line number
		functionNode := FindFunctionAtLine(tree.RootNode(), funcNode.LineNumber)
		if functionNode == nil {
			log.Printf("Warning: could not find function %s at line %d", funcFQN, funcNode.LineNumber)
			if tree != nil {
				tree.Close()
			}
			continue
		}

		// Step 1: Extract statements from function
		statements, err := extraction.ExtractStatements(funcNode.File, sourceCode, functionNode)
		if err != nil {
			log.Printf("Warning: failed to extract statements from %s: %v", funcFQN, err)
			if tree != nil {
				tree.Close()
			}
			continue
		}

		// Step 2: Build def-use chains
		defUseChain := core.BuildDefUseChains(statements)

		// Step 3: Analyze intra-procedural taint
		sources, sinks, sanitizers := []string{}, []string{}, []string{}
		if PatternResolver != nil {
			sources, sinks, sanitizers = PatternResolver(funcNode.File)
		}
		confidence := taint.DefaultConfidenceParams()
		if ConfidenceResolver != nil {
			confidence = ConfidenceResolver()
		}
		summary := taint.AnalyzeIntraProceduralTaint(
			funcFQN,
			statements,
			defUseChain,
			sources,
			sinks,
			sanitizers,
			confidence,
		)

		// Step 4: Store summary
		callGraph.Summaries[funcFQN] = summary

		analyzed++

		// Report progress every 1000 functions
		if analyzed%1000 == 0 {
			log.Printf("Analyzed %d/%d functions...", analyzed, total)
		}

		// Clean up tree-sitter tree
		if tree != nil {
			tree.Close()
		}
	}
}

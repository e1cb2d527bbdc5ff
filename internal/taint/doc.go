// Package taint answers one question for the rest of warden: given a
// symbol name (a call target, a property, a variable), is it a taint
// source, a taint sink, or a sanitizer, and with what confidence?
//
// Two tiers of evidence back that answer. The first is a YAML-defined
// catalog (TaintCatalog) packaged per language/framework and merged with
// an optional project override. The second, used only when the catalog
// has no opinion, is a set of naming heuristics (SignalInference).
//
// Path extraction itself is split by language. Python reuses the
// existing tree-sitter-backed intra-procedural walk in
// graph/callgraph/analysis/taint, wired through builder.PatternResolver
// so it reads from a TaintCatalog instead of empty placeholder slices.
// JavaScript, TypeScript, Go, and Java go through a three-pass
// line-oriented regex analyzer (regexAnalyzer) since no AST is in scope
// for those languages here.
package taint

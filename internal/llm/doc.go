// Package llm is the provider-orchestration layer: a process-wide
// registry of named LLM clients, a resilience wrapper (timeout, retry,
// per-call circuit breaker) applied uniformly to every provider, an
// orchestrator-level circuit breaker that gates whether a provider is
// even attempted, and a tiered client that races a fast tier before
// falling back to a smart provider of record.
//
// Concrete provider clients live in internal/llm/providers and
// self-register into this package's registry from their init()
// functions, the way the teacher's registry packages self-register
// stdlib type sources.
package llm

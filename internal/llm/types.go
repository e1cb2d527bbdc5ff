package llm

import (
	"context"
	"errors"
)

// Sentinel errors, matching the teacher's ruleset/types.go convention of
// per-package errors.New sentinels for well-known failure classes.
var (
	ErrProviderUnknown = errors.New("llm: unknown provider")
	ErrCircuitOpen     = errors.New("llm: provider circuit is open")
	ErrAllTiersFailed  = errors.New("llm: all fast-tier providers and the smart provider failed")
)

// Tier identifies which pool of providers handled a request.
type Tier string

const (
	TierFast  Tier = "fast"
	TierSmart Tier = "smart"
)

// Request is one call into the provider layer. UseFastTier opts into
// racing the fast pool before the smart fallback; single-tier providers
// (CLI-backed ones) ignore it and always make one call.
type Request struct {
	SystemPrompt   string
	UserMessage    string
	Model          string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
	UseFastTier    bool
}

// Response never carries a non-nil error for transport failures —
// Success=false plus ErrorMessage is how a client reports them. Only
// programmer errors (nil client, bad registry state) return a Go error
// from Send.
type Response struct {
	Content         string
	Success         bool
	ErrorMessage    string
	Provider        string
	Model           string
	PromptTokens    int
	CompletionTokens int
	TotalTokens     int
	DurationMS      int64
}

// Client is the contract every provider implements: HTTP chat-completion
// clients, the local streaming Ollama client, the CLI-subprocess clients,
// and the offline no-op client.
type Client interface {
	// Name is the provider_id this client was created for (e.g. "openai").
	Name() string
	// Send issues one request. It must never panic or return a Go error
	// for transport failures — those become Response{Success:false}.
	Send(ctx context.Context, req Request) (Response, error)
}

// SingleTierClient is implemented by providers (Claude Code, Codex) whose
// smart and fast tiers collapse to a single call — the orchestrator keeps
// other fast clients only as an emergency fallback for an empty/failed
// response from these.
type SingleTierClient interface {
	Client
	SingleTier() bool
}

// RequestMetrics is recorded once per provider call by the orchestrator,
// attributing the call to whichever frame is currently active.
type RequestMetrics struct {
	Tier            Tier
	Provider        string
	Model           string
	Success         bool
	DurationMS      int64
	Error           string
	InputTokens     int
	OutputTokens    int
	FrameName       string
}

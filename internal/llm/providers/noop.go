package providers

import (
	"context"

	"github.com/wardenscan/warden/internal/llm"
)

// noopClient is the offline provider: it never calls out, always
// reports failure, and exists so a pipeline run with no configured
// credentials still has a registered smart provider to fall back to
// rather than a nil-client panic.
type noopClient struct{}

func init() {
	llm.Register("offline", func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		return &noopClient{}, true, nil
	})
}

func (c *noopClient) Name() string { return "offline" }

func (c *noopClient) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{
		Success:      false,
		Provider:     "offline",
		ErrorMessage: "no LLM provider configured; running in offline mode",
	}, nil
}

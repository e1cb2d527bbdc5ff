package providers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wardenscan/warden/internal/llm"
)

// cliSubprocessClient runs a CLI coding agent as a subprocess and feeds it
// the prompt over stdin, reading its stdout as the response. Both
// registered CLI providers (Claude Code, Codex) are single-tier: each
// invocation already does its own internal model routing, so the
// orchestrator treats one call here as covering both tiers.
type cliSubprocessClient struct {
	providerID string
	binary     string
	args       []string
}

func init() {
	llm.Register("claude-code", func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		path, err := exec.LookPath("claude")
		if err != nil {
			return nil, false, nil
		}
		return &cliSubprocessClient{providerID: "claude-code", binary: path, args: []string{"-p"}}, true, nil
	})
	llm.Register("codex", func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		path, err := exec.LookPath("codex")
		if err != nil {
			return nil, false, nil
		}
		return &cliSubprocessClient{providerID: "codex", binary: path, args: []string{"exec"}}, true, nil
	})
}

func (c *cliSubprocessClient) Name() string { return c.providerID }

func (c *cliSubprocessClient) SingleTier() bool { return true }

func (c *cliSubprocessClient) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	start := time.Now()
	prompt := req.UserMessage
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.UserMessage
	}

	cmd := exec.CommandContext(ctx, c.binary, c.args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Cancellation (fast-tier race loss, deadline) — the process
			// group must already be gone via CommandContext's kill.
			return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: ctx.Err().Error()}, nil
		}
		return llm.Response{
			Success:      false,
			Provider:     c.providerID,
			ErrorMessage: fmt.Sprintf("%v: %s", err, stderr.String()),
		}, nil
	}

	return llm.Response{
		Success:    true,
		Provider:   c.providerID,
		Model:      req.Model,
		Content:    stdout.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

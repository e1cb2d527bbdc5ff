package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wardenscan/warden/internal/llm"
)

// anthropicClient speaks Claude's native messages API, which differs
// from the OpenAI shape enough (top-level "system" field, "x-api-key"
// auth, a required "anthropic-version" header) to warrant its own type
// rather than forcing it through openAICompatibleClient.
type anthropicClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func init() {
	llm.Register("anthropic", func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		apiKey := cfg.Credentials["ANTHROPIC_API_KEY"]
		if apiKey == "" {
			return nil, false, nil
		}
		return &anthropicClient{
			apiKey:     apiKey,
			model:      cfg.Model,
			httpClient: &http.Client{Timeout: 120 * time.Second},
		}, true, nil
	})
}

func (c *anthropicClient) Name() string { return "anthropic" }

func (c *anthropicClient) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body := map[string]interface{}{
		"model":       model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": req.UserMessage},
		},
	}
	if req.SystemPrompt != "" {
		body["system"] = req.SystemPrompt
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: err.Error()}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: err.Error()}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: err.Error()}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return llm.Response{
			Success:      false,
			Provider:     "anthropic",
			Model:        model,
			ErrorMessage: fmt.Sprintf("%d: %s", resp.StatusCode, string(bodyBytes)),
		}, nil
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: err.Error()}, nil
	}
	if len(parsed.Content) == 0 {
		return llm.Response{Success: false, Provider: "anthropic", ErrorMessage: "no content blocks in response"}, nil
	}

	return llm.Response{
		Success:          true,
		Provider:         "anthropic",
		Model:            model,
		Content:          parsed.Content[0].Text,
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
		TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
	}, nil
}

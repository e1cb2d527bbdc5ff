// Package providers holds the concrete LLM client implementations and
// self-registers each into internal/llm's process-wide registry from an
// init() function, so importing this package for its side effects is
// enough to make every provider available.
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

// openAICompatibleClient speaks the OpenAI chat-completions wire format,
// which OpenAI itself, Azure OpenAI, Groq, OpenRouter, DeepSeek, and
// Gemini's OpenAI-compatibility endpoint all implement. Grounded directly
// on the teacher's diagnostic/llm.go callOpenAI: same request shape
// (model/messages/temperature/max_tokens), same response parsing
// (choices[0].message.content), generalized into a reusable struct
// instead of one hardcoded provider.
type openAICompatibleClient struct {
	providerID string
	baseURL    string
	apiKey     string
	model      string
	authHeader string // "Authorization" (Bearer) or a provider-specific header name
	authPrefix string // e.g. "Bearer "
	httpClient *http.Client
}

func registerOpenAICompatible(providerID, defaultBaseURL, credentialKey, authHeader, authPrefix string) {
	llm.Register(providerID, func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		apiKey := cfg.Credentials[credentialKey]
		if apiKey == "" {
			return nil, false, nil
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		if baseURL == "" {
			// Azure deployments are account-specific; no sane default exists.
			return nil, false, nil
		}
		return &openAICompatibleClient{
			providerID: providerID,
			baseURL:    baseURL,
			apiKey:     apiKey,
			model:      cfg.Model,
			authHeader: authHeader,
			authPrefix: authPrefix,
			httpClient: &http.Client{Timeout: 120 * time.Second},
		}, true, nil
	})
}

func init() {
	registerOpenAICompatible("openai", "https://api.openai.com/v1", "OPENAI_API_KEY", "Authorization", "Bearer ")
	registerOpenAICompatible("azure-openai", "", "AZURE_OPENAI_API_KEY", "api-key", "")
	registerOpenAICompatible("groq", "https://api.groq.com/openai/v1", "GROQ_API_KEY", "Authorization", "Bearer ")
	registerOpenAICompatible("openrouter", "https://openrouter.ai/api/v1", "OPENROUTER_API_KEY", "Authorization", "Bearer ")
	registerOpenAICompatible("deepseek", "https://api.deepseek.com/v1", "DEEPSEEK_API_KEY", "Authorization", "Bearer ")
	registerOpenAICompatible("gemini", "https://generativelanguage.googleapis.com/v1beta/openai", "GEMINI_API_KEY", "Authorization", "Bearer ")
}

func (c *openAICompatibleClient) Name() string { return c.providerID }

func (c *openAICompatibleClient) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserMessage})

	body := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: err.Error()}, nil
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: err.Error()}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(c.authHeader, c.authPrefix+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: err.Error()}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return llm.Response{
			Success:      false,
			Provider:     c.providerID,
			Model:        model,
			ErrorMessage: fmt.Sprintf("%d: %s", resp.StatusCode, string(bodyBytes)),
		}, nil
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: err.Error()}, nil
	}
	if len(parsed.Choices) == 0 {
		return llm.Response{Success: false, Provider: c.providerID, ErrorMessage: "no choices in response"}, nil
	}

	return llm.Response{
		Success:          true,
		Provider:          c.providerID,
		Model:             model,
		Content:           parsed.Choices[0].Message.Content,
		PromptTokens:      parsed.Usage.PromptTokens,
		CompletionTokens:  parsed.Usage.CompletionTokens,
		TotalTokens:       parsed.Usage.TotalTokens,
	}, nil
}

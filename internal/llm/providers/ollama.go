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

// ollamaClient is the local HTTP client, grounded directly on the
// teacher's diagnostic/llm.go callOllama: the /api/generate endpoint,
// "stream": false, options.temperature/num_predict. Ollama has no
// credential of its own — only a host, defaulting to the local daemon.
type ollamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func init() {
	llm.Register("ollama", func(cfg llm.ProviderConfig) (llm.Client, bool, error) {
		baseURL := cfg.Credentials["OLLAMA_HOST"]
		if baseURL == "" {
			baseURL = cfg.BaseURL
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return &ollamaClient{
			baseURL:    baseURL,
			model:      cfg.Model,
			httpClient: &http.Client{Timeout: 120 * time.Second},
		}, true, nil
	})
}

func (c *ollamaClient) Name() string { return "ollama" }

func (c *ollamaClient) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	prompt := req.UserMessage
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.UserMessage
	}

	body := map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return llm.Response{Success: false, Provider: "ollama", ErrorMessage: err.Error()}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return llm.Response{Success: false, Provider: "ollama", ErrorMessage: err.Error()}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Response{Success: false, Provider: "ollama", ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{Success: false, Provider: "ollama", ErrorMessage: err.Error()}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return llm.Response{
			Success:      false,
			Provider:     "ollama",
			Model:        model,
			ErrorMessage: fmt.Sprintf("%d: %s", resp.StatusCode, string(bodyBytes)),
		}, nil
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return llm.Response{Success: false, Provider: "ollama", ErrorMessage: err.Error()}, nil
	}

	return llm.Response{Success: true, Provider: "ollama", Model: model, Content: parsed.Response}, nil
}

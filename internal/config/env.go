package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides mutates cfg in place with every WARDEN_* tuning
// variable that is set, applied after YAML decode so env always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WARDEN_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("WARDEN_BLOCKED_PROVIDERS"); v != "" {
		cfg.LLM.BlockedProviders = splitCSV(v)
	}
	if v := os.Getenv("WARDEN_FAST_TIER_PRIORITY"); v != "" {
		cfg.LLM.FastProviders = splitCSV(v)
	}
	if v := os.Getenv("WARDEN_LLM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLM.Concurrency = n
		}
	}
	if v := os.Getenv("WARDEN_SMART_MODEL"); v != "" {
		cfg.LLM.SmartModel = v
	}
	if v := os.Getenv("WARDEN_FAST_MODEL"); v != "" {
		cfg.LLM.FastModel = v
	}
	if v := os.Getenv("WARDEN_FILE_TIMEOUT_MIN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.FileTimeout.MinSeconds = f
		}
	}
	if v := os.Getenv("WARDEN_NON_INTERACTIVE"); v != "" {
		cfg.Pipeline.NonInteractive = isTruthy(v)
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Credentials holds the provider API keys/hosts read directly from the
// process environment. A provider whose credential is absent is silently
// disabled by the provider registry rather than treated as a config
// error — spec's stated behavior for missing credentials.
type Credentials struct {
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	AzureOpenAIAPIKey string
	AzureOpenAIEndpoint string
	GroqAPIKey        string
	OpenRouterAPIKey  string
	DeepSeekAPIKey    string
	QwenCodeAPIKey    string
	GeminiAPIKey      string
	OllamaHost        string
}

// LoadCredentials reads every provider credential env var the registry
// recognizes. Fields are left empty when the corresponding env var is
// unset; NewProvider implementations treat that as "this provider is
// unavailable", not an error.
func LoadCredentials() Credentials {
	return Credentials{
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AzureOpenAIAPIKey:   os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureOpenAIEndpoint: os.Getenv("AZURE_OPENAI_ENDPOINT"),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		OpenRouterAPIKey:    os.Getenv("OPENROUTER_API_KEY"),
		DeepSeekAPIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		QwenCodeAPIKey:      os.Getenv("QWEN_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		OllamaHost:          os.Getenv("OLLAMA_HOST"),
	}
}

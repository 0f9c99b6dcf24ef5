package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Request is a single text-generation call.
type Request struct {
	Instruction string
	Input       string
	MaxTokens   int
	Temperature float64
}

// Response holds the generated text.
type Response struct {
	Text       string
	TokensUsed int
}

// Generator is the capability every provider implements.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Canonical returns the provider name an alias refers to.
func Canonical(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic", "claude":
		return "anthropic"
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	case "ollama", "lmstudio", "local":
		return "ollama"
	default:
		return strings.ToLower(provider)
	}
}

// New creates a provider by name.
func New(provider, model string) (Generator, error) {
	if model == "" {
		model = DefaultModel(provider)
	}
	switch Canonical(provider) {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini":
		return NewGemini(model)
	case "ollama":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch Canonical(provider) {
	case "anthropic":
		return "claude-sonnet-4-5"
	case "openai":
		return "gpt-4.1-mini"
	case "gemini":
		return "gemini-2.5-flash"
	case "ollama":
		return "qwen2.5-coder"
	default:
		return ""
	}
}

// apiKey returns the first non-empty variable among names. Keys that are
// obviously unfilled templates are rejected.
func apiKey(names ...string) (string, error) {
	for _, name := range names {
		key := strings.TrimSpace(os.Getenv(name))
		if key == "" {
			continue
		}
		if strings.Contains(strings.ToLower(key), "placeholder") {
			return "", fmt.Errorf("%s holds a placeholder value", name)
		}
		return key, nil
	}
	if len(names) == 1 {
		return "", fmt.Errorf("%s environment variable is not set", names[0])
	}
	return "", fmt.Errorf("%s (or %s) environment variable is not set", names[0], strings.Join(names[1:], ", "))
}

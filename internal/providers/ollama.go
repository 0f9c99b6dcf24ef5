package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements Generator for Ollama, LM Studio and other local servers
// exposing the OpenAI-compatible API.
type Ollama struct {
	baseURL string
	chat    *chatClient
}

// NewOllama creates a new local provider. No API key is required unless the
// server asks for one via REFRACT_OLLAMA_API_KEY.
func NewOllama(model string) (*Ollama, error) {
	return newOllama(model, normalizeOllamaURL(os.Getenv("OLLAMA_HOST")),
		os.Getenv("REFRACT_OLLAMA_API_KEY"), &http.Client{Timeout: 300 * time.Second}), nil
}

func newOllama(model, baseURL, key string, hc *http.Client) *Ollama {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = hc
	return &Ollama{
		baseURL: baseURL,
		chat:    &chatClient{client: openai.NewClientWithConfig(cfg), model: model},
	}
}

// normalizeOllamaURL turns any of host, host/, host/v1 or
// host/v1/chat/completions into host/v1.
func normalizeOllamaURL(host string) string {
	if host == "" {
		host = defaultOllamaURL
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	return host + "/v1"
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	return o.chat.generate(ctx, req)
}

package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI implements Generator for OpenAI's chat-completions API.
type OpenAI struct {
	chat *chatClient
}

// NewOpenAI creates a new OpenAI provider. REFRACT_OPENAI_BASE_URL points
// it at a compatible endpoint.
func NewOpenAI(model string) (*OpenAI, error) {
	key, err := apiKey("OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	return newOpenAI(key, model, os.Getenv("REFRACT_OPENAI_BASE_URL"), &http.Client{Timeout: 60 * time.Second}), nil
}

func newOpenAI(key, model, baseURL string, hc *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/chat/completions")
	}
	cfg.HTTPClient = hc
	return &OpenAI{chat: &chatClient{
		client:           openai.NewClientWithConfig(cfg),
		model:            model,
		completionTokens: true,
	}}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	return o.chat.generate(ctx, req)
}

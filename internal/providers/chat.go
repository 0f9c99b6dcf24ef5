package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// chatClient speaks the OpenAI chat-completions protocol, which both OpenAI
// and the local OpenAI-compatible servers accept.
type chatClient struct {
	client *openai.Client
	model  string
	// completionTokens sends max_completion_tokens instead of max_tokens.
	completionTokens bool
}

func (c *chatClient) generate(ctx context.Context, req Request) (Response, error) {
	ccr := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Input},
		},
	}
	if req.MaxTokens > 0 {
		if c.completionTokens {
			ccr.MaxCompletionTokens = req.MaxTokens
		} else {
			ccr.MaxTokens = req.MaxTokens
		}
	}
	if req.Temperature > 0 {
		ccr.Temperature = float32(req.Temperature)
	}

	var resp Response
	err := retryWithBackoff(ctx, 3, func() error {
		out, err := c.client.CreateChatCompletion(ctx, ccr)
		if err != nil {
			return mapChatError(err)
		}
		if len(out.Choices) == 0 {
			return errors.New("no choices in response")
		}
		if out.Choices[0].Message.Content == "" {
			return errors.New("empty text content in API response")
		}
		resp = Response{
			Text:       out.Choices[0].Message.Content,
			TokensUsed: out.Usage.TotalTokens,
		}
		return nil
	})
	return resp, err
}

// mapChatError converts go-openai errors into the package's typed errors so
// retry and auth handling work the same for every provider.
func mapChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return fmt.Errorf("sending request: %w", err)
}

// Package llm wraps the OpenAI chat completions API behind a small
// interface so the narration pipeline can be tested with stubs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no narration model is configured.
const DefaultModel = "gpt-5.2"

// ErrRateLimited marks an error as retryable. Stub clients can return it
// directly; the OpenAI client maps HTTP 429 onto the same class.
var ErrRateLimited = errors.New("rate limited")

// Client is the completion surface the narration pipeline depends on.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options tune a single completion call.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// OpenAI implements Client using the OpenAI chat completions API.
type OpenAI struct {
	cli   *openai.Client
	model string
}

// NewOpenAI creates a client for the OpenAI API.
// Model defaults to DefaultModel if empty.
func NewOpenAI(apiKey, model string) *OpenAI {
	return NewOpenAIWithBaseURL(apiKey, model, "")
}

// NewOpenAIWithBaseURL points the client at an alternate endpoint,
// for local proxies and test servers.
func NewOpenAIWithBaseURL(apiKey, model, baseURL string) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{cli: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAI) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// IsRateLimit reports whether err is an HTTP 429 from the API or carries
// the ErrRateLimited sentinel.
func IsRateLimit(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

const maxAttempts = 3

// retryBase is the first retry delay; each further retry doubles it.
var retryBase = time.Second

// CompleteWithRetry calls Complete, retrying rate-limited attempts with
// doubling delays. Any other error returns immediately.
func CompleteWithRetry(ctx context.Context, c Client, prompt string, opts Options) (string, error) {
	backoff := retryBase
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}

		out, err := c.Complete(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

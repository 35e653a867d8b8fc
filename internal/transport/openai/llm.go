package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/metrics"
)

// LLM exposes the classify and generate capabilities over an OpenAI-compatible
// chat-completion API. Both capabilities share one client and model; they differ
// only in sampling parameters and metrics labels.
type LLM struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// LLMConfig holds the chat-completion provider settings.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	User    string
	Logger  *zap.Logger
}

// NewLLM creates an OpenAI-compatible chat-completion provider.
func NewLLM(cfg *LLMConfig) *LLM {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &LLM{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// Classify runs a deterministic, short-output completion for binary or
// keyword-style verdicts.
func (l *LLM) Classify(ctx context.Context, system, user string) (string, error) {
	return l.complete(ctx, "classify", system, user, 64)
}

// Generate runs a full answer completion.
func (l *LLM) Generate(ctx context.Context, system, user string) (string, error) {
	return l.complete(ctx, "generate", system, user, 0)
}

func (l *LLM) complete(ctx context.Context, op, system, user string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		User:        l.user,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	start := time.Now()

	resp, err := l.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", parseAPIError(op, err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("%s: empty completion response", op)
	}

	metrics.LLMRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(op).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(op, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(op, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.LLMTokensTotal.WithLabelValues(op, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (l *LLM) HealthCheck(ctx context.Context) error {
	if _, err := l.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(op string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s", op, reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("%s API error %d: %s", op, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s", op, apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("%s request failed: %w", op, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"chatd/pkg/config"
	"chatd/pkg/logger"
	"chatd/pkg/models"
)

// OpenAI implements Client against an OpenAI-compatible chat completion
// endpoint. The base URL can point at any compatible provider.
type OpenAI struct {
	cfg    config.CompletionConfig
	client *openai.Client
}

// NewOpenAI builds a completion client from config. A missing API key is
// tolerated here; Complete reports it as a not_configured failure before
// attempting any network call.
func NewOpenAI(cfg config.CompletionConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	o := &OpenAI{cfg: cfg}
	if cfg.APIKey != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			cc.BaseURL = cfg.BaseURL
		}
		if d := cfg.Timeout.Duration(); d > 0 {
			cc.HTTPClient = &http.Client{Timeout: d}
		}
		o.client = openai.NewClientWithConfig(cc)
	}
	return o
}

// Complete sends the full conversation context to the provider and
// returns the reply text. All failures carry a Kind.
func (o *OpenAI) Complete(ctx context.Context, history []models.Message) (string, error) {
	if o.client == nil {
		return "", NewError(KindNotConfigured, "completion api key is not configured", nil)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Messages:    msgs,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			logger.Warn("completion_rejected", "status", apiErr.HTTPStatusCode, "message", apiErr.Message)
			return "", NewError(KindProviderRejected, "completion provider rejected the request", err)
		}
		logger.Warn("completion_transport_failed", "error", err)
		return "", NewError(KindTransport, "completion provider unreachable", err)
	}
	if len(resp.Choices) == 0 {
		return "", NewError(KindMalformedResponse, "completion response has no choices", nil)
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", NewError(KindMalformedResponse, "completion response has empty content", nil)
	}
	return reply, nil
}

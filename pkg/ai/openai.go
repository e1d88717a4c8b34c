package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codequest-labs/codequest-api/internal/observability"
)

// OpenAIConfig defines configuration options for the OpenAI mentor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	MaxRetries  int
	BaseBackoff time.Duration
	Logger      zerolog.Logger
}

// OpenAIMentor implements Mentor against the OpenAI chat completion API.
type OpenAIMentor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIMentor builds a new mentor client using the provided configuration.
func NewOpenAIMentor(cfg OpenAIConfig) (*OpenAIMentor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	return &OpenAIMentor{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/codequest-labs/codequest-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "mentor_openai").Logger(),
	}, nil
}

// Reply sends the conversation to OpenAI, retrying transient failures.
func (m *OpenAIMentor) Reply(parent context.Context, messages []Message) (Reply, error) {
	ctx, span := m.tracer.Start(parent, "openai.reply", trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	reply, err := withRetries(ctx, m.cfg.MaxRetries, m.cfg.BaseBackoff, func(ctx context.Context) (Reply, error) {
		return m.complete(ctx, messages)
	})
	observability.MentorDuration().WithLabelValues("openai", m.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MentorFailures().WithLabelValues("openai", m.cfg.Model, causeLabel(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Reply{}, err
	}

	return reply, nil
}

func (m *OpenAIMentor) complete(ctx context.Context, messages []Message) (Reply, error) {
	chat := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chat = append(chat, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		Messages:    chat,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
	})
	if err != nil {
		classified := classifyOpenAIError(err)
		m.logger.Warn().Err(err).Str("model", m.cfg.Model).Msg("openai completion failed")
		return Reply{}, classified
	}

	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return Reply{
		Content: strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:   resp.Model,
	}, nil
}

func causeLabel(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrUnauthorized):
		return "auth"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 && apiErrCode(apiErr) == "insufficient_quota":
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Message)
		}
		return err
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func apiErrCode(apiErr *openai.APIError) string {
	if code, ok := apiErr.Code.(string); ok {
		return strings.ToLower(code)
	}
	return ""
}

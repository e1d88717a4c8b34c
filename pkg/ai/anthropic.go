package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codequest-labs/codequest-api/internal/observability"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicConfig defines configuration options for the Anthropic mentor.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	MaxRetries  int
	BaseBackoff time.Duration
	BaseURL     string
	Logger      zerolog.Logger
}

// AnthropicMentor implements Mentor against the Anthropic Messages API.
type AnthropicMentor struct {
	client *resty.Client
	cfg    AnthropicConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicMentor builds a new mentor client using the provided configuration.
func NewAnthropicMentor(cfg AnthropicConfig) (*AnthropicMentor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicBaseURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(60 * time.Second).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("content-type", "application/json")

	return &AnthropicMentor{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/codequest-labs/codequest-api/pkg/ai/anthropic"),
		logger: cfg.Logger.With().Str("component", "mentor_anthropic").Logger(),
	}, nil
}

// Reply sends the conversation to Anthropic, retrying transient failures.
func (m *AnthropicMentor) Reply(parent context.Context, messages []Message) (Reply, error) {
	ctx, span := m.tracer.Start(parent, "anthropic.reply", trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	reply, err := withRetries(ctx, m.cfg.MaxRetries, m.cfg.BaseBackoff, func(ctx context.Context) (Reply, error) {
		return m.send(ctx, messages)
	})
	observability.MentorDuration().WithLabelValues("anthropic", m.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MentorFailures().WithLabelValues("anthropic", m.cfg.Model, causeLabel(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Reply{}, err
	}

	return reply, nil
}

func (m *AnthropicMentor) send(ctx context.Context, messages []Message) (Reply, error) {
	req := anthropicRequest{
		Model:     m.cfg.Model,
		MaxTokens: m.cfg.MaxTokens,
	}

	// Anthropic takes the system prompt as a top-level field rather than
	// as a message in the conversation.
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			req.System = msg.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}

	var body anthropicResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		SetError(&body).
		Post("/v1/messages")
	if err != nil {
		m.logger.Warn().Err(err).Str("model", m.cfg.Model).Msg("anthropic request failed")
		return Reply{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.IsError() {
		classified := classifyAnthropicStatus(resp.StatusCode(), body.Error.Message)
		m.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("error_type", body.Error.Type).
			Str("model", m.cfg.Model).
			Msg("anthropic request rejected")
		return Reply{}, classified
	}

	var parts []string
	for _, block := range body.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	if len(parts) == 0 {
		return Reply{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	model := body.Model
	if model == "" {
		model = m.cfg.Model
	}

	return Reply{Content: strings.TrimSpace(strings.Join(parts, "\n")), Model: model}, nil
}

func classifyAnthropicStatus(status int, message string) error {
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case status == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	case status >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, message)
	default:
		return fmt.Errorf("anthropic rejected request (status %d): %s", status, message)
	}
}

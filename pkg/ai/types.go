package ai

import (
	"context"
	"errors"
)

// Chat roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Classified failure causes surfaced to callers after retries are exhausted.
var (
	// ErrRateLimited indicates the provider rejected for request rate.
	ErrRateLimited = errors.New("mentor provider rate limited")
	// ErrQuotaExceeded indicates the account has no remaining quota.
	ErrQuotaExceeded = errors.New("mentor provider quota exceeded")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("mentor provider rejected credentials")
	// ErrUnavailable indicates the provider kept failing with server errors.
	ErrUnavailable = errors.New("mentor provider unavailable")
)

// Message is one turn of mentor conversation sent to the model.
type Message struct {
	Role    string
	Content string
}

// Reply is the model's answer to a mentor conversation.
type Reply struct {
	Content string
	Model   string
}

// Mentor describes an LLM capable of answering mentor-chat conversations.
type Mentor interface {
	Reply(ctx context.Context, messages []Message) (Reply, error)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
	"github.com/codequest-labs/codequest-api/pkg/ai"
)

const (
	mentorHistoryLimit = 20

	mentorSystemPrompt = "You are CodeQuest's coding mentor. Help the learner understand " +
		"programming concepts with short, concrete explanations and small code examples. " +
		"Encourage them to solve exercises themselves instead of handing over full solutions."
)

// MentorService answers learner questions through the configured LLM provider
// and keeps a per-user conversation history.
type MentorService interface {
	Ask(ctx context.Context, userID uint, req dto.MentorAskRequest) (dto.MentorMessageResponse, error)
	History(ctx context.Context, userID uint, limit int) ([]dto.MentorMessageResponse, error)
}

type mentorService struct {
	messages  repository.MentorRepository
	mentor    ai.Mentor
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewMentorService constructs the mentor chat service.
func NewMentorService(
	messages repository.MentorRepository,
	mentor ai.Mentor,
	validate *validator.Validate,
	logger zerolog.Logger,
) MentorService {
	return &mentorService{
		messages:  messages,
		mentor:    mentor,
		validate:  validate,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/codequest-labs/codequest-api/internal/service/mentor"),
		logger:    logger.With().Str("component", "mentor_service").Logger(),
	}
}

func (s *mentorService) Ask(ctx context.Context, userID uint, req dto.MentorAskRequest) (dto.MentorMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "mentor.ask")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return dto.MentorMessageResponse{}, err
	}

	question := strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if question == "" {
		return dto.MentorMessageResponse{}, fmt.Errorf("message is empty after sanitization")
	}

	userMessage := models.MentorMessage{
		UserID:  userID,
		Role:    models.MentorRoleUser,
		Content: question,
	}
	if err := s.messages.Create(ctx, &userMessage); err != nil {
		return dto.MentorMessageResponse{}, fmt.Errorf("failed to store mentor question: %w", err)
	}

	history, err := s.messages.ListRecentByUser(ctx, userID, mentorHistoryLimit)
	if err != nil {
		return dto.MentorMessageResponse{}, fmt.Errorf("failed to load mentor history: %w", err)
	}

	conversation := make([]ai.Message, 0, len(history)+1)
	conversation = append(conversation, ai.Message{Role: ai.RoleSystem, Content: mentorSystemPrompt})
	for _, msg := range history {
		conversation = append(conversation, ai.Message{Role: msg.Role, Content: msg.Content})
	}

	reply, err := s.mentor.Reply(ctx, conversation)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("mentor reply failed")
		return dto.MentorMessageResponse{}, err
	}

	assistantMessage := models.MentorMessage{
		UserID:  userID,
		Role:    models.MentorRoleAssistant,
		Content: reply.Content,
	}
	if err := s.messages.Create(ctx, &assistantMessage); err != nil {
		return dto.MentorMessageResponse{}, fmt.Errorf("failed to store mentor reply: %w", err)
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("model", reply.Model).
		Msg("mentor answered")

	return dto.NewMentorMessageResponse(assistantMessage), nil
}

func (s *mentorService) History(ctx context.Context, userID uint, limit int) ([]dto.MentorMessageResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = mentorHistoryLimit
	}

	history, err := s.messages.ListRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentor history: %w", err)
	}

	return dto.NewMentorMessageResponseSlice(history), nil
}

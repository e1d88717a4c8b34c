package dto

import (
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// MentorAskRequest carries one user message to the mentor.
type MentorAskRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// MentorMessageResponse is one turn of mentor chat history.
type MentorMessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMentorMessageResponse converts a mentor message model.
func NewMentorMessageResponse(message models.MentorMessage) MentorMessageResponse {
	return MentorMessageResponse{
		ID:        message.ID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

// NewMentorMessageResponseSlice converts a slice of mentor messages.
func NewMentorMessageResponseSlice(messages []models.MentorMessage) []MentorMessageResponse {
	responses := make([]MentorMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewMentorMessageResponse(message))
	}
	return responses
}

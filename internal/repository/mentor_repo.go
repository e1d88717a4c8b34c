package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// MentorRepository persists mentor chat history.
type MentorRepository interface {
	Create(ctx context.Context, message *models.MentorMessage) error
	ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.MentorMessage, error)
}

type mentorRepository struct {
	db *gorm.DB
}

// NewMentorRepository constructs a mentor chat repository.
func NewMentorRepository(db *gorm.DB) MentorRepository {
	return &mentorRepository{db: db}
}

func (r *mentorRepository) Create(ctx context.Context, message *models.MentorMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *mentorRepository) ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.MentorMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	var messages []models.MentorMessage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	// Reverse into chronological order for prompt assembly.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

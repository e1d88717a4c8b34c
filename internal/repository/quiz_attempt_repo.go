package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// QuizAttemptFilter narrows attempt-log queries.
type QuizAttemptFilter struct {
	UserID    *uint
	QuizID    *uint
	Completed *bool
}

// QuizAttemptRepository provides access to the append-only attempt log.
type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	List(ctx context.Context, filter QuizAttemptFilter) ([]models.QuizAttempt, error)
}

type quizAttemptRepository struct {
	db *gorm.DB
}

// NewQuizAttemptRepository instantiates the repository.
func NewQuizAttemptRepository(db *gorm.DB) QuizAttemptRepository {
	return &quizAttemptRepository{db: db}
}

func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *quizAttemptRepository) List(ctx context.Context, filter QuizAttemptFilter) ([]models.QuizAttempt, error) {
	query := r.db.WithContext(ctx).Model(&models.QuizAttempt{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.QuizID != nil {
		query = query.Where("quiz_id = ?", *filter.QuizID)
	}

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("completed_at ASC").Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

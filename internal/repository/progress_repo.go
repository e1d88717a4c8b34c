package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// ProgressRepository provides access to per-user progress records.
type ProgressRepository interface {
	// GetOrCreate returns the user's progress record, creating an empty one
	// if none exists yet.
	GetOrCreate(ctx context.Context, userID uint) (models.ProgressRecord, error)
	Save(ctx context.Context, record *models.ProgressRecord) error
	// ClearQuizScores removes the cached quiz-score projection so the
	// reconciler can rebuild it from the attempt log.
	ClearQuizScores(ctx context.Context, recordID uint) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ProgressRecord{}).
		Preload("CompletedLessons").
		Preload("CompletedChallenges").
		Preload("QuizScores").
		Preload("Achievements")
}

func (r *progressRepository) GetOrCreate(ctx context.Context, userID uint) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	err := r.baseQuery(ctx).Where("user_id = ?", userID).First(&record).Error
	if err == nil {
		return record, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProgressRecord{}, err
	}

	record = models.ProgressRecord{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return models.ProgressRecord{}, err
	}

	return record, nil
}

func (r *progressRepository) Save(ctx context.Context, record *models.ProgressRecord) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(record).Error
}

func (r *progressRepository) ClearQuizScores(ctx context.Context, recordID uint) error {
	return r.db.WithContext(ctx).
		Where("progress_record_id = ?", recordID).
		Delete(&models.QuizScore{}).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// AchievementRepository provides access to the achievement catalog.
type AchievementRepository interface {
	List(ctx context.Context) ([]models.Achievement, error)
	UpsertBatch(ctx context.Context, achievements []models.Achievement) (int64, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository constructs an achievement repository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) List(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	return achievements, nil
}

func (r *achievementRepository) UpsertBatch(ctx context.Context, achievements []models.Achievement) (int64, error) {
	if len(achievements) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "category", "icon", "color", "target_value", "xp_reward", "requirement", "updated_at"}),
		}).
		Create(&achievements)

	return result.RowsAffected, result.Error
}

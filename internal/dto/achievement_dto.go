package dto

import (
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// AchievementResponse merges a catalog entry with the user's tracked state.
type AchievementResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	TargetValue int        `json:"target_value"`
	XPReward    int        `json:"xp_reward"`
	Progress    int        `json:"progress"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

// NewAchievementResponse combines a catalog entry with optional user progress.
func NewAchievementResponse(achievement models.Achievement, state *models.AchievementProgress) AchievementResponse {
	response := AchievementResponse{
		ID:          achievement.ID,
		Title:       achievement.Title,
		Description: achievement.Description,
		Category:    achievement.Category,
		Icon:        achievement.Icon,
		Color:       achievement.Color,
		TargetValue: achievement.TargetValue,
		XPReward:    achievement.XPReward,
	}

	if state != nil {
		response.Progress = state.Progress
		response.Earned = state.Earned
		response.EarnedAt = state.EarnedAt
	}

	return response
}

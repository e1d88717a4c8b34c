package dto

import (
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// UpdateCurrentLessonRequest moves the user's bookmark within a lesson.
type UpdateCurrentLessonRequest struct {
	LessonID uint    `json:"lesson_id" validate:"required"`
	Progress float64 `json:"progress" validate:"gte=0,lte=1"`
}

// TrackTimeRequest accumulates coding time in minutes.
type TrackTimeRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0,lte=1440"`
}

// CompletionEntry is one completed lesson or challenge.
type CompletionEntry struct {
	ID          uint      `json:"id"`
	CompletedAt time.Time `json:"completed_at"`
}

// QuizScoreEntry is one cached quiz score.
type QuizScoreEntry struct {
	QuizID      uint      `json:"quiz_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// AchievementProgressEntry is one achievement's tracked state.
type AchievementProgressEntry struct {
	AchievementID uint       `json:"achievement_id"`
	Progress      int        `json:"progress"`
	Earned        bool       `json:"earned"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
}

// ProgressResponse is the public projection of a progress record.
type ProgressResponse struct {
	UserID                uint                       `json:"user_id"`
	CurrentLessonID       *uint                      `json:"current_lesson_id"`
	CurrentLessonProgress float64                    `json:"current_lesson_progress"`
	TotalCodingTime       int                        `json:"total_coding_time"`
	CompletedLessons      []CompletionEntry          `json:"completed_lessons"`
	CompletedChallenges   []CompletionEntry          `json:"completed_challenges"`
	QuizScores            []QuizScoreEntry           `json:"quiz_scores"`
	Achievements          []AchievementProgressEntry `json:"achievements"`
}

// CompleteLessonResponse reports the result of a lesson completion.
type CompleteLessonResponse struct {
	LessonID       uint `json:"lesson_id"`
	AlreadyDone    bool `json:"already_done"`
	XPEarned       int  `json:"xp_earned"`
	LevelsGained   int  `json:"levels_gained"`
	TotalCompleted int  `json:"total_completed"`
}

// NewProgressResponse converts a progress record into its response projection.
func NewProgressResponse(record models.ProgressRecord) ProgressResponse {
	lessons := make([]CompletionEntry, 0, len(record.CompletedLessons))
	for _, entry := range record.CompletedLessons {
		lessons = append(lessons, CompletionEntry{ID: entry.LessonID, CompletedAt: entry.CompletedAt})
	}

	challenges := make([]CompletionEntry, 0, len(record.CompletedChallenges))
	for _, entry := range record.CompletedChallenges {
		challenges = append(challenges, CompletionEntry{ID: entry.ChallengeID, CompletedAt: entry.CompletedAt})
	}

	scores := make([]QuizScoreEntry, 0, len(record.QuizScores))
	for _, entry := range record.QuizScores {
		scores = append(scores, QuizScoreEntry{
			QuizID:      entry.QuizID,
			Score:       entry.Score,
			MaxScore:    entry.MaxScore,
			CompletedAt: entry.CompletedAt,
		})
	}

	achievements := make([]AchievementProgressEntry, 0, len(record.Achievements))
	for _, entry := range record.Achievements {
		achievements = append(achievements, AchievementProgressEntry{
			AchievementID: entry.AchievementID,
			Progress:      entry.Progress,
			Earned:        entry.Earned,
			EarnedAt:      entry.EarnedAt,
		})
	}

	return ProgressResponse{
		UserID:                record.UserID,
		CurrentLessonID:       record.CurrentLessonID,
		CurrentLessonProgress: record.CurrentLessonProgress,
		TotalCodingTime:       record.TotalCodingTime,
		CompletedLessons:      lessons,
		CompletedChallenges:   challenges,
		QuizScores:            scores,
		Achievements:          achievements,
	}
}

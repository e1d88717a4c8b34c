package models

import "time"

// ProgressRecord aggregates a user's learning progress. One record exists per
// user and is created lazily on first access.
type ProgressRecord struct {
	ID                    uint                  `gorm:"primaryKey" json:"id"`
	UserID                uint                  `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentLessonID       *uint                 `json:"current_lesson_id"`
	CurrentLessonProgress float64               `gorm:"not null;default:0" json:"current_lesson_progress"`
	TotalCodingTime       int                   `gorm:"not null;default:0" json:"total_coding_time"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
	CompletedLessons      []LessonCompletion    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"completed_lessons"`
	CompletedChallenges   []ChallengeCompletion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"completed_challenges"`
	QuizScores            []QuizScore           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quiz_scores"`
	Achievements          []AchievementProgress `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"achievements"`
}

// HasCompletedLesson reports whether the lesson is already recorded.
func (p ProgressRecord) HasCompletedLesson(lessonID uint) bool {
	for _, entry := range p.CompletedLessons {
		if entry.LessonID == lessonID {
			return true
		}
	}
	return false
}

// HasCompletedChallenge reports whether the challenge is already recorded.
func (p ProgressRecord) HasCompletedChallenge(challengeID uint) bool {
	for _, entry := range p.CompletedChallenges {
		if entry.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// LessonCompletion marks one finished lesson; lesson ids are unique within a
// progress record.
type LessonCompletion struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProgressRecordID uint      `gorm:"not null;index;uniqueIndex:idx_progress_lesson" json:"-"`
	LessonID         uint      `gorm:"not null;uniqueIndex:idx_progress_lesson" json:"lesson_id"`
	CompletedAt      time.Time `json:"completed_at"`
}

// ChallengeCompletion marks one finished coding challenge.
type ChallengeCompletion struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProgressRecordID uint      `gorm:"not null;index;uniqueIndex:idx_progress_challenge" json:"-"`
	ChallengeID      uint      `gorm:"not null;uniqueIndex:idx_progress_challenge" json:"challenge_id"`
	CompletedAt      time.Time `json:"completed_at"`
}

// QuizScore is the cached projection of one quiz attempt. The reconciler
// rebuilds the whole set from the attempt log on every run.
type QuizScore struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProgressRecordID uint      `gorm:"not null;index" json:"-"`
	QuizID           uint      `gorm:"not null" json:"quiz_id"`
	Score            float64   `gorm:"not null" json:"score"`
	MaxScore         float64   `gorm:"not null;default:100" json:"max_score"`
	CompletedAt      time.Time `json:"completed_at"`
}

// AchievementProgress tracks one achievement for one progress record.
// Entries are append-or-update only: they are never removed and Earned never
// transitions back to false.
type AchievementProgress struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProgressRecordID uint       `gorm:"not null;index;uniqueIndex:idx_progress_achievement" json:"-"`
	AchievementID    uint       `gorm:"not null;uniqueIndex:idx_progress_achievement" json:"achievement_id"`
	Progress         int        `gorm:"not null;default:0" json:"progress"`
	Earned           bool       `gorm:"not null;default:false" json:"earned"`
	EarnedAt         *time.Time `json:"earned_at"`
}

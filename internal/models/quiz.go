package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// PassingScore is the minimum score (out of 100) required to pass a quiz.
const PassingScore = 70.0

// Quiz is a scored set of multiple-choice questions attached to a course.
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	XPReward  int            `gorm:"not null;default:0" json:"xp_reward"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Questions []QuizQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// QuizQuestion holds one multiple-choice question. Options is a JSON array of
// option strings; CorrectOption is the index into that array.
type QuizQuestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	QuizID        uint           `gorm:"not null;index" json:"quiz_id"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:json" json:"options"`
	CorrectOption int            `gorm:"not null" json:"-"`
	Position      int            `gorm:"not null;default:0" json:"position"`
}

// QuizAttempt is an immutable log entry for a submitted quiz. The attempt log
// is the ground truth for quiz-derived statistics; ProgressRecord.QuizScores
// is a cache rebuilt from it.
type QuizAttempt struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	QuizID      uint           `gorm:"not null;index" json:"quiz_id"`
	CourseID    uint           `gorm:"not null" json:"course_id"`
	Answers     datatypes.JSON `gorm:"type:json" json:"answers"`
	Score       float64        `gorm:"not null" json:"score"`
	MaxScore    float64        `gorm:"not null;default:100" json:"max_score"`
	Passed      bool           `gorm:"not null" json:"passed"`
	Completed   bool           `gorm:"not null;default:true" json:"completed"`
	XPEarned    int            `gorm:"not null;default:0" json:"xp_earned"`
	CompletedAt time.Time      `json:"completed_at"`
}

// IsPerfect reports whether the attempt counts as a perfect score. Scores are
// rounded to the nearest integer first, so 99.6 qualifies.
func (a QuizAttempt) IsPerfect() bool {
	return math.Round(a.Score) >= 100
}

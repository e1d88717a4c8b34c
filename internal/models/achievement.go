package models

import "time"

// RequirementKey selects which derived metric an achievement's progress is
// computed from.
type RequirementKey string

const (
	RequirementCompletedLessons RequirementKey = "completedLessons"
	RequirementStreak           RequirementKey = "streak"
	RequirementCompletedQuizzes RequirementKey = "completedQuizzes"
	RequirementPerfectQuizzes   RequirementKey = "perfectQuizzes"
	RequirementQuizAverage      RequirementKey = "quizAverage"
)

// Valid reports whether the key is one of the known requirement kinds.
func (k RequirementKey) Valid() bool {
	switch k {
	case RequirementCompletedLessons, RequirementStreak, RequirementCompletedQuizzes,
		RequirementPerfectQuizzes, RequirementQuizAverage:
		return true
	}
	return false
}

// Achievement is a catalog entry describing one earnable milestone. The
// catalog is read-only at runtime relative to the reconciler.
type Achievement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:64" json:"category"`
	Icon        string         `gorm:"size:64" json:"icon"`
	Color       string         `gorm:"size:32" json:"color"`
	TargetValue int            `gorm:"not null" json:"target_value"`
	XPReward    int            `gorm:"not null" json:"xp_reward"`
	Requirement RequirementKey `gorm:"size:64;not null" json:"requirement"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultAchievements returns the catalog seeded on a fresh installation.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{Title: "First Steps", Description: "Complete your first lesson", Category: "lessons", Icon: "footprints", Color: "green", TargetValue: 1, XPReward: 50, Requirement: RequirementCompletedLessons},
		{Title: "Getting Somewhere", Description: "Complete 10 lessons", Category: "lessons", Icon: "map", Color: "green", TargetValue: 10, XPReward: 150, Requirement: RequirementCompletedLessons},
		{Title: "Course Veteran", Description: "Complete 50 lessons", Category: "lessons", Icon: "graduation-cap", Color: "gold", TargetValue: 50, XPReward: 500, Requirement: RequirementCompletedLessons},
		{Title: "Warming Up", Description: "Reach a 3-day login streak", Category: "streak", Icon: "flame", Color: "orange", TargetValue: 3, XPReward: 75, Requirement: RequirementStreak},
		{Title: "Week Warrior", Description: "Reach a 7-day login streak", Category: "streak", Icon: "flame", Color: "orange", TargetValue: 7, XPReward: 200, Requirement: RequirementStreak},
		{Title: "Unstoppable", Description: "Reach a 30-day login streak", Category: "streak", Icon: "rocket", Color: "red", TargetValue: 30, XPReward: 1000, Requirement: RequirementStreak},
		{Title: "Quiz Rookie", Description: "Finish your first quiz", Category: "quizzes", Icon: "pencil", Color: "blue", TargetValue: 1, XPReward: 50, Requirement: RequirementCompletedQuizzes},
		{Title: "Quiz Regular", Description: "Finish 10 quizzes", Category: "quizzes", Icon: "clipboard", Color: "blue", TargetValue: 10, XPReward: 250, Requirement: RequirementCompletedQuizzes},
		{Title: "Flawless", Description: "Score 100% on a quiz", Category: "quizzes", Icon: "star", Color: "gold", TargetValue: 1, XPReward: 100, Requirement: RequirementPerfectQuizzes},
		{Title: "Perfectionist", Description: "Score 100% on 5 quizzes", Category: "quizzes", Icon: "trophy", Color: "gold", TargetValue: 5, XPReward: 400, Requirement: RequirementPerfectQuizzes},
		{Title: "Consistent Performer", Description: "Hold a quiz average of 80", Category: "quizzes", Icon: "chart-line", Color: "purple", TargetValue: 80, XPReward: 300, Requirement: RequirementQuizAverage},
	}
}

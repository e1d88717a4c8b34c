package dto

import "encoding/json"

// SeedAchievementsRequest triggers seeding of the achievement catalog. When
// Items is empty the built-in default catalog is used.
type SeedAchievementsRequest struct {
	Token string                `json:"token" validate:"required"`
	Items []SeedAchievementItem `json:"items"`
}

// SeedAchievementItem is one catalog entry supplied by the seeder.
type SeedAchievementItem struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	TargetValue int    `json:"target_value" validate:"required,gt=0"`
	XPReward    int    `json:"xp_reward" validate:"gte=0"`
	Requirement string `json:"requirement" validate:"required"`
}

// SeedContentRequest seeds courses and quizzes. Quiz payloads are raw JSON
// validated against the quiz schema before insertion.
type SeedContentRequest struct {
	Token   string            `json:"token" validate:"required"`
	Courses []SeedCourseItem  `json:"courses"`
	Quizzes []json.RawMessage `json:"quizzes"`
}

// SeedCourseItem is one course with its lessons.
type SeedCourseItem struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Slug        string           `json:"slug" validate:"required"`
	Language    string           `json:"language"`
	Difficulty  string           `json:"difficulty"`
	Lessons     []SeedLessonItem `json:"lessons"`
}

// SeedLessonItem is one lesson within a seeded course.
type SeedLessonItem struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	Position int    `json:"position"`
	XPReward int    `json:"xp_reward" validate:"gte=0"`
}

// SeedResult reports how many records each seeding call touched.
type SeedResult struct {
	Affected int64 `json:"affected"`
}

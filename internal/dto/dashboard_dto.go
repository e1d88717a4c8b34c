package dto

// QuizStats summarises the attempt log for the dashboard.
type QuizStats struct {
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
	PerfectCount int     `json:"perfect_count"`
}

// DashboardResponse aggregates the user's gamification state.
type DashboardResponse struct {
	Level               int                   `json:"level"`
	XP                  int                   `json:"xp"`
	XPToNextLevel       int                   `json:"xp_to_next_level"`
	Streak              int                   `json:"streak"`
	LessonsCompleted    int                   `json:"lessons_completed"`
	ChallengesCompleted int                   `json:"challenges_completed"`
	TotalCodingTime     int                   `json:"total_coding_time"`
	QuizStats           QuizStats             `json:"quiz_stats"`
	AchievementsEarned  int                   `json:"achievements_earned"`
	RecentAttempts      []QuizAttemptResponse `json:"recent_attempts"`
}

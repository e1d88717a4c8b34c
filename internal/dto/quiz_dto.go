package dto

import (
	"encoding/json"
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// QuizQuestionResponse exposes one question without its answer key.
type QuizQuestionResponse struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
}

// QuizResponse is the public projection of a quiz definition.
type QuizResponse struct {
	ID        uint                   `json:"id"`
	CourseID  uint                   `json:"course_id"`
	Title     string                 `json:"title"`
	XPReward  int                    `json:"xp_reward"`
	Questions []QuizQuestionResponse `json:"questions"`
}

// QuizSubmitRequest carries one selected option index per question, by position.
type QuizSubmitRequest struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}

// QuizSubmitResponse reports the outcome of a graded submission.
type QuizSubmitResponse struct {
	AttemptID      uint    `json:"attempt_id"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	Passed         bool    `json:"passed"`
	XPEarned       int     `json:"xp_earned"`
	LevelsGained   int     `json:"levels_gained"`
}

// QuizAttemptResponse is the public projection of one attempt-log entry.
type QuizAttemptResponse struct {
	ID          uint      `json:"id"`
	QuizID      uint      `json:"quiz_id"`
	CourseID    uint      `json:"course_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Passed      bool      `json:"passed"`
	XPEarned    int       `json:"xp_earned"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewQuizResponse converts a quiz model into its response projection.
func NewQuizResponse(quiz models.Quiz) QuizResponse {
	questions := make([]QuizQuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		var options []string
		if len(question.Options) > 0 {
			_ = json.Unmarshal(question.Options, &options)
		}
		questions = append(questions, QuizQuestionResponse{
			ID:       question.ID,
			Prompt:   question.Prompt,
			Options:  options,
			Position: question.Position,
		})
	}

	return QuizResponse{
		ID:        quiz.ID,
		CourseID:  quiz.CourseID,
		Title:     quiz.Title,
		XPReward:  quiz.XPReward,
		Questions: questions,
	}
}

// NewQuizResponseSlice converts a slice of quiz models.
func NewQuizResponseSlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, NewQuizResponse(quiz))
	}
	return responses
}

// NewQuizAttemptResponse converts an attempt-log entry.
func NewQuizAttemptResponse(attempt models.QuizAttempt) QuizAttemptResponse {
	return QuizAttemptResponse{
		ID:          attempt.ID,
		QuizID:      attempt.QuizID,
		CourseID:    attempt.CourseID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Passed:      attempt.Passed,
		XPEarned:    attempt.XPEarned,
		CompletedAt: attempt.CompletedAt,
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

var (
	// ErrQuizNotFound indicates a quiz could not be found.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEmpty indicates a quiz has no questions to grade.
	ErrQuizEmpty = errors.New("quiz has no questions")
	// ErrAnswerCountMismatch indicates the submission does not cover every question.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// QuizService serves quiz definitions and grades submissions.
type QuizService interface {
	ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error)
	Get(ctx context.Context, id uint) (dto.QuizResponse, error)
	Submit(ctx context.Context, userID, quizID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmitResponse, error)
	ListAttempts(ctx context.Context, userID uint) ([]dto.QuizAttemptResponse, error)
}

type quizService struct {
	quizzes      repository.QuizRepository
	attempts     repository.QuizAttemptRepository
	users        repository.UserRepository
	achievements AchievementService
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewQuizService constructs a QuizService instance.
func NewQuizService(quizzes repository.QuizRepository, attempts repository.QuizAttemptRepository, users repository.UserRepository, achievements AchievementService, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:      quizzes,
		attempts:     attempts,
		users:        users,
		achievements: achievements,
		validator:    validate,
		logger:       logger.With().Str("component", "quiz_service").Logger(),
		now:          time.Now,
	}
}

func (s *quizService) ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizResponseSlice(quizzes), nil
}

func (s *quizService) Get(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Submit(ctx context.Context, userID, quizID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizSubmitResponse{}, ErrQuizNotFound
		}
		return dto.QuizSubmitResponse{}, err
	}

	if len(quiz.Questions) == 0 {
		return dto.QuizSubmitResponse{}, ErrQuizEmpty
	}

	if len(payload.Answers) != len(quiz.Questions) {
		return dto.QuizSubmitResponse{}, fmt.Errorf("%w: got %d answers for %d questions", ErrAnswerCountMismatch, len(payload.Answers), len(quiz.Questions))
	}

	correct := 0
	for i, question := range quiz.Questions {
		if payload.Answers[i] == question.CorrectOption {
			correct++
		}
	}

	score := float64(correct) / float64(len(quiz.Questions)) * 100
	passed := score >= models.PassingScore

	xpEarned := 0
	levelsGained := 0
	if passed {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return dto.QuizSubmitResponse{}, err
		}

		xpEarned = quiz.XPReward
		user.XP += xpEarned
		levelsGained = user.ApplyLevelUps()
		if err := s.users.Update(ctx, &user); err != nil {
			return dto.QuizSubmitResponse{}, err
		}
	}

	answersJSON, err := json.Marshal(payload.Answers)
	if err != nil {
		return dto.QuizSubmitResponse{}, fmt.Errorf("failed to encode answers: %w", err)
	}

	// The attempt is logged whether or not it passed: the attempt log
	// counts all completed attempts, so quiz-count achievements advance
	// even on a fail.
	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quiz.ID,
		CourseID:    quiz.CourseID,
		Answers:     answersJSON,
		Score:       score,
		MaxScore:    100,
		Passed:      passed,
		Completed:   true,
		XPEarned:    xpEarned,
		CompletedAt: s.now(),
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	// Reconciliation failure does not fail the submission.
	if err := s.achievements.Sync(ctx, userID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("achievement sync failed after quiz submission")
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("quiz_id", quiz.ID).
		Float64("score", score).
		Bool("passed", passed).
		Msg("quiz submitted")

	return dto.QuizSubmitResponse{
		AttemptID:      attempt.ID,
		Score:          score,
		MaxScore:       100,
		CorrectCount:   correct,
		TotalQuestions: len(quiz.Questions),
		Passed:         passed,
		XPEarned:       xpEarned,
		LevelsGained:   levelsGained,
	}, nil
}

func (s *quizService) ListAttempts(ctx context.Context, userID uint) ([]dto.QuizAttemptResponse, error) {
	completed := true
	attempts, err := s.attempts.List(ctx, repository.QuizAttemptFilter{
		UserID:    &userID,
		Completed: &completed,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuizAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, dto.NewQuizAttemptResponse(attempt))
	}

	return responses, nil
}

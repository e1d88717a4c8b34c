package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

// ErrLessonNotFound indicates a lesson could not be found.
var ErrLessonNotFound = errors.New("lesson not found")

// Resyncer schedules a deferred achievement re-sync. The outcome is not
// observed by the caller.
type Resyncer interface {
	Schedule(userID uint)
}

// ProgressService manages per-user progress records.
type ProgressService interface {
	Get(ctx context.Context, userID uint) (dto.ProgressResponse, error)
	CompleteLesson(ctx context.Context, userID, lessonID uint) (dto.CompleteLessonResponse, error)
	CompleteChallenge(ctx context.Context, userID, challengeID uint) (dto.ProgressResponse, error)
	UpdateCurrentLesson(ctx context.Context, userID uint, payload dto.UpdateCurrentLessonRequest) (dto.ProgressResponse, error)
	TrackTime(ctx context.Context, userID uint, payload dto.TrackTimeRequest) (dto.ProgressResponse, error)
}

type progressService struct {
	progress     repository.ProgressRepository
	courses      repository.CourseRepository
	users        repository.UserRepository
	achievements AchievementService
	resyncer     Resyncer
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewProgressService constructs a ProgressService instance.
func NewProgressService(progress repository.ProgressRepository, courses repository.CourseRepository, users repository.UserRepository, achievements AchievementService, resyncer Resyncer, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	return &progressService{
		progress:     progress,
		courses:      courses,
		users:        users,
		achievements: achievements,
		resyncer:     resyncer,
		validator:    validate,
		logger:       logger.With().Str("component", "progress_service").Logger(),
		now:          time.Now,
	}
}

func (s *progressService) Get(ctx context.Context, userID uint) (dto.ProgressResponse, error) {
	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	// When stored earned flags lag behind computed progress, schedule a
	// deferred re-sync after the response is sent. Verification failure is
	// not a reason to fail the read.
	if s.resyncer != nil {
		consistent, verifyErr := s.achievements.Verify(ctx, userID)
		if verifyErr != nil {
			s.logger.Warn().Err(verifyErr).Uint("user_id", userID).Msg("achievement verification failed")
		} else if !consistent {
			s.logger.Info().Uint("user_id", userID).Msg("achievement state stale, scheduling re-sync")
			s.resyncer.Schedule(userID)
		}
	}

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID uint) (dto.CompleteLessonResponse, error) {
	lesson, err := s.courses.GetLessonByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompleteLessonResponse{}, ErrLessonNotFound
		}
		return dto.CompleteLessonResponse{}, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.CompleteLessonResponse{}, err
	}

	if record.HasCompletedLesson(lessonID) {
		return dto.CompleteLessonResponse{
			LessonID:       lessonID,
			AlreadyDone:    true,
			TotalCompleted: len(record.CompletedLessons),
		}, nil
	}

	record.CompletedLessons = append(record.CompletedLessons, models.LessonCompletion{
		ProgressRecordID: record.ID,
		LessonID:         lessonID,
		CompletedAt:      s.now(),
	})

	// Clear the bookmark when the bookmarked lesson is the one finished.
	if record.CurrentLessonID != nil && *record.CurrentLessonID == lessonID {
		record.CurrentLessonID = nil
		record.CurrentLessonProgress = 0
	}

	if err := s.progress.Save(ctx, &record); err != nil {
		return dto.CompleteLessonResponse{}, err
	}

	levelsGained := 0
	if lesson.XPReward > 0 {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return dto.CompleteLessonResponse{}, err
		}

		user.XP += lesson.XPReward
		levelsGained = user.ApplyLevelUps()
		if err := s.users.Update(ctx, &user); err != nil {
			return dto.CompleteLessonResponse{}, err
		}
	}

	s.syncNonFatal(ctx, userID, "lesson completion")

	s.logger.Info().
		Uint("user_id", userID).
		Uint("lesson_id", lessonID).
		Int("xp_earned", lesson.XPReward).
		Msg("lesson completed")

	return dto.CompleteLessonResponse{
		LessonID:       lessonID,
		XPEarned:       lesson.XPReward,
		LevelsGained:   levelsGained,
		TotalCompleted: len(record.CompletedLessons),
	}, nil
}

func (s *progressService) CompleteChallenge(ctx context.Context, userID, challengeID uint) (dto.ProgressResponse, error) {
	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if !record.HasCompletedChallenge(challengeID) {
		record.CompletedChallenges = append(record.CompletedChallenges, models.ChallengeCompletion{
			ProgressRecordID: record.ID,
			ChallengeID:      challengeID,
			CompletedAt:      s.now(),
		})

		if err := s.progress.Save(ctx, &record); err != nil {
			return dto.ProgressResponse{}, err
		}

		s.syncNonFatal(ctx, userID, "challenge completion")
	}

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) UpdateCurrentLesson(ctx context.Context, userID uint, payload dto.UpdateCurrentLessonRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressResponse{}, err
	}

	if _, err := s.courses.GetLessonByID(ctx, payload.LessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrLessonNotFound
		}
		return dto.ProgressResponse{}, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	lessonID := payload.LessonID
	record.CurrentLessonID = &lessonID
	record.CurrentLessonProgress = payload.Progress

	if err := s.progress.Save(ctx, &record); err != nil {
		return dto.ProgressResponse{}, err
	}

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) TrackTime(ctx context.Context, userID uint, payload dto.TrackTimeRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressResponse{}, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	record.TotalCodingTime += payload.Minutes

	if err := s.progress.Save(ctx, &record); err != nil {
		return dto.ProgressResponse{}, err
	}

	s.syncNonFatal(ctx, userID, "time tracking")

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) syncNonFatal(ctx context.Context, userID uint, action string) {
	if err := s.achievements.Sync(ctx, userID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Str("action", action).Msg("achievement sync failed")
	}
}

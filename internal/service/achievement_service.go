package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/observability"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

// AchievementNotifier receives best-effort notifications about newly earned
// achievements. Implementations must not fail the reconciliation.
type AchievementNotifier interface {
	AchievementEarned(ctx context.Context, user models.User, achievement models.Achievement)
}

// AchievementService recomputes achievement progress and awards XP. Sync is
// the reconciler: it re-derives every achievement's progress from the quiz
// attempt log, the progress record, and the user record.
type AchievementService interface {
	// Sync reconciles all achievement progress for the user. It is
	// idempotent: repeated calls without intervening data changes award
	// nothing further. A missing user is a logged no-op.
	Sync(ctx context.Context, userID uint) error
	// Verify reports whether the stored earned flags agree with freshly
	// computed progress. False means a re-sync is needed.
	Verify(ctx context.Context, userID uint) (bool, error)
	// ListForUser merges the catalog with the user's tracked progress.
	ListForUser(ctx context.Context, userID uint) ([]dto.AchievementResponse, error)
}

type achievementService struct {
	users    repository.UserRepository
	progress repository.ProgressRepository
	attempts repository.QuizAttemptRepository
	catalog  repository.AchievementRepository
	notifier AchievementNotifier
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAchievementService constructs the reconciler.
func NewAchievementService(users repository.UserRepository, progress repository.ProgressRepository, attempts repository.QuizAttemptRepository, catalog repository.AchievementRepository, notifier AchievementNotifier, logger zerolog.Logger) AchievementService {
	return &achievementService{
		users:    users,
		progress: progress,
		attempts: attempts,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger.With().Str("component", "achievement_service").Logger(),
		tracer:   otel.Tracer("github.com/codequest-labs/codequest-api/internal/service/achievement"),
		now:      time.Now,
	}
}

// quizMetrics holds the derived statistics computed once per reconciliation.
type quizMetrics struct {
	completedLessons int
	streak           int
	completedQuizzes int
	perfectQuizzes   int
	quizAverage      int
}

func (s *achievementService) Sync(parent context.Context, userID uint) error {
	ctx, span := s.tracer.Start(parent, "achievements.sync", trace.WithAttributes(
		attribute.Int64("user_id", int64(userID)),
	))
	defer span.End()

	err := s.sync(ctx, userID)
	if err != nil {
		span.RecordError(err)
		observability.ReconcilerSyncs().WithLabelValues("error").Inc()
		return err
	}

	observability.ReconcilerSyncs().WithLabelValues("ok").Inc()
	return nil
}

func (s *achievementService) sync(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Uint("user_id", userID).Msg("sync skipped: user not found")
			return nil
		}
		return err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	attempts, err := s.completedAttempts(ctx, userID)
	if err != nil {
		return err
	}

	// Rebuild the cached quiz scores wholesale from the attempt log. The
	// log is the ground truth; the cache is replaced, never merged.
	if err := s.progress.ClearQuizScores(ctx, record.ID); err != nil {
		return err
	}
	record.QuizScores = rebuildQuizScores(record.ID, attempts)

	achievements, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}

	metrics := s.deriveMetrics(user, record, attempts)

	for _, achievement := range achievements {
		value, known := computeProgress(achievement.Requirement, metrics)
		if !known {
			s.logger.Error().
				Str("requirement", string(achievement.Requirement)).
				Uint("achievement_id", achievement.ID).
				Msg("unknown requirement key, progress left at zero")
		}

		entry := findOrCreateEntry(&record, achievement.ID)
		entry.Progress = value

		if value >= achievement.TargetValue && !entry.Earned {
			earnedAt := s.now()
			entry.Earned = true
			entry.EarnedAt = &earnedAt

			user.XP += achievement.XPReward
			gained := user.ApplyLevelUps()
			if err := s.users.Update(ctx, &user); err != nil {
				return err
			}

			observability.AchievementsEarned().Inc()
			observability.XPAwarded().Add(float64(achievement.XPReward))

			s.logger.Info().
				Uint("user_id", userID).
				Uint("achievement_id", achievement.ID).
				Str("title", achievement.Title).
				Int("xp_reward", achievement.XPReward).
				Int("levels_gained", gained).
				Msg("achievement earned")

			if s.notifier != nil {
				s.notifier.AchievementEarned(ctx, user, achievement)
			}
		}
	}

	return s.progress.Save(ctx, &record)
}

func (s *achievementService) Verify(ctx context.Context, userID uint) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}

	attempts, err := s.completedAttempts(ctx, userID)
	if err != nil {
		return false, err
	}

	achievements, err := s.catalog.List(ctx)
	if err != nil {
		return false, err
	}

	metrics := s.deriveMetrics(user, record, attempts)

	for _, achievement := range achievements {
		value, _ := computeProgress(achievement.Requirement, metrics)
		if value < achievement.TargetValue {
			continue
		}

		earned := false
		for _, entry := range record.Achievements {
			if entry.AchievementID == achievement.ID {
				earned = entry.Earned
				break
			}
		}

		if !earned {
			return false, nil
		}
	}

	return true, nil
}

func (s *achievementService) ListForUser(ctx context.Context, userID uint) ([]dto.AchievementResponse, error) {
	achievements, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	stateByID := make(map[uint]*models.AchievementProgress, len(record.Achievements))
	for i := range record.Achievements {
		stateByID[record.Achievements[i].AchievementID] = &record.Achievements[i]
	}

	responses := make([]dto.AchievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		responses = append(responses, dto.NewAchievementResponse(achievement, stateByID[achievement.ID]))
	}

	return responses, nil
}

func (s *achievementService) completedAttempts(ctx context.Context, userID uint) ([]models.QuizAttempt, error) {
	completed := true
	return s.attempts.List(ctx, repository.QuizAttemptFilter{
		UserID:    &userID,
		Completed: &completed,
	})
}

func (s *achievementService) deriveMetrics(user models.User, record models.ProgressRecord, attempts []models.QuizAttempt) quizMetrics {
	metrics := quizMetrics{
		completedLessons: len(record.CompletedLessons),
		streak:           user.Streak,
		completedQuizzes: len(attempts),
	}

	if len(attempts) == 0 {
		return metrics
	}

	var total float64
	for _, attempt := range attempts {
		total += attempt.Score
		if attempt.IsPerfect() {
			metrics.perfectQuizzes++
		}
	}
	metrics.quizAverage = int(math.Round(total / float64(len(attempts))))

	return metrics
}

// computeProgress maps a requirement key to its derived metric. The second
// return value is false for keys the dispatch does not recognise; progress
// stays zero in that case.
func computeProgress(key models.RequirementKey, metrics quizMetrics) (int, bool) {
	switch key {
	case models.RequirementCompletedLessons:
		return metrics.completedLessons, true
	case models.RequirementStreak:
		return metrics.streak, true
	case models.RequirementCompletedQuizzes:
		return metrics.completedQuizzes, true
	case models.RequirementPerfectQuizzes:
		return metrics.perfectQuizzes, true
	case models.RequirementQuizAverage:
		return metrics.quizAverage, true
	default:
		return 0, false
	}
}

func rebuildQuizScores(recordID uint, attempts []models.QuizAttempt) []models.QuizScore {
	scores := make([]models.QuizScore, 0, len(attempts))
	for _, attempt := range attempts {
		scores = append(scores, models.QuizScore{
			ProgressRecordID: recordID,
			QuizID:           attempt.QuizID,
			Score:            attempt.Score,
			MaxScore:         attempt.MaxScore,
			CompletedAt:      attempt.CompletedAt,
		})
	}
	return scores
}

func findOrCreateEntry(record *models.ProgressRecord, achievementID uint) *models.AchievementProgress {
	for i := range record.Achievements {
		if record.Achievements[i].AchievementID == achievementID {
			return &record.Achievements[i]
		}
	}

	record.Achievements = append(record.Achievements, models.AchievementProgress{
		ProgressRecordID: record.ID,
		AchievementID:    achievementID,
	})

	return &record.Achievements[len(record.Achievements)-1]
}

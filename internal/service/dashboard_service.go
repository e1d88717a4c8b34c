package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

const dashboardRecentAttempts = 5

// DashboardService produces the aggregated gamification dashboard.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	users    repository.UserRepository
	progress repository.ProgressRepository
	attempts repository.QuizAttemptRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(users repository.UserRepository, progress repository.ProgressRepository, attempts repository.QuizAttemptRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		users:    users,
		progress: progress,
		attempts: attempts,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:user:%d", userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DashboardResponse{}, ErrUserNotFound
		}
		return dto.DashboardResponse{}, err
	}

	record, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	completed := true
	attempts, err := s.attempts.List(ctx, repository.QuizAttemptFilter{
		UserID:    &userID,
		Completed: &completed,
	})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	stats := dto.QuizStats{Completed: len(attempts)}
	var total float64
	for _, attempt := range attempts {
		total += attempt.Score
		if attempt.IsPerfect() {
			stats.PerfectCount++
		}
	}
	if len(attempts) > 0 {
		stats.AverageScore = math.Round(total / float64(len(attempts)))
	}

	earned := 0
	for _, entry := range record.Achievements {
		if entry.Earned {
			earned++
		}
	}

	// Attempts arrive in chronological order; surface the newest first.
	recent := make([]dto.QuizAttemptResponse, 0, dashboardRecentAttempts)
	for i := len(attempts) - 1; i >= 0 && len(recent) < dashboardRecentAttempts; i-- {
		recent = append(recent, dto.NewQuizAttemptResponse(attempts[i]))
	}

	response := dto.DashboardResponse{
		Level:               user.Level,
		XP:                  user.XP,
		XPToNextLevel:       user.XPForNextLevel() - user.XP,
		Streak:              user.Streak,
		LessonsCompleted:    len(record.CompletedLessons),
		ChallengesCompleted: len(record.CompletedChallenges),
		TotalCodingTime:     record.TotalCodingTime,
		QuizStats:           stats,
		AchievementsEarned:  earned,
		RecentAttempts:      recent,
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/repository"
)

const (
	resyncTimeout     = 30 * time.Second
	resyncSweepWindow = 24 * time.Hour
)

// ResyncScheduler repairs drifted achievement state. Single drifted users are
// rescheduled after a short delay; the periodic sweep reconciles every user
// active within the last day.
type ResyncScheduler struct {
	achievements AchievementService
	users        repository.UserRepository
	delay        time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewResyncScheduler constructs the scheduler.
func NewResyncScheduler(achievements AchievementService, users repository.UserRepository, delay time.Duration, logger zerolog.Logger) *ResyncScheduler {
	if delay <= 0 {
		delay = 5 * time.Second
	}

	return &ResyncScheduler{
		achievements: achievements,
		users:        users,
		delay:        delay,
		logger:       logger.With().Str("component", "resync_scheduler").Logger(),
		now:          time.Now,
	}
}

// Schedule queues a deferred reconciliation for one user. It returns
// immediately; the sync runs on its own goroutine after the configured delay.
func (s *ResyncScheduler) Schedule(userID uint) {
	time.AfterFunc(s.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
		defer cancel()

		if err := s.achievements.Sync(ctx, userID); err != nil {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("deferred achievement resync failed")
			return
		}

		s.logger.Info().Uint("user_id", userID).Msg("deferred achievement resync completed")
	})
}

// Sweep reconciles every user who logged in within the sweep window. Intended
// to run from a cron schedule; per-user failures are logged and skipped.
func (s *ResyncScheduler) Sweep(ctx context.Context) {
	since := s.now().Add(-resyncSweepWindow)

	users, err := s.users.ListActiveSince(ctx, since)
	if err != nil {
		s.logger.Error().Err(err).Msg("resync sweep could not list active users")
		return
	}

	synced := 0
	for _, user := range users {
		if ctx.Err() != nil {
			s.logger.Warn().Int("synced", synced).Msg("resync sweep cancelled")
			return
		}

		if err := s.achievements.Sync(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("resync sweep failed for user")
			continue
		}
		synced++
	}

	s.logger.Info().Int("users", len(users)).Int("synced", synced).Msg("resync sweep completed")
}

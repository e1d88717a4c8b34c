package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codequest-labs/codequest-api/internal/models"
)

func quizCatalog() *fakeCatalogRepo {
	return &fakeCatalogRepo{achievements: []models.Achievement{
		{ID: 1, Title: "Quiz Rookie", Requirement: models.RequirementCompletedQuizzes, TargetValue: 1, XPReward: 50},
		{ID: 2, Title: "Perfectionist", Requirement: models.RequirementPerfectQuizzes, TargetValue: 1, XPReward: 100},
		{ID: 3, Title: "Scholar", Requirement: models.RequirementQuizAverage, TargetValue: 80, XPReward: 150},
	}}
}

func completedAttempt(userID, quizID uint, score float64) models.QuizAttempt {
	return models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		MaxScore:    100,
		Passed:      score >= models.PassingScore,
		Completed:   true,
		CompletedAt: time.Now(),
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 10, 80))
	notifier := &recordingNotifier{}

	svc := NewAchievementService(users, progress, attempts, quizCatalog(), notifier, testLogger())

	require.NoError(t, svc.Sync(context.Background(), 1))
	xpAfterFirst := users.users[1].XP
	require.Equal(t, []string{"Quiz Rookie", "Scholar"}, notifier.earned)

	require.NoError(t, svc.Sync(context.Background(), 1))
	require.NoError(t, svc.Sync(context.Background(), 1))

	require.Equal(t, xpAfterFirst, users.users[1].XP)
	require.Len(t, notifier.earned, 2)

	record := progress.records[1]
	earnedCount := 0
	for _, entry := range record.Achievements {
		if entry.Earned {
			earnedCount++
			require.NotNil(t, entry.EarnedAt)
		}
	}
	require.Equal(t, 2, earnedCount)
}

func TestSyncNeverRevertsEarned(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 10, 100))
	catalog := quizCatalog()

	svc := NewAchievementService(users, progress, attempts, catalog, nil, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	// The underlying data regresses; earned flags must survive even though
	// the recomputed progress drops below the targets.
	attempts.attempts = nil
	require.NoError(t, svc.Sync(context.Background(), 1))

	record := progress.records[1]
	for _, entry := range record.Achievements {
		require.True(t, entry.Earned, "achievement %d reverted", entry.AchievementID)
		require.Equal(t, 0, entry.Progress)
	}
}

func TestSyncRebuildsQuizScoreCache(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(
		completedAttempt(1, 10, 60),
		completedAttempt(1, 11, 90),
	)

	svc := NewAchievementService(users, progress, attempts, quizCatalog(), nil, testLogger())

	// Pre-seed a stale cache entry that no attempt backs.
	record, err := progress.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)
	record.QuizScores = []models.QuizScore{{ProgressRecordID: record.ID, QuizID: 99, Score: 10}}
	require.NoError(t, progress.Save(context.Background(), &record))

	require.NoError(t, svc.Sync(context.Background(), 1))

	rebuilt := progress.records[1].QuizScores
	require.Len(t, rebuilt, 2)
	require.Equal(t, uint(10), rebuilt[0].QuizID)
	require.Equal(t, uint(11), rebuilt[1].QuizID)
	require.Positive(t, progress.clears)
}

func TestSyncIgnoresIncompleteAttempts(t *testing.T) {
	incomplete := completedAttempt(1, 10, 100)
	incomplete.Completed = false

	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(incomplete)
	notifier := &recordingNotifier{}

	svc := NewAchievementService(users, progress, attempts, quizCatalog(), notifier, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	require.Empty(t, notifier.earned)
	require.Empty(t, progress.records[1].QuizScores)
}

func TestSyncUnknownRequirementLeavesProgressZero(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 10, 100))
	catalog := &fakeCatalogRepo{achievements: []models.Achievement{
		{ID: 7, Title: "Mystery", Requirement: models.RequirementKey("futureMetric"), TargetValue: 1, XPReward: 500},
	}}

	svc := NewAchievementService(users, progress, attempts, catalog, nil, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	record := progress.records[1]
	require.Len(t, record.Achievements, 1)
	require.Equal(t, 0, record.Achievements[0].Progress)
	require.False(t, record.Achievements[0].Earned)
	require.Equal(t, 0, users.users[1].XP)
}

func TestSyncMissingUserIsNoOp(t *testing.T) {
	users := newFakeUserRepo()
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo()

	svc := NewAchievementService(users, progress, attempts, quizCatalog(), nil, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 42))
	require.Zero(t, progress.saves)
}

func TestQuizAverageRoundsMean(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(
		completedAttempt(1, 1, 100),
		completedAttempt(1, 2, 80),
		completedAttempt(1, 3, 60),
	)
	catalog := &fakeCatalogRepo{achievements: []models.Achievement{
		{ID: 3, Title: "Scholar", Requirement: models.RequirementQuizAverage, TargetValue: 80, XPReward: 150},
	}}
	notifier := &recordingNotifier{}

	svc := NewAchievementService(users, progress, attempts, catalog, notifier, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	// Mean of 100, 80, 60 is exactly 80, which meets the target.
	require.Equal(t, []string{"Scholar"}, notifier.earned)
	require.Equal(t, 80, progress.records[1].Achievements[0].Progress)
}

func TestPerfectQuizUsesRoundedScore(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 1, 99.6))
	catalog := &fakeCatalogRepo{achievements: []models.Achievement{
		{ID: 2, Title: "Perfectionist", Requirement: models.RequirementPerfectQuizzes, TargetValue: 1, XPReward: 100},
	}}
	notifier := &recordingNotifier{}

	svc := NewAchievementService(users, progress, attempts, catalog, notifier, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	require.Equal(t, []string{"Perfectionist"}, notifier.earned)
}

func TestAwardCascadesLevelUps(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1, XP: 950})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 1, 80))
	catalog := &fakeCatalogRepo{achievements: []models.Achievement{
		{ID: 1, Title: "Quiz Rookie", Requirement: models.RequirementCompletedQuizzes, TargetValue: 1, XPReward: 2100},
	}}

	svc := NewAchievementService(users, progress, attempts, catalog, nil, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	user := users.users[1]
	// 950 + 2100 = 3050: consumes 1000 at level 1 and 2000 at level 2.
	require.Equal(t, 3, user.Level)
	require.Equal(t, 50, user.XP)
}

func TestVerifyDetectsDrift(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 1, 80))
	catalog := quizCatalog()

	svc := NewAchievementService(users, progress, attempts, catalog, nil, testLogger())

	// Attempts exist but nothing was ever synced: earned flags are stale.
	consistent, err := svc.Verify(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, consistent)

	require.NoError(t, svc.Sync(context.Background(), 1))

	consistent, err = svc.Verify(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, consistent)
}

func TestListForUserMergesCatalogAndState(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	attempts := newFakeAttemptRepo(completedAttempt(1, 1, 90))

	svc := NewAchievementService(users, progress, attempts, quizCatalog(), nil, testLogger())
	require.NoError(t, svc.Sync(context.Background(), 1))

	list, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byTitle := make(map[string]bool, len(list))
	for _, item := range list {
		byTitle[item.Title] = item.Earned
	}
	require.True(t, byTitle["Quiz Rookie"])
	require.True(t, byTitle["Scholar"])
	require.False(t, byTitle["Perfectionist"])
}

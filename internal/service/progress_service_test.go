package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
)

type fakeCourseRepo struct {
	lessons map[uint]models.Lesson
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	return nil, nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	return models.Course{}, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) GetLessonByID(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, ok := f.lessons[id]
	if !ok {
		return models.Lesson{}, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (f *fakeCourseRepo) UpsertBatch(ctx context.Context, courses []models.Course) (int64, error) {
	return 0, nil
}

type recordingResyncer struct {
	scheduled []uint
}

func (r *recordingResyncer) Schedule(userID uint) {
	r.scheduled = append(r.scheduled, userID)
}

type driftedAchievements struct {
	noopAchievements
}

func (d *driftedAchievements) Verify(ctx context.Context, userID uint) (bool, error) {
	return false, nil
}

func newProgressService(progress *fakeProgressRepo, courses *fakeCourseRepo, users *fakeUserRepo, achievements AchievementService, resyncer Resyncer) ProgressService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewProgressService(progress, courses, users, achievements, resyncer, validate, testLogger())
}

func TestCompleteLessonAwardsXPOnce(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	courses := &fakeCourseRepo{lessons: map[uint]models.Lesson{5: {ID: 5, CourseID: 1, Title: "Slices", XPReward: 100}}}
	sync := &noopAchievements{}

	svc := newProgressService(progress, courses, users, sync, nil)

	first, err := svc.CompleteLesson(context.Background(), 1, 5)
	require.NoError(t, err)
	require.False(t, first.AlreadyDone)
	require.Equal(t, 100, first.XPEarned)
	require.Equal(t, 1, first.TotalCompleted)
	require.Equal(t, 100, users.users[1].XP)
	require.Equal(t, 1, sync.syncs)

	second, err := svc.CompleteLesson(context.Background(), 1, 5)
	require.NoError(t, err)
	require.True(t, second.AlreadyDone)
	require.Equal(t, 0, second.XPEarned)
	require.Equal(t, 1, second.TotalCompleted)
	require.Equal(t, 100, users.users[1].XP)
	require.Equal(t, 1, sync.syncs)
}

func TestCompleteLessonUnknownLesson(t *testing.T) {
	svc := newProgressService(newFakeProgressRepo(), &fakeCourseRepo{lessons: map[uint]models.Lesson{}}, newFakeUserRepo(), &noopAchievements{}, nil)

	_, err := svc.CompleteLesson(context.Background(), 1, 404)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

func TestCompleteLessonClearsBookmark(t *testing.T) {
	users := newFakeUserRepo(models.User{ID: 1, Level: 1})
	progress := newFakeProgressRepo()
	courses := &fakeCourseRepo{lessons: map[uint]models.Lesson{5: {ID: 5, Title: "Slices"}}}

	record, err := progress.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)
	lessonID := uint(5)
	record.CurrentLessonID = &lessonID
	record.CurrentLessonProgress = 0.8
	require.NoError(t, progress.Save(context.Background(), &record))

	svc := newProgressService(progress, courses, users, &noopAchievements{}, nil)

	_, err = svc.CompleteLesson(context.Background(), 1, 5)
	require.NoError(t, err)

	saved := progress.records[1]
	require.Nil(t, saved.CurrentLessonID)
	require.Zero(t, saved.CurrentLessonProgress)
}

func TestCompleteChallengeIsIdempotent(t *testing.T) {
	progress := newFakeProgressRepo()
	sync := &noopAchievements{}
	svc := newProgressService(progress, &fakeCourseRepo{}, newFakeUserRepo(), sync, nil)

	first, err := svc.CompleteChallenge(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, first.CompletedChallenges, 1)
	require.Equal(t, 1, sync.syncs)

	second, err := svc.CompleteChallenge(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, second.CompletedChallenges, 1)
	require.Equal(t, 1, sync.syncs)
}

func TestGetSchedulesResyncOnDrift(t *testing.T) {
	progress := newFakeProgressRepo()
	resyncer := &recordingResyncer{}
	svc := newProgressService(progress, &fakeCourseRepo{}, newFakeUserRepo(), &driftedAchievements{}, resyncer)

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []uint{1}, resyncer.scheduled)
}

func TestGetDoesNotScheduleWhenConsistent(t *testing.T) {
	progress := newFakeProgressRepo()
	resyncer := &recordingResyncer{}
	svc := newProgressService(progress, &fakeCourseRepo{}, newFakeUserRepo(), &noopAchievements{}, resyncer)

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, resyncer.scheduled)
}

func TestUpdateCurrentLessonValidatesRange(t *testing.T) {
	courses := &fakeCourseRepo{lessons: map[uint]models.Lesson{5: {ID: 5}}}
	svc := newProgressService(newFakeProgressRepo(), courses, newFakeUserRepo(), &noopAchievements{}, nil)

	_, err := svc.UpdateCurrentLesson(context.Background(), 1, dto.UpdateCurrentLessonRequest{LessonID: 5, Progress: 1.2})
	require.Error(t, err)

	result, err := svc.UpdateCurrentLesson(context.Background(), 1, dto.UpdateCurrentLessonRequest{LessonID: 5, Progress: 0.5})
	require.NoError(t, err)
	require.NotNil(t, result.CurrentLessonID)
	require.Equal(t, uint(5), *result.CurrentLessonID)
	require.InDelta(t, 0.5, result.CurrentLessonProgress, 0.001)
}

func TestTrackTimeAccumulates(t *testing.T) {
	progress := newFakeProgressRepo()
	svc := newProgressService(progress, &fakeCourseRepo{}, newFakeUserRepo(), &noopAchievements{}, nil)

	_, err := svc.TrackTime(context.Background(), 1, dto.TrackTimeRequest{Minutes: 30})
	require.NoError(t, err)

	result, err := svc.TrackTime(context.Background(), 1, dto.TrackTimeRequest{Minutes: 15})
	require.NoError(t, err)
	require.Equal(t, 45, result.TotalCodingTime)

	_, err = svc.TrackTime(context.Background(), 1, dto.TrackTimeRequest{Minutes: 0})
	require.Error(t, err)
}

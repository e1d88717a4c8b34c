package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
)

type seedCourseRepo struct {
	fakeCourseRepo
	courses []models.Course
}

func (s *seedCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	return s.courses, nil
}

func (s *seedCourseRepo) UpsertBatch(ctx context.Context, courses []models.Course) (int64, error) {
	s.courses = append(s.courses, courses...)
	return int64(len(courses)), nil
}

type seedQuizRepo struct {
	quizzes []models.Quiz
}

func (s *seedQuizRepo) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	return models.Quiz{}, nil
}

func (s *seedQuizRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	return nil, nil
}

func (s *seedQuizRepo) UpsertBatch(ctx context.Context, quizzes []models.Quiz) (int64, error) {
	s.quizzes = quizzes
	return int64(len(quizzes)), nil
}

func TestSeedAchievementsTokenGuard(t *testing.T) {
	catalog := &fakeCatalogRepo{}
	svc := NewSeedService(catalog, &seedCourseRepo{}, &seedQuizRepo{}, true, "secret", testLogger())

	_, err := svc.SeedAchievements(context.Background(), dto.SeedAchievementsRequest{Token: "wrong"})
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	disabled := NewSeedService(catalog, &seedCourseRepo{}, &seedQuizRepo{}, false, "secret", testLogger())
	_, err = disabled.SeedAchievements(context.Background(), dto.SeedAchievementsRequest{Token: "secret"})
	require.ErrorIs(t, err, ErrSeedDisabled)
}

func TestSeedAchievementsDefaultCatalog(t *testing.T) {
	catalog := &fakeCatalogRepo{}
	svc := NewSeedService(catalog, &seedCourseRepo{}, &seedQuizRepo{}, true, "secret", testLogger())

	result, err := svc.SeedAchievements(context.Background(), dto.SeedAchievementsRequest{Token: "secret"})
	require.NoError(t, err)
	require.Equal(t, int64(len(models.DefaultAchievements())), result.Affected)

	for _, achievement := range catalog.achievements {
		require.True(t, achievement.Requirement.Valid(), "default catalog entry %q has invalid requirement", achievement.Title)
	}
}

func TestSeedAchievementsRejectsUnknownRequirement(t *testing.T) {
	svc := NewSeedService(&fakeCatalogRepo{}, &seedCourseRepo{}, &seedQuizRepo{}, true, "secret", testLogger())

	_, err := svc.SeedAchievements(context.Background(), dto.SeedAchievementsRequest{
		Token: "secret",
		Items: []dto.SeedAchievementItem{{Title: "Odd", TargetValue: 1, Requirement: "nonsense"}},
	})
	require.Error(t, err)
}

func TestSeedContentValidatesQuizSchema(t *testing.T) {
	courses := &seedCourseRepo{courses: []models.Course{{ID: 3, Slug: "go-basics"}}}
	quizzes := &seedQuizRepo{}
	svc := NewSeedService(&fakeCatalogRepo{}, courses, quizzes, true, "secret", testLogger())

	valid := json.RawMessage(`{
		"course_slug": "go-basics",
		"title": "Slices",
		"xp_reward": 100,
		"questions": [
			{"prompt": "What is len(nil)?", "options": ["0", "panics"], "correct_option": 0}
		]
	}`)

	result, err := svc.SeedContent(context.Background(), dto.SeedContentRequest{Token: "secret", Quizzes: []json.RawMessage{valid}})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Affected)
	require.Len(t, quizzes.quizzes, 1)
	require.Equal(t, uint(3), quizzes.quizzes[0].CourseID)
	require.Len(t, quizzes.quizzes[0].Questions, 1)

	missingQuestions := json.RawMessage(`{"course_slug": "go-basics", "title": "Broken", "questions": []}`)
	_, err = svc.SeedContent(context.Background(), dto.SeedContentRequest{Token: "secret", Quizzes: []json.RawMessage{missingQuestions}})
	require.Error(t, err)

	unknownSlug := json.RawMessage(`{
		"course_slug": "nope",
		"title": "Lost",
		"questions": [{"prompt": "?", "options": ["a", "b"], "correct_option": 0}]
	}`)
	_, err = svc.SeedContent(context.Background(), dto.SeedContentRequest{Token: "secret", Quizzes: []json.RawMessage{unknownSlug}})
	require.Error(t, err)

	outOfRange := json.RawMessage(`{
		"course_slug": "go-basics",
		"title": "Off by one",
		"questions": [{"prompt": "?", "options": ["a", "b"], "correct_option": 5}]
	}`)
	_, err = svc.SeedContent(context.Background(), dto.SeedContentRequest{Token: "secret", Quizzes: []json.RawMessage{outOfRange}})
	require.Error(t, err)
}

func TestSeedContentUpsertsCourses(t *testing.T) {
	courses := &seedCourseRepo{}
	svc := NewSeedService(&fakeCatalogRepo{}, courses, &seedQuizRepo{}, true, "secret", testLogger())

	result, err := svc.SeedContent(context.Background(), dto.SeedContentRequest{
		Token: "secret",
		Courses: []dto.SeedCourseItem{{
			Title: "Go Basics",
			Slug:  "Go-Basics",
			Lessons: []dto.SeedLessonItem{
				{Title: "Hello", Position: 0, XPReward: 50},
				{Title: "Types", Position: 1, XPReward: 50},
			},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Affected)
	require.Len(t, courses.courses, 1)
	require.Equal(t, "go-basics", courses.courses[0].Slug)
	require.Len(t, courses.courses[0].Lessons, 2)
}

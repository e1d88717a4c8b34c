package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/config"
	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/handler"
	"github.com/codequest-labs/codequest-api/internal/middleware"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
	"github.com/codequest-labs/codequest-api/internal/router"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/pkg/ai"
)

const seedToken = "integration-seed-token"

type echoMentor struct{}

func (echoMentor) Reply(_ context.Context, messages []ai.Message) (ai.Reply, error) {
	last := messages[len(messages)-1]
	return ai.Reply{Content: "You asked: " + last.Content, Model: "echo"}, nil
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.ProgressRecord{},
		&models.LessonCompletion{},
		&models.ChallengeCompletion{},
		&models.QuizScore{},
		&models.AchievementProgress{},
		&models.Achievement{},
		&models.MentorMessage{},
		&models.Notification{},
	))

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, nil, "codequest", nil, logger)
	achievementService := service.NewAchievementService(userRepo, progressRepo, attemptRepo, achievementRepo, notificationService, logger)
	resyncScheduler := service.NewResyncScheduler(achievementService, userRepo, time.Millisecond, logger)

	authService := service.NewAuthService(userRepo, achievementService, service.DefaultStreakPolicy(), validate, "integration-secret", time.Hour, logger)
	courseService := service.NewCourseService(courseRepo, logger)
	quizService := service.NewQuizService(quizRepo, attemptRepo, userRepo, achievementService, validate, logger)
	progressService := service.NewProgressService(progressRepo, courseRepo, userRepo, achievementService, resyncScheduler, validate, logger)
	dashboardService := service.NewDashboardService(userRepo, progressRepo, attemptRepo, cache, time.Minute, logger)
	mentorService := service.NewMentorService(mentorRepo, echoMentor{}, validate, logger)
	seedService := service.NewSeedService(achievementRepo, courseRepo, quizRepo, true, seedToken, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "CodeQuest Test"}, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		ProgressHandler:     handler.NewProgressHandler(progressService, logger),
		AchievementHandler:  handler.NewAchievementHandler(achievementService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		MentorHandler:       handler.NewMentorHandler(mentorService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		SeedHandler:         handler.NewSeedHandler(seedService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app, db
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLearningEndToEndFlow(t *testing.T) {
	app, _ := setupApp(t)

	// Step 1: register a learner account
	registerResp := postJSON(t, app, "/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusCreated, registerResp.StatusCode)

	var registered struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	decode(t, registerResp, &registered)
	require.True(t, registered.Success)
	require.NotEmpty(t, registered.Data.Token)
	require.Equal(t, uint(1), registered.Data.User.ID)

	// Logging in starts the daily streak
	loginResp := postJSON(t, app, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusOK, loginResp.StatusCode)

	var loggedIn struct {
		Data dto.AuthResponse `json:"data"`
	}
	decode(t, loginResp, &loggedIn)
	require.Equal(t, 1, loggedIn.Data.User.Streak)

	// Step 2: seed the achievement catalog and course content
	seedResp := postJSON(t, app, "/api/v1/seed/achievements", dto.SeedAchievementsRequest{Token: seedToken})
	require.Equal(t, fiber.StatusOK, seedResp.StatusCode)

	contentResp := postJSON(t, app, "/api/v1/seed/content", map[string]any{
		"token": seedToken,
		"courses": []map[string]any{
			{
				"title":      "Go Basics",
				"slug":       "go-basics",
				"language":   "go",
				"difficulty": "beginner",
				"lessons": []map[string]any{
					{"title": "Hello, World", "content": "package main", "position": 0, "xp_reward": 50},
				},
			},
		},
		"quizzes": []map[string]any{
			{
				"course_slug": "go-basics",
				"title":       "Syntax Check",
				"xp_reward":   200,
				"questions": []map[string]any{
					{"prompt": "Which keyword declares a function?", "options": []string{"func", "def"}, "correct_option": 0},
					{"prompt": "Which builtin prints a line?", "options": []string{"println", "printf"}, "correct_option": 0},
				},
			},
		},
	})
	require.Equal(t, fiber.StatusOK, contentResp.StatusCode)

	// Step 3: resolve the seeded course and quiz
	coursesReq := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	coursesResp, err := app.Test(coursesReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, coursesResp.StatusCode)

	var courses struct {
		Data []dto.CourseResponse `json:"data"`
	}
	decode(t, coursesResp, &courses)
	require.Len(t, courses.Data, 1)
	courseID := courses.Data[0].ID

	quizzesReq := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/course/"+strconv.Itoa(int(courseID)), nil)
	quizzesResp, err := app.Test(quizzesReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, quizzesResp.StatusCode)

	var quizzes struct {
		Data []dto.QuizResponse `json:"data"`
	}
	decode(t, quizzesResp, &quizzes)
	require.Len(t, quizzes.Data, 1)
	require.Len(t, quizzes.Data[0].Questions, 2)

	// Step 4: submit a perfect run
	submitResp := postJSON(t, app, "/api/v1/quizzes/"+strconv.Itoa(int(quizzes.Data[0].ID))+"/submit", dto.QuizSubmitRequest{Answers: []int{0, 0}})
	require.Equal(t, fiber.StatusOK, submitResp.StatusCode)

	var submitted struct {
		Success bool                   `json:"success"`
		Data    dto.QuizSubmitResponse `json:"data"`
	}
	decode(t, submitResp, &submitted)
	require.True(t, submitted.Data.Passed)
	require.Equal(t, 100.0, submitted.Data.Score)
	require.Equal(t, 200, submitted.Data.XPEarned)

	// Step 5: the reconciler earned the quiz achievements
	achievementsReq := httptest.NewRequest(http.MethodGet, "/api/v1/achievements", nil)
	achievementsResp, err := app.Test(achievementsReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, achievementsResp.StatusCode)

	var achievements struct {
		Data []dto.AchievementResponse `json:"data"`
	}
	decode(t, achievementsResp, &achievements)
	earned := map[string]bool{}
	for _, item := range achievements.Data {
		if item.Earned {
			earned[item.Title] = true
		}
	}
	require.True(t, earned["Quiz Rookie"])
	require.True(t, earned["Flawless"])
	require.True(t, earned["Consistent Performer"])
	require.False(t, earned["First Steps"])

	// Step 6: dashboard aggregates XP from the quiz and its achievements
	dashboardReq := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	dashboardResp, err := app.Test(dashboardReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, dashboardResp.StatusCode)

	var dashboard struct {
		Data dto.DashboardResponse `json:"data"`
	}
	decode(t, dashboardResp, &dashboard)
	// 200 quiz XP + 50 (Quiz Rookie) + 100 (Flawless) + 300 (Consistent Performer)
	require.Equal(t, 650, dashboard.Data.XP)
	require.Equal(t, 1, dashboard.Data.QuizStats.Completed)
	require.Equal(t, 1, dashboard.Data.QuizStats.PerfectCount)
	require.Equal(t, 100.0, dashboard.Data.QuizStats.AverageScore)
	require.Equal(t, 3, dashboard.Data.AchievementsEarned)
	require.Len(t, dashboard.Data.RecentAttempts, 1)

	// Step 7: earned achievements produced notifications
	notificationsReq := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	notificationsResp, err := app.Test(notificationsReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, notificationsResp.StatusCode)

	var notifications struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	decode(t, notificationsResp, &notifications)
	require.Len(t, notifications.Data, 3)
	for _, item := range notifications.Data {
		require.Equal(t, "achievement_earned", item.Type)
		require.False(t, item.Read)
	}

	// Step 8: the mentor answers and records history
	mentorResp := postJSON(t, app, "/api/v1/mentor/ask", dto.MentorAskRequest{Message: "What is a slice?"})
	require.Equal(t, fiber.StatusOK, mentorResp.StatusCode)

	var mentorReply struct {
		Data dto.MentorMessageResponse `json:"data"`
	}
	decode(t, mentorResp, &mentorReply)
	require.Equal(t, "assistant", mentorReply.Data.Role)
	require.Contains(t, mentorReply.Data.Content, "What is a slice?")

	historyReq := httptest.NewRequest(http.MethodGet, "/api/v1/mentor/history", nil)
	historyResp, err := app.Test(historyReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, historyResp.StatusCode)

	var history struct {
		Data []dto.MentorMessageResponse `json:"data"`
	}
	decode(t, historyResp, &history)
	require.Len(t, history.Data, 2)
}

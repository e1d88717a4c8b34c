package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codequest-labs/codequest-api/internal/config"
	"github.com/codequest-labs/codequest-api/internal/handler"
	"github.com/codequest-labs/codequest-api/internal/middleware"
	"github.com/codequest-labs/codequest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	CourseHandler       *handler.CourseHandler
	QuizHandler         *handler.QuizHandler
	ProgressHandler     *handler.ProgressHandler
	AchievementHandler  *handler.AchievementHandler
	DashboardHandler    *handler.DashboardHandler
	MentorHandler       *handler.MentorHandler
	NotificationHandler *handler.NotificationHandler
	SeedHandler         *handler.SeedHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.QuizHandler != nil {
		quizzes := api.Group("/quizzes", jwtMiddleware)
		deps.QuizHandler.Register(quizzes)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	if deps.AchievementHandler != nil {
		achievements := api.Group("/achievements", jwtMiddleware)
		deps.AchievementHandler.Register(achievements)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.MentorHandler != nil {
		mentor := api.Group("/mentor", jwtMiddleware, middleware.RateLimit("mentor", 10, time.Minute))
		deps.MentorHandler.Register(mentor)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}

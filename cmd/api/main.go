package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/config"
	"github.com/codequest-labs/codequest-api/internal/database"
	"github.com/codequest-labs/codequest-api/internal/handler"
	"github.com/codequest-labs/codequest-api/internal/middleware"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
	"github.com/codequest-labs/codequest-api/internal/router"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	mentor, err := buildMentor(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create mentor client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	rootCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannelBase, natsConn, logger)
	notificationService.Start(rootCtx)

	achievementService := service.NewAchievementService(userRepo, progressRepo, attemptRepo, achievementRepo, notificationService, logger)
	resyncScheduler := service.NewResyncScheduler(achievementService, userRepo, cfg.ResyncDelay, logger)

	authService := service.NewAuthService(userRepo, achievementService, service.DefaultStreakPolicy(), validate, cfg.JWTSecret, cfg.JWTExpiry, logger)
	courseService := service.NewCourseService(courseRepo, logger)
	quizService := service.NewQuizService(quizRepo, attemptRepo, userRepo, achievementService, validate, logger)
	progressService := service.NewProgressService(progressRepo, courseRepo, userRepo, achievementService, resyncScheduler, validate, logger)
	dashboardService := service.NewDashboardService(userRepo, progressRepo, attemptRepo, redisClient, cfg.DashboardCacheTTL, logger)
	mentorService := service.NewMentorService(mentorRepo, mentor, validate, logger)
	seedService := service.NewSeedService(achievementRepo, courseRepo, quizRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	scheduler := cron.New()
	if cfg.ResyncSweepSpec != "" {
		if _, err := scheduler.AddFunc(cfg.ResyncSweepSpec, func() {
			resyncScheduler.Sweep(rootCtx)
		}); err != nil {
			log.Fatalf("invalid resync sweep schedule: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		ProgressHandler:     handler.NewProgressHandler(progressService, logger),
		AchievementHandler:  handler.NewAchievementHandler(achievementService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		MentorHandler:       handler.NewMentorHandler(mentorService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		SeedHandler:         handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildMentor(cfg config.Config, logger zerolog.Logger) (ai.Mentor, error) {
	switch cfg.MentorProvider {
	case "anthropic":
		return ai.NewAnthropicMentor(ai.AnthropicConfig{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.MentorModel,
			MaxTokens: cfg.MentorMaxTokens,
			Logger:    logger,
		})
	default:
		return ai.NewOpenAIMentor(ai.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.MentorModel,
			MaxTokens: cfg.MentorMaxTokens,
			Logger:    logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

const quizSeedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["course_slug", "title", "questions"],
  "properties": {
    "course_slug": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "xp_reward": {"type": "integer", "minimum": 0},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt", "options", "correct_option"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 2,
            "items": {"type": "string"}
          },
          "correct_option": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

type seedQuizPayload struct {
	CourseSlug string `json:"course_slug"`
	Title      string `json:"title"`
	XPReward   int    `json:"xp_reward"`
	Questions  []struct {
		Prompt        string   `json:"prompt"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
	} `json:"questions"`
}

// SeedService orchestrates token-guarded content seeding.
type SeedService interface {
	SeedAchievements(ctx context.Context, req dto.SeedAchievementsRequest) (dto.SeedResult, error)
	SeedContent(ctx context.Context, req dto.SeedContentRequest) (dto.SeedResult, error)
}

type seedService struct {
	achievements repository.AchievementRepository
	courses      repository.CourseRepository
	quizzes      repository.QuizRepository
	quizSchema   *jsonschema.Schema
	enabled      bool
	token        string
	logger       zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(achievements repository.AchievementRepository, courses repository.CourseRepository, quizzes repository.QuizRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	schema := jsonschema.MustCompileString("quiz.seed.json", quizSeedSchema)

	return &seedService{
		achievements: achievements,
		courses:      courses,
		quizzes:      quizzes,
		quizSchema:   schema,
		enabled:      enabled,
		token:        token,
		logger:       logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedAchievements(ctx context.Context, req dto.SeedAchievementsRequest) (dto.SeedResult, error) {
	if !s.enabled {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(req.Token) {
		return dto.SeedResult{}, ErrSeedUnauthorized
	}

	var catalog []models.Achievement
	if len(req.Items) == 0 {
		catalog = models.DefaultAchievements()
	} else {
		catalog = make([]models.Achievement, 0, len(req.Items))
		for _, item := range req.Items {
			requirement := models.RequirementKey(item.Requirement)
			if !requirement.Valid() {
				return dto.SeedResult{}, fmt.Errorf("unknown achievement requirement %q", item.Requirement)
			}

			catalog = append(catalog, models.Achievement{
				Title:       item.Title,
				Description: item.Description,
				Category:    item.Category,
				Icon:        item.Icon,
				Color:       item.Color,
				TargetValue: item.TargetValue,
				XPReward:    item.XPReward,
				Requirement: requirement,
			})
		}
	}

	affected, err := s.achievements.UpsertBatch(ctx, catalog)
	if err != nil {
		return dto.SeedResult{}, err
	}

	s.logger.Info().Int64("affected", affected).Msg("achievement catalog seeded")
	return dto.SeedResult{Affected: affected}, nil
}

func (s *seedService) SeedContent(ctx context.Context, req dto.SeedContentRequest) (dto.SeedResult, error) {
	if !s.enabled {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(req.Token) {
		return dto.SeedResult{}, ErrSeedUnauthorized
	}

	var affected int64

	if len(req.Courses) > 0 {
		courses := make([]models.Course, 0, len(req.Courses))
		for _, item := range req.Courses {
			course := models.Course{
				Title:       item.Title,
				Description: item.Description,
				Slug:        strings.TrimSpace(strings.ToLower(item.Slug)),
				Language:    item.Language,
				Difficulty:  item.Difficulty,
			}
			for _, lesson := range item.Lessons {
				course.Lessons = append(course.Lessons, models.Lesson{
					Title:    lesson.Title,
					Content:  lesson.Content,
					Position: lesson.Position,
					XPReward: lesson.XPReward,
				})
			}
			courses = append(courses, course)
		}

		count, err := s.courses.UpsertBatch(ctx, courses)
		if err != nil {
			return dto.SeedResult{}, err
		}
		affected += count
	}

	if len(req.Quizzes) > 0 {
		quizzes, err := s.buildQuizzes(ctx, req.Quizzes)
		if err != nil {
			return dto.SeedResult{}, err
		}

		count, err := s.quizzes.UpsertBatch(ctx, quizzes)
		if err != nil {
			return dto.SeedResult{}, err
		}
		affected += count
	}

	s.logger.Info().Int64("affected", affected).Msg("content seeded")
	return dto.SeedResult{Affected: affected}, nil
}

func (s *seedService) buildQuizzes(ctx context.Context, payloads []json.RawMessage) ([]models.Quiz, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	slugToID := make(map[string]uint, len(courses))
	for _, course := range courses {
		slugToID[course.Slug] = course.ID
	}

	quizzes := make([]models.Quiz, 0, len(payloads))
	for i, raw := range payloads {
		var decoded any
		if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("quiz %d is not valid JSON: %w", i, err)
		}
		if err := s.quizSchema.Validate(decoded); err != nil {
			return nil, fmt.Errorf("quiz %d failed schema validation: %w", i, err)
		}

		var payload seedQuizPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("quiz %d could not be decoded: %w", i, err)
		}

		courseID, ok := slugToID[strings.TrimSpace(strings.ToLower(payload.CourseSlug))]
		if !ok {
			return nil, fmt.Errorf("quiz %d references unknown course slug %q", i, payload.CourseSlug)
		}

		quiz := models.Quiz{
			CourseID: courseID,
			Title:    payload.Title,
			XPReward: payload.XPReward,
		}
		for position, question := range payload.Questions {
			if question.CorrectOption >= len(question.Options) {
				return nil, fmt.Errorf("quiz %d question %d: correct option out of range", i, position)
			}

			options, err := json.Marshal(question.Options)
			if err != nil {
				return nil, err
			}

			quiz.Questions = append(quiz.Questions, models.QuizQuestion{
				Prompt:        question.Prompt,
				Options:       datatypes.JSON(options),
				CorrectOption: question.CorrectOption,
				Position:      position,
			})
		}

		quizzes = append(quizzes, quiz)
	}

	return quizzes, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return constantTimeEqual(expected, strings.TrimSpace(token))
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

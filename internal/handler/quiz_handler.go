package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
)

// QuizHandler exposes quiz retrieval and submission endpoints.
type QuizHandler struct {
	service service.QuizService
	logger  zerolog.Logger
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(service service.QuizService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register wires quiz routes.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId", h.listByCourse)
	router.Get("/attempts", h.listAttempts)
	router.Get("/:id", h.get)
	router.Post("/:id/submit", h.submit)
}

func (h *QuizHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.ListByCourse(c.Context(), courseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list quizzes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list quizzes")
	}

	return utils.SendSuccess(c, "quizzes retrieved", result)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	result, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err, "failed to load quiz")
	}

	return utils.SendSuccess(c, "quiz retrieved", result)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	var payload dto.QuizSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Submit(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err, "failed to submit quiz")
	}

	return utils.SendSuccess(c, "quiz submitted", result)
}

func (h *QuizHandler) listAttempts(c *fiber.Ctx) error {
	result, err := h.service.ListAttempts(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list attempts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list attempts")
	}

	return utils.SendSuccess(c, "attempts retrieved", result)
}

func (h *QuizHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
	case errors.Is(err, service.ErrQuizEmpty):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "quiz has no questions")
	case errors.Is(err, service.ErrAnswerCountMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "answer count does not match question count")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

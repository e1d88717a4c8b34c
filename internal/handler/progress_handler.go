package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
)

// ProgressHandler exposes the per-user progress endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Post("/lessons/:id/complete", h.completeLesson)
	router.Post("/challenges/:id/complete", h.completeChallenge)
	router.Put("/current-lesson", h.updateCurrentLesson)
	router.Post("/time", h.trackTime)
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load progress")
	}

	return utils.SendSuccess(c, "progress retrieved", result)
}

func (h *ProgressHandler) completeLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	result, err := h.service.CompleteLesson(c.Context(), userIDFromContext(c), lessonID)
	if err != nil {
		return h.handleError(c, err, "failed to complete lesson")
	}

	return utils.SendSuccess(c, "lesson completed", result)
}

func (h *ProgressHandler) completeChallenge(c *fiber.Ctx) error {
	challengeID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid challenge id")
	}

	result, err := h.service.CompleteChallenge(c.Context(), userIDFromContext(c), challengeID)
	if err != nil {
		return h.handleError(c, err, "failed to complete challenge")
	}

	return utils.SendSuccess(c, "challenge completed", result)
}

func (h *ProgressHandler) updateCurrentLesson(c *fiber.Ctx) error {
	var payload dto.UpdateCurrentLessonRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.UpdateCurrentLesson(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to update current lesson")
	}

	return utils.SendSuccess(c, "current lesson updated", result)
}

func (h *ProgressHandler) trackTime(c *fiber.Ctx) error {
	var payload dto.TrackTimeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.TrackTime(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to track time")
	}

	return utils.SendSuccess(c, "time tracked", result)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
	"github.com/codequest-labs/codequest-api/pkg/ai"
)

// MentorHandler exposes the mentor chat endpoints.
type MentorHandler struct {
	service service.MentorService
	logger  zerolog.Logger
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(service service.MentorService, logger zerolog.Logger) *MentorHandler {
	return &MentorHandler{
		service: service,
		logger:  logger.With().Str("component", "mentor_handler").Logger(),
	}
}

// Register wires mentor routes.
func (h *MentorHandler) Register(router fiber.Router) {
	router.Post("/ask", h.ask)
	router.Get("/history", h.history)
}

func (h *MentorHandler) ask(c *fiber.Ctx) error {
	var payload dto.MentorAskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Ask(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mentor replied", result)
}

func (h *MentorHandler) history(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	result, err := h.service.History(c.Context(), userIDFromContext(c), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load mentor history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load mentor history")
	}

	return utils.SendSuccess(c, "mentor history retrieved", result)
}

func (h *MentorHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "mentor is busy, try again shortly")
	case errors.Is(err, ai.ErrQuotaExceeded):
		return utils.SendError(c, fiber.StatusPaymentRequired, "mentor quota exhausted")
	case errors.Is(err, ai.ErrUnauthorized), errors.Is(err, ai.ErrUnavailable):
		requestLogger(h.logger, c).Error().Err(err).Msg("mentor provider error")
		return utils.SendError(c, fiber.StatusBadGateway, "mentor is unavailable")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("mentor request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "mentor request failed")
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/achievements", h.achievements)
	router.Post("/content", h.content)
}

func (h *SeedHandler) achievements(c *fiber.Ctx) error {
	var payload dto.SeedAchievementsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Token == "" {
		payload.Token = c.Get("X-Seed-Token")
	}

	result, err := h.service.SeedAchievements(c.Context(), payload)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "achievements seeded", result)
}

func (h *SeedHandler) content(c *fiber.Ctx) error {
	var payload dto.SeedContentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Token == "" {
		payload.Token = c.Get("X-Seed-Token")
	}

	result, err := h.service.SeedContent(c.Context(), payload)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "content seeded", result)
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}

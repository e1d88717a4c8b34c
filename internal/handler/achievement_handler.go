package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
)

// AchievementHandler exposes achievement listing and manual re-sync.
type AchievementHandler struct {
	service service.AchievementService
	logger  zerolog.Logger
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service service.AchievementService, logger zerolog.Logger) *AchievementHandler {
	return &AchievementHandler{
		service: service,
		logger:  logger.With().Str("component", "achievement_handler").Logger(),
	}
}

// Register wires achievement routes.
func (h *AchievementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/sync", h.sync)
}

func (h *AchievementHandler) list(c *fiber.Ctx) error {
	result, err := h.service.ListForUser(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list achievements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list achievements")
	}

	return utils.SendSuccess(c, "achievements retrieved", result)
}

func (h *AchievementHandler) sync(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if err := h.service.Sync(c.Context(), userID); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("manual achievement sync failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "achievement sync failed")
	}

	result, err := h.service.ListForUser(c.Context(), userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list achievements after sync")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list achievements")
	}

	return utils.SendSuccess(c, "achievements synchronized", result)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codequest-labs/codequest-api/internal/service"
	"github.com/codequest-labs/codequest-api/internal/utils"
)

// CourseHandler exposes course and lesson catalog endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/lessons/:id", h.getLesson)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", result)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load course")
	}

	return utils.SendSuccess(c, "course retrieved", result)
}

func (h *CourseHandler) getLesson(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	result, err := h.service.GetLesson(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load lesson")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load lesson")
	}

	return utils.SendSuccess(c, "lesson retrieved", result)
}

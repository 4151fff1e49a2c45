package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/middleware"
	"github.com/resqnet/resq-go-api/internal/service"
	"github.com/resqnet/resq-go-api/internal/utils"
)

// LogHandler serves the supervisor activity log routes.
type LogHandler struct {
	logs   service.SupervisorLogService
	logger zerolog.Logger
}

// NewLogHandler constructs a log handler.
func NewLogHandler(logs service.SupervisorLogService, logger zerolog.Logger) *LogHandler {
	return &LogHandler{
		logs:   logs,
		logger: logger.With().Str("component", "log_handler").Logger(),
	}
}

// Register wires the log routes.
func (h *LogHandler) Register(router fiber.Router) {
	router.Post("/create", h.create)
	router.Get("/region", h.listRegion)
}

func (h *LogHandler) create(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.LogCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, entry, err := h.logs.RecordEvent(c.UserContext(), principal, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to record supervisor event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record event")
	}

	if !created {
		return utils.SendSuccess(c, "admin events are not logged", nil)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "supervisor event recorded", entry)
}

func (h *LogHandler) listRegion(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	entries, err := h.logs.ListForRegion(c.UserContext(), principal)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch region logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch region logs")
	}

	return utils.SendSuccess(c, "region logs fetched", entries)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/middleware"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/service"
	"github.com/resqnet/resq-go-api/internal/utils"
)

// AlertHandler wires SOS alert endpoints including the live websocket feed.
type AlertHandler struct {
	alerts service.AlertService
	logger zerolog.Logger
}

// NewAlertHandler constructs an alert handler.
func NewAlertHandler(alerts service.AlertService, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger.With().Str("component", "alert_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated SOS intake route.
func (h *AlertHandler) RegisterPublic(router fiber.Router) {
	router.Post("", h.raise)
}

// RegisterProtected wires the responder routes, including the websocket
// upgrade for the live feed.
func (h *AlertHandler) RegisterProtected(router fiber.Router) {
	router.Get("/region", h.listRegion)
	router.Patch("/:publicId/status", h.updateStatus)

	router.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/live", websocket.New(h.handleConnection))
}

func (h *AlertHandler) raise(c *fiber.Ctx) error {
	var payload dto.AlertCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.alerts.Raise(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to raise alert")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to raise alert")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "alert raised", response)
}

func (h *AlertHandler) listRegion(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	responses, err := h.alerts.ListByRegion(c.UserContext(), principal, c.Query("status"))
	if err != nil {
		if errors.Is(err, service.ErrNotResponder) {
			return utils.SendError(c, fiber.StatusForbidden, "approval required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list region alerts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list region alerts")
	}

	return utils.SendSuccess(c, "region alerts fetched", responses)
}

func (h *AlertHandler) updateStatus(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AlertStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.alerts.UpdateStatus(c.UserContext(), principal, c.Params("publicId"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrNotResponder):
			return utils.SendError(c, fiber.StatusForbidden, "approval required")
		case errors.Is(err, service.ErrAlertNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "alert not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update alert status")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update alert status")
		}
	}

	return utils.SendSuccess(c, "alert status updated", response)
}

func (h *AlertHandler) handleConnection(conn *websocket.Conn) {
	principal, ok := conn.Locals("principal").(models.Principal)
	if !ok || principal.Region == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusForbidden, "region required"))
		_ = conn.Close()
		return
	}

	feed, cancel := h.alerts.Subscribe(principal.Region)
	defer cancel()

	h.logger.Info().Str("external_id", principal.ExternalID).Str("region", principal.Region).Msg("alert feed connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case alert, open := <-feed:
			if !open {
				_ = conn.Close()
				<-done
				h.logger.Info().Str("external_id", principal.ExternalID).Msg("alert feed closed")
				return
			}
			if err := conn.WriteJSON(alert); err != nil {
				_ = conn.Close()
				<-done
				h.logger.Info().Str("external_id", principal.ExternalID).Msg("alert feed disconnected")
				return
			}
		case <-done:
			_ = conn.Close()
			h.logger.Info().Str("external_id", principal.ExternalID).Msg("alert feed disconnected")
			return
		}
	}
}

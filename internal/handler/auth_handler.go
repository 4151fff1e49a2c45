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

// AuthHandler serves the public auth-status lookup and the login endpoint.
type AuthHandler struct {
	auth   service.AuthService
	logs   service.SupervisorLogService
	logger zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth service.AuthService, logs service.SupervisorLogService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logs:   logs,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Get("/status/:externalId", h.status)
}

// RegisterProtected wires the routes that require a verified bearer token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/login", h.login)
}

func (h *AuthHandler) status(c *fiber.Ctx) error {
	externalID := c.Params("externalId")
	if externalID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "external id required")
	}

	response, err := h.auth.Status(c.UserContext(), externalID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to look up auth status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to look up auth status")
	}

	return utils.SendSuccess(c, "auth status resolved", response)
}

// login establishes the session: the auth middleware has already verified the
// token and resolved the principal; here the email-verification gate applies
// and a supervisor login event is recorded.
func (h *AuthHandler) login(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := service.SessionGate(principal, middleware.EmailVerifiedFromContext(c)); err != nil {
		return utils.SendError(c, fiber.StatusForbidden, "email address not verified")
	}

	payload := dto.LogCreateRequest{EventType: "login"}
	if _, _, err := h.logs.RecordEvent(c.UserContext(), principal, payload); err != nil {
		// A failed audit write must not block the session.
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to record login event")
	}

	return utils.SendSuccess(c, "login successful", dto.NewLoginResponse(principal))
}

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

// SupervisorHandler serves supervisor self-service routes: registration,
// region selection, and profile.
type SupervisorHandler struct {
	onboarding service.OnboardingService
	logger     zerolog.Logger
}

// NewSupervisorHandler constructs a supervisor handler.
func NewSupervisorHandler(onboarding service.OnboardingService, logger zerolog.Logger) *SupervisorHandler {
	return &SupervisorHandler{
		onboarding: onboarding,
		logger:     logger.With().Str("component", "supervisor_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated registration route.
func (h *SupervisorHandler) RegisterPublic(router fiber.Router) {
	router.Post("/register", h.register)
}

// RegisterProtected wires the routes that require a verified bearer token.
func (h *SupervisorHandler) RegisterProtected(router fiber.Router) {
	router.Patch("/complete-profile", h.completeProfile)
	router.Get("/profile", h.profile)
}

func (h *SupervisorHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.onboarding.Register(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrAccountExists):
			return utils.SendError(c, fiber.StatusConflict, "account already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to register supervisor")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register supervisor")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "identity created, complete profile to select a region", response)
}

func (h *SupervisorHandler) completeProfile(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CompleteProfileRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.onboarding.CompleteProfile(c.UserContext(), principal, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegionRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "region selection is required")
		case errors.Is(err, service.ErrSupervisorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "supervisor record not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to complete supervisor profile")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to complete profile")
		}
	}

	return utils.SendSuccess(c, "profile updated, request sent to the region admin", response)
}

func (h *SupervisorHandler) profile(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.onboarding.Profile(c.UserContext(), principal)
	if err != nil {
		if errors.Is(err, service.ErrSupervisorNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "supervisor record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch supervisor profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch profile")
	}

	return utils.SendSuccess(c, "profile fetched", response)
}

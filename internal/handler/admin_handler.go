package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/resqnet/resq-go-api/internal/middleware"
	"github.com/resqnet/resq-go-api/internal/service"
	"github.com/resqnet/resq-go-api/internal/utils"
)

// AdminHandler serves the region-scoped supervisor management routes. All
// routes assume the admin role guard already ran.
type AdminHandler struct {
	onboarding service.OnboardingService
	logger     zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(onboarding service.OnboardingService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		onboarding: onboarding,
		logger:     logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires the admin supervisor-management routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/supervisors/pending", h.listPending)
	router.Get("/supervisors/approved", h.listApproved)
	router.Patch("/supervisors/:id/approve", h.approve)
	router.Patch("/supervisors/:id/revoke", h.revoke)
}

func (h *AdminHandler) listPending(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	responses, err := h.onboarding.ListPending(c.UserContext(), principal)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list pending supervisors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list pending supervisors")
	}

	return utils.SendSuccess(c, "pending supervisors fetched", responses)
}

func (h *AdminHandler) listApproved(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	responses, err := h.onboarding.ListApproved(c.UserContext(), principal)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list approved supervisors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list approved supervisors")
	}

	return utils.SendSuccess(c, "approved supervisors fetched", responses)
}

func (h *AdminHandler) approve(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid supervisor id")
	}

	response, err := h.onboarding.Approve(c.UserContext(), principal, targetID)
	if err != nil {
		return h.mapLifecycleError(c, err, "failed to approve supervisor")
	}

	return utils.SendSuccess(c, "supervisor approved", response)
}

func (h *AdminHandler) revoke(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid supervisor id")
	}

	response, err := h.onboarding.Revoke(c.UserContext(), principal, targetID)
	if err != nil {
		return h.mapLifecycleError(c, err, "failed to revoke supervisor")
	}

	return utils.SendSuccess(c, "supervisor access revoked", response)
}

func (h *AdminHandler) mapLifecycleError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrNotAdmin), errors.Is(err, service.ErrCrossRegion):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrSupervisorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "supervisor not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/utils"
)

// RequireRole ensures the resolved principal holds one of the allowed roles.
// Role membership comes from the directory lookup, never from client claims.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if _, ok := allowed[principal.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

// RequireApproved admits admins and approved supervisors only. Supervisors
// still pending approval (or with no region selected) are turned away.
func RequireApproved() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if principal.IsAdmin() {
			return c.Next()
		}

		if principal.Role == models.RoleSupervisor && principal.IsApproved && principal.Region != "" {
			return c.Next()
		}

		return utils.SendError(c, fiber.StatusForbidden, "approval required")
	}
}

package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/service"
	"github.com/resqnet/resq-go-api/internal/utils"
	"github.com/resqnet/resq-go-api/pkg/identity"
)

const principalLocalsKey = "principal"

// Authenticate verifies the bearer token against the identity provider and
// resolves the directory-backed principal before any route logic runs. Both
// calls share a bounded timeout; on expiry the request fails with 503 instead
// of hanging. Fail closed: no principal, no business logic.
func Authenticate(provider identity.Provider, auth service.AuthService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		baseCtx := c.UserContext()
		if baseCtx == nil {
			baseCtx = context.Background()
		}
		ctx := baseCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(baseCtx, timeout)
			defer cancel()
		}

		id, err := provider.VerifyToken(ctx, tokenString)
		if err != nil {
			if isUnavailable(err) {
				return utils.SendError(c, fiber.StatusServiceUnavailable, "identity provider unavailable")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		principal, err := auth.ResolvePrincipal(ctx, id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAccountNotFound):
				return utils.SendError(c, fiber.StatusNotFound, "account not found")
			case isUnavailable(err):
				return utils.SendError(c, fiber.StatusServiceUnavailable, "account directory unavailable")
			default:
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve account")
			}
		}

		c.Locals(principalLocalsKey, principal)
		c.Locals("identity_email_verified", id.EmailVerified)

		return c.Next()
	}
}

// PrincipalFromContext returns the principal resolved by Authenticate.
func PrincipalFromContext(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalLocalsKey).(models.Principal)
	return principal, ok
}

// EmailVerifiedFromContext reports the provider-side verified-email flag for
// the current request's identity.
func EmailVerifiedFromContext(c *fiber.Ctx) bool {
	verified, ok := c.Locals("identity_email_verified").(bool)
	return ok && verified
}

func isUnavailable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

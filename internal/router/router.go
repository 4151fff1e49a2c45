package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resqnet/resq-go-api/internal/config"
	"github.com/resqnet/resq-go-api/internal/handler"
	"github.com/resqnet/resq-go-api/internal/middleware"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	SupervisorHandler *handler.SupervisorHandler
	AdminHandler      *handler.AdminHandler
	LogHandler        *handler.LogHandler
	AlertHandler      *handler.AlertHandler
	AuthMiddleware    fiber.Handler
	PublicRateLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided auth middleware, or a no-op if nil
	authMiddleware := deps.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	publicLimiter := deps.PublicRateLimiter
	if publicLimiter == nil {
		publicLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(app.Group("/auth"))
		deps.AuthHandler.RegisterProtected(app.Group("/auth", authMiddleware))
	}

	if deps.SupervisorHandler != nil {
		deps.SupervisorHandler.RegisterPublic(app.Group("/supervisor", publicLimiter))
		deps.SupervisorHandler.RegisterProtected(app.Group("/supervisor", authMiddleware))
	}

	if deps.AdminHandler != nil {
		admin := app.Group("/admin", authMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}

	if deps.LogHandler != nil {
		deps.LogHandler.Register(app.Group("/logs", authMiddleware))
	}

	if deps.AlertHandler != nil {
		deps.AlertHandler.RegisterPublic(app.Group("/alerts", publicLimiter))
		deps.AlertHandler.RegisterProtected(app.Group("/alerts", authMiddleware, middleware.RequireApproved()))
	}
}

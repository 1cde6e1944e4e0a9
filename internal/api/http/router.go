package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Commands       *handlers.CommandsHandler
	State          *handlers.StateHandler
	CRM            *handlers.CRMHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Users.Register)

	// command submission is open: login happens through it
	app.Post("/commands", cfg.Commands.Submit)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/state", cfg.State.GetState)
	protected.Get("/dashboard", cfg.State.GetDashboard)
	protected.Get("/crm/reports", cfg.CRM.Reports)
	protected.Get("/crm/tickets", cfg.CRM.Tickets)
}

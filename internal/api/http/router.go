package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/facility-helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Auth           *handlers.AuthHandler
	Escalation     *handlers.EscalationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Mutations require a staff token; forced
// closure additionally requires the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// Action-discriminated engine boundary used by the intake forms.
	app.Post("/api/requests", cfg.Tickets.Dispatch)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/audit", cfg.Tickets.GetAudit)

	staffOnly := tickets.Group("", cfg.AuthMiddleware.Handle)
	staffOnly.Post("/:id/status", cfg.Tickets.SetStatus)
	staffOnly.Post("/:id/extend", cfg.Tickets.Extend)
	staffOnly.Post("/:id/force-close", auth.RequireAdmin(), cfg.Tickets.ForceClose)

	app.Get("/escalation/contacts", cfg.Escalation.ListContacts)
}

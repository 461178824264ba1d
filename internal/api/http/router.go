package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/http/handlers"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Customers      *handlers.CustomersHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	customers := protected.Group("/customers")
	customers.Post("", cfg.Customers.Create)
	customers.Get("", cfg.Customers.List)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Patch("/:id", cfg.Customers.Update)
	customers.Get("/:id/logs", cfg.Customers.ListLogs)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/logs", cfg.Tickets.CreateLog)
	tickets.Get("/:id/logs", cfg.Tickets.ListLogs)

	reports := protected.Group("/reports", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin))
	reports.Get("/tickets-summary", cfg.Reports.TicketsSummary)
	reports.Get("/agent-workload", cfg.Reports.AgentWorkload)
	reports.Get("/response-times", cfg.Reports.ResponseTimes)
}

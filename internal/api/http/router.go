package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/support-hub/support-hub/internal/api/http/handlers"
	"github.com/support-hub/support-hub/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Customers      *handlers.CustomersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), cfg.Tickets.ListTickets)
	tickets.Get("/me", auth.RequireRole(auth.RoleCustomer), cfg.Tickets.ListOwnTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Put("/:id/status", auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), cfg.Tickets.UpdateStatus)

	customers := protected.Group("/customers")
	customers.Post("", auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), cfg.Customers.CreateCustomer)
	customers.Get("", auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), cfg.Customers.SearchCustomers)
	customers.Get("/me", auth.RequireRole(auth.RoleCustomer), cfg.Customers.GetOwnProfile)
	customers.Put("/me", auth.RequireRole(auth.RoleCustomer), cfg.Customers.UpdateOwnProfile)
	customers.Get("/:externalId", auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), cfg.Customers.GetCustomer)
}

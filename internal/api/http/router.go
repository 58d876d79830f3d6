package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Guards are attached per route so that
// unknown paths still answer 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/request-verification-code", cfg.Auth.RequestVerificationCode)
	authGroup.Post("/register-with-code", cfg.Auth.RegisterWithCode)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/request-reset-code", cfg.Auth.RequestResetCode)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireRole(domain.RoleAdmin)
	technician := auth.RequireRole(domain.RoleTechnician)
	user := auth.RequireRole(domain.RoleUser)
	anyone := auth.RequireAnyRole()

	app.Get("/tickets", authn, admin, cfg.Tickets.ListAll)
	app.Get("/tickets/assigned", authn, technician, cfg.Tickets.ListAssigned)
	app.Get("/tickets/report", authn, admin, cfg.Tickets.Report)
	app.Get("/mytickets", authn, user, cfg.Tickets.ListMine)
	app.Post("/tickets", authn, user, cfg.Tickets.Create)
	app.Put("/tickets/:id/assign", authn, admin, cfg.Tickets.Assign)
	app.Put("/tickets/:id/priority", authn, admin, cfg.Tickets.UpdatePriority)
	app.Post("/tickets/:id/comment", authn, technician, cfg.Tickets.Comment)
	app.Post("/tickets/:id/resolve", authn, technician, cfg.Tickets.Resolve)
	app.Post("/ticket/:id/resolve", authn, technician, cfg.Tickets.Resolve)
	app.Get("/tickets/:id/comments", authn, anyone, cfg.Tickets.Comments)
	app.Delete("/tickets/:id", authn, user, cfg.Tickets.Delete)

	app.Get("/technicians", authn, admin, cfg.Admin.ListTechnicians)
	app.Post("/register-technician", authn, admin, cfg.Admin.RegisterTechnician)

	adminGroup := app.Group("/admin")
	adminGroup.Get("/users", authn, admin, cfg.Admin.ListUsers)
	adminGroup.Delete("/users/:id", authn, admin, cfg.Admin.DeleteUser)
	adminGroup.Get("/technicians", authn, admin, cfg.Admin.ListTechnicians)
	adminGroup.Delete("/technicians/:id", authn, admin, cfg.Admin.DeleteTechnician)
}

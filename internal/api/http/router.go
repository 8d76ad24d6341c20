package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cloudblitz/enquiry-service/internal/api/http/handlers"
	"github.com/cloudblitz/enquiry-service/internal/auth"
	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Enquiries      *handlers.EnquiriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	enquiries := api.Group("/enquiries")
	// Creation is open to anonymous callers; a token, when present, records
	// the creator.
	enquiries.Post("", cfg.AuthMiddleware.HandleOptional, cfg.Enquiries.Create)
	enquiries.Get("", cfg.AuthMiddleware.Handle, cfg.Enquiries.List)
	enquiries.Get("/:id", cfg.AuthMiddleware.Handle, cfg.Enquiries.Get)
	enquiries.Put("/:id/assign", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAdmin, domain.RoleStaff), cfg.Enquiries.Assign)
	enquiries.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Enquiries.Update)
	enquiries.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Enquiries.Delete)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Delete)
}

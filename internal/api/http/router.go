package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	Notifications  *handlers.NotificationsHandler
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
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)

	api.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	api.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)
	api.Get("/profile/check-username/:username", cfg.Auth.CheckUsername)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/generate", auth.RequireCapability(auth.CapCreateTicket), cfg.Tickets.Create)
	tickets.Get("/", auth.RequireCapability(auth.CapViewAllTickets), cfg.StaffTickets.ListAll)
	tickets.Get("/it-staff", auth.RequireCapability(auth.CapWorkTickets), cfg.StaffTickets.StaffDirectory)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/stats/it-staff", auth.RequireCapability(auth.CapViewPerformance), cfg.StaffTickets.Performance)
	tickets.Get("/user/:userId", cfg.Tickets.ListOwn)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id/accept", auth.RequireCapability(auth.CapWorkTickets), cfg.StaffTickets.Accept)
	tickets.Put("/:id/reject", auth.RequireCapability(auth.CapWorkTickets), cfg.StaffTickets.Reject)
	tickets.Put("/:id/complete", auth.RequireCapability(auth.CapWorkTickets), cfg.StaffTickets.Complete)
	tickets.Put("/:id/forward", auth.RequireCapability(auth.CapWorkTickets), cfg.StaffTickets.Forward)
	tickets.Put("/:id/status", auth.RequireCapability(auth.CapAdminOverride), cfg.StaffTickets.OverrideStatus)

	dashboard := api.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/welcome", auth.RequireCapability(auth.CapViewDashboard), cfg.Dashboard.Welcome)
	dashboard.Get("/stats", auth.RequireCapability(auth.CapAdminDashboard), cfg.Dashboard.UserStats)
	dashboard.Get("/users/recent", auth.RequireCapability(auth.CapAdminDashboard), cfg.Dashboard.RecentUsers)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireCapability(auth.CapManageUsers))
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/roles/stats", cfg.Users.RoleStats)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
	users.Put("/:id/role", cfg.Users.ChangeRole)

	notifications := api.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireCapability(auth.CapViewNotification))
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
}

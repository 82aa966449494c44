package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/handlers"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Users         *handlers.UserHandler
	Groups        *handlers.GroupHandler
	Newsletters   *handlers.NewsletterHandler
	Contributions *handlers.ContributionHandler
	Templates     *handlers.TemplateHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	perms *services.Permissions,
	h Handlers,
) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Credential endpoints that need no token: 10 req/min per IP
	credentialLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	app.Post("/auth/login", credentialLimiter, h.Auth.Login)
	app.Post("/auth/bootstrap-admin", credentialLimiter, h.Auth.BootstrapAdmin)

	// Everything below requires a valid token for an active user
	authed := []fiber.Handler{middleware.JWTProtected(cfg), middleware.CurrentUser(authService)}
	superAdmin := middleware.SuperAdminRequired(perms)

	auth := app.Group("/auth", authed...)
	auth.Get("/me", h.Auth.Me)
	auth.Post("/change-password", h.Auth.ChangePassword)
	auth.Post("/reset-password/:user_id", superAdmin, h.Auth.ResetPassword)

	users := app.Group("/users", append(authed, superAdmin)...)
	users.Get("/", h.Users.List)
	users.Post("/", h.Users.Create)
	users.Get("/:id", h.Users.Get)
	users.Put("/:id", h.Users.Update)
	users.Delete("/:id", h.Users.Delete)

	groups := app.Group("/groups", append(authed, superAdmin)...)
	groups.Get("/", h.Groups.List)
	groups.Post("/", h.Groups.Create)
	groups.Get("/:id", h.Groups.Get)
	groups.Put("/:id", h.Groups.Update)
	groups.Delete("/:id", h.Groups.Delete)
	groups.Post("/:id/members", h.Groups.AddMember)
	groups.Delete("/:id/members/:user_id", h.Groups.RemoveMember)

	// Newsletter and contribution permissions are resolved per resource by
	// the services.
	newsletters := app.Group("/newsletters", authed...)
	newsletters.Get("/", h.Newsletters.List)
	newsletters.Post("/", h.Newsletters.Create)
	newsletters.Get("/:id", h.Newsletters.Get)
	newsletters.Put("/:id", h.Newsletters.Update)
	newsletters.Delete("/:id", h.Newsletters.Delete)
	newsletters.Post("/:id/publish", h.Newsletters.Publish)
	newsletters.Put("/:id/layout", h.Newsletters.SetLayout)
	newsletters.Post("/:id/render", h.Newsletters.Render)
	newsletters.Post("/:id/ai-draft", h.Newsletters.GenerateDraft)
	newsletters.Get("/:id/admins", h.Newsletters.ListAdmins)
	newsletters.Post("/:id/admins", h.Newsletters.GrantAdmin)
	newsletters.Delete("/:id/admins/:user_id", h.Newsletters.RevokeAdmin)
	newsletters.Get("/:id/contributions", h.Contributions.List)
	newsletters.Post("/:id/contributions", h.Contributions.Upsert)
	newsletters.Get("/:id/my-contributions", h.Contributions.ListMine)

	contributions := app.Group("/contributions", authed...)
	contributions.Put("/:id", h.Contributions.Update)
	contributions.Post("/:id/status", h.Contributions.SetStatus)

	templates := app.Group("/templates", authed...)
	templates.Get("/", h.Templates.List)
	templates.Get("/:id", h.Templates.Get)
	templates.Post("/", middleware.AdminRequired(perms), h.Templates.Create)
	templates.Put("/:id", middleware.AdminRequired(perms), h.Templates.Update)
	templates.Delete("/:id", middleware.AdminRequired(perms), h.Templates.Delete)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	PublicPosts   *handlers.PublicPostsHandler
	Posts         *handlers.PostsHandler
	Categories    *handlers.CategoriesHandler
	Users         *handlers.UsersHandler
	Authenticator *auth.Authenticator
	Policy        *auth.Policy
}

// AccessRules is the ordered route policy, first match wins. Everything not
// listed requires authentication.
func AccessRules() []auth.RouteRule {
	return []auth.RouteRule{
		{Pattern: "/health/**", Access: auth.AccessPublic},
		{Pattern: "/api/auth/**", Access: auth.AccessPublic},
		{Pattern: "/api/posts/public/**", Access: auth.AccessPublic},
		{Pattern: "/api/users/public/**", Access: auth.AccessPublic},
		{Pattern: "/api/categories/**", Access: auth.AccessPublic},
		{Pattern: "/api/menu", Access: auth.AccessPublic},
		{Pattern: "/api/profile/**", Access: auth.AccessAuthenticated},
		{Pattern: "/api/admin/**", Access: auth.AccessRoles, Roles: []string{auth.RoleAdmin}},
	}
}

// RegisterRoutes wires HTTP routes behind the authenticator and the route
// policy. The authenticator never rejects by itself; the policy does.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authenticator.Handle)
	app.Use(cfg.Policy.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/google", cfg.Auth.GoogleLogin)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)

	profile := api.Group("/profile")
	profile.Put("", cfg.Profile.UpdateProfile)
	profile.Post("/password", cfg.Profile.ChangePassword)
	profile.Put("/avatar", cfg.Profile.UpdateAvatar)
	profile.Delete("/avatar", cfg.Profile.DeleteAvatar)

	public := api.Group("/posts/public")
	public.Get("", cfg.PublicPosts.List)
	public.Get("/featured", cfg.PublicPosts.Featured)
	public.Get("/search", cfg.PublicPosts.Search)
	public.Get("/category/:id", cfg.PublicPosts.ByCategory)
	public.Get("/:slug", cfg.PublicPosts.GetBySlug)

	categories := api.Group("/categories")
	categories.Get("", cfg.Categories.List)
	categories.Get("/tree", cfg.Categories.Tree)
	categories.Get("/slug/:slug", cfg.Categories.GetBySlug)
	categories.Get("/:id", cfg.Categories.Get)

	api.Get("/menu", cfg.Categories.Menu)
	api.Get("/users/public/:id", cfg.Users.PublicUser)

	admin := api.Group("/admin")
	admin.Get("/posts", cfg.Posts.List)
	admin.Post("/posts", cfg.Posts.Create)
	admin.Get("/posts/:id", cfg.Posts.Get)
	admin.Put("/posts/:id", cfg.Posts.Update)
	admin.Delete("/posts/:id", cfg.Posts.Delete)

	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Delete)

	admin.Post("/categories", cfg.Categories.Create)
	admin.Put("/categories/:id", cfg.Categories.Update)
	admin.Delete("/categories/:id", cfg.Categories.Delete)
}

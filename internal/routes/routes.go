package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	apiKeyHandler *handlers.APIKeyHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limiter: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.SignIn)
	auth.Post("/confirm", authHandler.Confirm)
	auth.Post("/confirm/resend", authHandler.ResendConfirmation)
	auth.Post("/recover", authHandler.RequestRecovery)
	auth.Post("/recover/complete", authHandler.CompleteRecovery)
	auth.Post("/remember", authHandler.RememberSignIn)

	// Protected routes (JWT required) - apply middleware per route so
	// it never touches the public ones
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.SignOut)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)
	api.Get("/apikeys", middleware.JWTProtected(cfg), apiKeyHandler.List)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/accounts", accountHandler.List)
	admin.Put("/accounts/:id/role", accountHandler.SetRole)
}

package http

import (
	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/http/handlers"
	"github.com/fliproyale/waitlist/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	waitlistHandler *handlers.WaitlistHandler,
	legacyHandler *handlers.LegacyHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, " + cfg.SessionHeader,
		AllowCredentials: cfg.AllowedOrigins != "*",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Waitlist (public)
	api.Post("/waitlist", waitlistHandler.Signup)
	api.Get("/waitlist/tasks", waitlistHandler.Tasks)

	// Waitlist (session)
	withSession := middleware.SessionMiddleware(cfg)
	api.Get("/waitlist/me", withSession, waitlistHandler.Me)
	api.Post("/waitlist/task", withSession, waitlistHandler.ClaimTask)

	// Per-username variant
	api.Get("/legacy/:username/status", legacyHandler.Status)
	api.Post("/legacy/:username/tasks", legacyHandler.ClaimTask)
}

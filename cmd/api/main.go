package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/db"
	"github.com/fliproyale/waitlist/internal/events"
	apphttp "github.com/fliproyale/waitlist/internal/http"
	"github.com/fliproyale/waitlist/internal/http/handlers"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/fliproyale/waitlist/internal/services"
	"github.com/fliproyale/waitlist/internal/store"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Task catalog
	cat, err := catalog.Load(cfg.TasksFile)
	if err != nil {
		log.Fatal("failed to load task catalog", zap.Error(err))
	}
	log.Info("task catalog loaded", zap.Int("tasks", len(cat.Tasks())))

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	kv := store.NewRedisStore(rdb, log)
	keys := repositories.NewKeys(cfg.KeyPrefix)

	// Repositories
	userRepo := repositories.NewUserRepo(kv, keys)
	sessionRepo := repositories.NewSessionRepo(kv, keys)
	referralRepo := repositories.NewReferralRepo(kv, keys)
	legacyRepo := repositories.NewLegacyRepo(kv, keys)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)

	// Services
	userService := services.NewUserService(userRepo, log)
	referralService := services.NewReferralService(userRepo, referralRepo, publisher, cfg.EventsChannel, log)
	taskService := services.NewTaskService(userRepo, cat, log)
	sessionService := services.NewSessionService(sessionRepo, cfg.SessionTTL)
	waitlistService := services.NewWaitlistService(userRepo, userService, referralService, taskService, sessionService, cat, publisher, cfg, log)
	legacyService := services.NewLegacyService(legacyRepo, cat, cfg.ClaimsOpen, log)

	// Handlers
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService, cfg, log)
	legacyHandler := handlers.NewLegacyHandler(legacyService, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"ok": false, "error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, waitlistHandler, legacyHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server",
		zap.String("addr", addr),
		zap.Bool("signups_open", cfg.SignupsOpen),
		zap.Bool("claims_open", cfg.ClaimsOpen),
	)
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

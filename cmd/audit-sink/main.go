package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/db"
	"github.com/fliproyale/waitlist/internal/events"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/fliproyale/waitlist/migrations"
	"go.uber.org/zap"
)

// Audit sink: subscribes to waitlist events on Redis and appends them to the
// Postgres audit_log table.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	auditRepo := repositories.NewAuditRepo(pool)
	subscriber := events.NewRedisSubscriber(rdb, log)

	err = subscriber.Subscribe(ctx, cfg.EventsChannel, func(event events.Event) {
		entry := toAuditLog(event)
		if err := auditRepo.Log(ctx, entry); err != nil {
			log.Error("failed to write audit log", zap.String("type", event.Type), zap.Error(err))
			return
		}
		log.Debug("audit log written", zap.String("type", event.Type))
	})
	if err != nil {
		log.Fatal("failed to subscribe", zap.String("channel", cfg.EventsChannel), zap.Error(err))
	}

	log.Info("audit-sink started", zap.String("channel", cfg.EventsChannel))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down audit-sink")
	cancel()
}

// toAuditLog maps an event onto an audit row. The acting user is the user the
// event is about; referral credits are recorded against the referrer.
func toAuditLog(event events.Event) models.AuditLog {
	entry := models.AuditLog{
		ActorType:  "user",
		Action:     event.Type,
		EntityType: "waitlist_user",
		Meta:       event.Payload,
	}

	if id, ok := event.Str("user_id"); ok {
		entry.ActorUserID = &id
		entry.EntityID = &id
	}
	if event.Type == events.EventReferralCredited {
		if id, ok := event.Str("referrer_id"); ok {
			entry.EntityID = &id
		}
	}
	if entry.ActorUserID == nil {
		entry.ActorType = "system"
	}
	return entry
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classgrid/classgrid-backend/internal/config"
	"github.com/classgrid/classgrid-backend/internal/database"
	"github.com/classgrid/classgrid-backend/internal/handler"
	"github.com/classgrid/classgrid-backend/internal/logger"
	"github.com/classgrid/classgrid-backend/internal/router"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/store"
	"github.com/classgrid/classgrid-backend/internal/undo"
	"github.com/classgrid/classgrid-backend/internal/validator"
	"github.com/classgrid/classgrid-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ClassGrid Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Stores.
	userStore := store.NewUserStore(pool)
	orgStore := store.NewOrgStore(pool)
	classStore := store.NewClassStore(pool)
	entityStore := store.NewEntityStore(pool)
	auditStore := store.NewAuditStore(pool)

	// The undo log replays inverses through the same entity store the
	// services mutate with.
	undoLog := undo.NewLog(entityStore, cfg.UndoWindow, log)

	// Services.
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userStore, authService)
	eventService := service.NewEventService(rdb, log)
	orgService := service.NewOrgService(orgStore, classStore, entityStore, undoLog, eventService, log)
	classService := service.NewClassService(classStore, entityStore, undoLog, eventService, log)
	joinService := service.NewJoinService(orgStore, classStore, entityStore, eventService, log)
	accessService := service.NewAccessService(orgStore, classStore, userStore)

	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authService, userService),
		Org:    handler.NewOrgHandler(orgService, auditStore),
		Class:  handler.NewClassHandler(classService),
		Join:   handler.NewJoinHandler(joinService),
		Access: handler.NewAccessHandler(accessService),
		Undo:   handler.NewUndoHandler(undoLog, eventService),
		WS:     handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// Background workers.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(auditStore, rdb, log)
	go auditWorker.Start(workerCtx)

	r := router.SetupRouter(authService, accessService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the audit worker and let the queue drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

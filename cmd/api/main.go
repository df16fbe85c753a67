// Package main is the entry point for the Money Tracker API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/money-tracker/backend/config"
	"github.com/money-tracker/backend/internal/infra/cache"
	"github.com/money-tracker/backend/internal/infra/db"
	"github.com/money-tracker/backend/internal/infra/dependency"
	"github.com/money-tracker/backend/internal/infra/server/router"
	"github.com/money-tracker/backend/internal/integration/entrypoint/controller"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting Money Tracker API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		slog.Warn("Redis connection failed, live updates stay in-process", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close redis connection", "error", err)
			}
		}()
	}

	var r *router.Router

	database, err := db.NewPostgresConnection(ctx, &cfg.Database)
	if err != nil {
		slog.Warn("Database connection failed, running without database", "error", err)
		r = router.NewRouter(router.Controllers{
			Health: controller.NewHealthController(nil, cache.HealthCheck(redisClient)),
		}, router.Middlewares{})
	} else {
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()

		if err := database.Migrate(); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully")

		injector, err := dependency.NewInjector(cfg, database, dependency.Options{Redis: redisClient})
		if err != nil {
			slog.Error("Failed to wire dependencies", "error", err)
			os.Exit(1)
		}
		r = injector.Router

		if cfg.Email.WorkerEnabled {
			go injector.EmailWorker.Start(ctx)
		}
		for _, limiter := range injector.Limiters {
			limiter.StartCleanup(cfg.Limits.Window, ctx.Done())
		}
	}

	engine := r.Setup(cfg.Server.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}

// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/database"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/events"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/handler"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Default(cfg.LogLevel)

	// ── 2. Store ─────────────────────────────────────────────────────────
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer store.Close()

	// ── 3. Optional collaborators ────────────────────────────────────────
	publisher, err := events.New(cfg.Events, log)
	if err != nil {
		log.Fatal("EVENTS", err.Error())
	}
	defer publisher.Close()

	var limiter *handler.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handler.NewRateLimiter(cfg.RateLimit, openRedis(ctx, cfg.Redis, log), log)
	}

	// ── 4. Wire up layers ────────────────────────────────────────────────
	eventSvc := service.NewEventService(store, publisher, log)
	eventHandler := handler.NewEventHandler(eventSvc, log)
	router := handler.NewRouter(eventHandler, handler.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		RateLimiter: limiter,
		Log:         log,
	})

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("listening on http://localhost:%s (store=%s, events=%s)",
			cfg.Port, cfg.Store, cfg.Events.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("SERVER", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SERVER", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SERVER", "graceful shutdown failed: "+err.Error())
		return
	}
	log.Info("SERVER", "stopped")
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (repository.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("DATABASE", "using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	pool, err := database.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	log.LogDatabase("CONNECT", cfg.DB.Name, "connected to PostgreSQL")
	return repository.NewPostgresStore(pool, log), nil
}

// openRedis returns nil when Redis is not configured or not reachable, in
// which case rate limiting stays in-process.
func openRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("ping %s failed, using local rate limiter: %v", cfg.Addr, err))
		_ = rdb.Close()
		return nil
	}
	log.Info("REDIS", "connected to "+cfg.Addr)
	return rdb
}

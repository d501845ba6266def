package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/api"
	"github.com/prasad-echortech/chat-feature/internal/chat"
	"github.com/prasad-echortech/chat-feature/internal/config"
	"github.com/prasad-echortech/chat-feature/internal/directory"
	"github.com/prasad-echortech/chat-feature/internal/feed"
	"github.com/prasad-echortech/chat-feature/internal/handlers"
	"github.com/prasad-echortech/chat-feature/internal/identity"
	"github.com/prasad-echortech/chat-feature/internal/notify"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Message store: Redis when configured, in-memory otherwise
	var (
		messages    store.MessageStore
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		messages = redisStore
		redisClient = redisStore.Client()
		logger.Info().Msg("connected to Redis")
	} else {
		messages = store.NewMemoryMessageStore()
		logger.Warn().Msg("REDIS_URL not set, messages are held in memory")
	}

	// Room store: Postgres when configured, SQLite otherwise
	var rooms store.RoomStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresRoomStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pgStore.Close()
		rooms = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteRoomStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sqliteStore.Close()
		rooms = sqliteStore
		logger.Info().Msg("using SQLite room store")
	}

	// Notification bus: NATS, Redis pub/sub, or in-process
	var bus notify.Bus
	switch {
	case cfg.NatsURL != "":
		natsBus, err := notify.NewNatsBus(cfg.NatsURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("NATS connection failed")
		}
		defer natsBus.Close()
		bus = natsBus
		logger.Info().Msg("connected to NATS")
	case redisClient != nil:
		bus = notify.NewRedisBus(redisClient)
	default:
		memBus := notify.NewMemoryBus()
		defer memBus.Close()
		bus = memBus
	}

	// Identity provider stand-in (the real deployment fronts an external
	// service)
	provider := identity.NewStaticProvider(cfg.AuthTokens)

	// Core services
	chatSvc := chat.NewService(messages, rooms, bus, logger)
	dir := directory.New(rooms, bus, logger)
	projector := feed.NewProjector(messages, bus, logger)

	h := handlers.NewHandler(chatSvc, dir, projector, provider, rooms, messages)
	router := api.NewRouter(logger, h, provider, redisClient)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

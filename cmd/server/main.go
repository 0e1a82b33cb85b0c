package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/database"
	"github.com/yukikurage/field-task-api/internal/logger"
	"github.com/yukikurage/field-task-api/internal/metrics"
	"github.com/yukikurage/field-task-api/internal/notify"
	"github.com/yukikurage/field-task-api/internal/seed"
	"github.com/yukikurage/field-task-api/internal/server"
	"github.com/yukikurage/field-task-api/internal/storage"
	"github.com/yukikurage/field-task-api/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	gin.SetMode(cfg.GinMode)

	if err := validation.Register(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validation rules")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database; migrations run on connect
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := seed.EnsureSuperAdmin(ctx, db, cfg.Seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed super admin")
	}

	backend, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize photo storage")
	}

	publisher, err := notify.Connect(&cfg.NATS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect notification publisher")
	}
	defer publisher.Close()

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session store")
	}

	srv, err := server.New(cfg, server.Deps{
		DB:        db,
		Sessions:  store,
		Storage:   backend,
		Publisher: publisher,
		Metrics:   metrics.New(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("db", cfg.DB.Driver).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// newSessionStore returns a signed cookie store, or a Redis-backed store when
// SESSION_STORE=redis. The cookie only ever carries the opaque session token.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.Session.Store {
	case "redis":
		redisAddr := cfg.Session.RedisHost + ":" + cfg.Session.RedisPort
		s, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // password (empty = no password)
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = cookie.NewStore([]byte(cfg.Session.Secret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

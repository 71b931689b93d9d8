package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playdate-buddy-backend/internal/cache"
	"playdate-buddy-backend/internal/chat"
	"playdate-buddy-backend/internal/config"
	"playdate-buddy-backend/internal/handlers"
	"playdate-buddy-backend/internal/middleware"
	"playdate-buddy-backend/internal/places"
	"playdate-buddy-backend/internal/repository"
	"playdate-buddy-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	dateRepo := repository.NewDateRepository(db)

	checks := map[string]handlers.Pinger{"database": db}

	// Optional place query cache
	var queryCache services.QueryCache
	if cfg.Redis.Addr != "" {
		placeCache, err := cache.New(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer placeCache.Close()
		queryCache = placeCache
		checks["redis"] = placeCache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Place query cache enabled")
	}

	// External providers
	placesClient, err := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithTimeout(cfg.Places.Timeout),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create places client")
	}
	chatClient, err := chat.NewClient(cfg.Chat.Server, cfg.Chat.APIKey, chat.WithTimeout(cfg.Chat.Timeout))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create chat client")
	}

	var pusher services.Pusher
	if cfg.APNs.KeyPath != "" {
		apnsPusher, err := services.NewAPNsPusher(services.APNsOptions{
			KeyPath:    cfg.APNs.KeyPath,
			KeyID:      cfg.APNs.KeyID,
			TeamID:     cfg.APNs.TeamID,
			Topic:      cfg.APNs.Topic,
			Production: cfg.APNs.Production,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs pusher")
		}
		pusher = apnsPusher
		log.Info().Bool("production", cfg.APNs.Production).Msg("Push notifications enabled")
	}

	// Initialize services
	hub := services.NewNotificationHub(userRepo, pusher)
	resolver := services.NewPlaceResolver(placeRepo, placesClient, queryCache)
	authService := services.NewAuthService(userRepo, resolver, chatClient, cfg.JWT.Secret, cfg.Password.BcryptCost)
	userService := services.NewUserService(userRepo, childRepo, resolver, cfg.Password.BcryptCost)
	friendService := services.NewFriendService(userRepo, friendRepo, hub)
	placeService := services.NewPlaceService(userRepo, placeRepo, reviewRepo, resolver)
	reviewService := services.NewReviewService(userRepo, placeRepo, reviewRepo)
	dateService := services.NewDateService(userRepo, placeRepo, dateRepo, hub)

	var avatarService *services.AvatarService
	if cfg.AWS.S3Bucket != "" {
		avatarService, err = services.NewAvatarService(ctx, userRepo, services.AvatarOptions{
			Region:       cfg.AWS.Region,
			Bucket:       cfg.AWS.S3Bucket,
			AccessKey:    cfg.AWS.AccessKey,
			SecretKey:    cfg.AWS.SecretKey,
			Endpoint:     cfg.AWS.Endpoint,
			PublicURL:    cfg.AWS.PublicURL,
			PresignedTTL: cfg.AWS.PresignedTTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create avatar service")
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Setup router
	router := &handlers.Router{
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUserHandler(userService, avatarService),
		Friends:        handlers.NewFriendHandler(friendService),
		Places:         handlers.NewPlaceHandler(placeService, reviewService),
		Dates:          handlers.NewDateHandler(dateService),
		WebSocket:      handlers.NewWebSocketHandler(hub),
		Health:         handlers.NewHealthHandler(checks),
		Tokens:         authService,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("env", cfg.Env).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not closed by Shutdown
	hub.Close()

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let queued push notifications finish
	hub.Wait()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

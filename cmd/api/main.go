package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crickettrack/cricket-api/config"
	"github.com/crickettrack/cricket-api/pkg/auth"
	"github.com/crickettrack/cricket-api/pkg/logger"
	"github.com/crickettrack/cricket-api/pkg/messaging"
	redisbroker "github.com/crickettrack/cricket-api/pkg/messaging/redis"
	"github.com/crickettrack/cricket-api/pkg/metrics"
	"github.com/crickettrack/cricket-api/pkg/security"
	"github.com/crickettrack/cricket-api/pkg/worker"

	"github.com/crickettrack/cricket-api/internal/email"
	alertHandler "github.com/crickettrack/cricket-api/internal/handler/alert"
	authHandler "github.com/crickettrack/cricket-api/internal/handler/auth"
	favoriteHandler "github.com/crickettrack/cricket-api/internal/handler/favorite"
	healthHandler "github.com/crickettrack/cricket-api/internal/handler/health"
	matchHandler "github.com/crickettrack/cricket-api/internal/handler/match"
	"github.com/crickettrack/cricket-api/internal/middleware"
	"github.com/crickettrack/cricket-api/internal/provider/cricket"
	"github.com/crickettrack/cricket-api/internal/repository/postgres"
	"github.com/crickettrack/cricket-api/internal/router"
	alertService "github.com/crickettrack/cricket-api/internal/service/alert"
	authService "github.com/crickettrack/cricket-api/internal/service/auth"
	matchService "github.com/crickettrack/cricket-api/internal/service/match"
	userService "github.com/crickettrack/cricket-api/internal/service/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	alertRepo := postgres.NewAlertRepository(baseRepo)
	matchRepo := postgres.NewMatchRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	favoriteRepo := postgres.NewFavoriteRepository(baseRepo)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	hasher := security.NewBcryptHasher(12)
	providerClient := cricket.NewClient(cfg.Cricket, appLogger)

	alertSvc := alertService.NewService(alertRepo)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	matchSvc := matchService.NewService(matchRepo, providerClient, appLogger)
	userSvc := userService.NewService(userRepo, appLogger)

	// Message broker for the realtime feed; optional, the scheduler runs
	// without it.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &appLogger.ZL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	// HTTP surface
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.Security.AllowedHeaders
	}

	authMW := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		authMW,
		alertHandler.NewHandler(alertSvc),
		authHandler.NewHandler(authSvc, userSvc),
		matchHandler.NewHandler(matchSvc),
		favoriteHandler.NewHandler(favoriteRepo),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RequestsPerSec:   cfg.RateLimit.RequestsPerSecond,
			Burst:            cfg.RateLimit.Burst,
			CORS:             corsConfig,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminder scheduler runs in-process alongside the API.
	dispatcher := email.NewSMTPDispatcher(cfg.Email, appLogger)
	scheduler := worker.NewReminderScheduler(
		alertRepo,
		matchRepo,
		userSvc,
		dispatcher,
		broker,
		worker.ReminderSchedulerConfig{
			TickInterval:   cfg.Scheduler.TickInterval,
			ReminderWindow: cfg.Scheduler.ReminderWindow,
		},
		appLogger,
		metrics.New("cricket_api"),
	)
	go scheduler.Start(ctx)

	// Fixture ingestion keeps the registry warm for the reminder sweep.
	go func() {
		if err := matchSvc.IngestFixtures(ctx); err != nil {
			appLogger.Error(err, "initial fixture ingestion failed")
		}

		ticker := time.NewTicker(cfg.Scheduler.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := matchSvc.IngestFixtures(ctx); err != nil {
					appLogger.Error(err, "fixture ingestion failed")
				}
			}
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

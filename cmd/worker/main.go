package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/crickettrack/cricket-api/config"
	"github.com/crickettrack/cricket-api/internal/email"
	"github.com/crickettrack/cricket-api/internal/repository/postgres"
	userService "github.com/crickettrack/cricket-api/internal/service/user"
	"github.com/crickettrack/cricket-api/pkg/logger"
	"github.com/crickettrack/cricket-api/pkg/messaging"
	redisbroker "github.com/crickettrack/cricket-api/pkg/messaging/redis"
	"github.com/crickettrack/cricket-api/pkg/metrics"
	"github.com/crickettrack/cricket-api/pkg/worker"
)

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

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
			log.Fatal().Err(err).Msg("failed to create Redis broker")
		}
		defer broker.Close()
	}

	baseRepo := postgres.NewBaseRepository(db)
	alertRepo := postgres.NewAlertRepository(baseRepo)
	matchRepo := postgres.NewMatchRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	userSvc := userService.NewService(userRepo, appLogger)

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
		metrics.New("reminder_worker"),
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.ZL.Info().Msg("shutting down...")
		cancel()
	}()

	scheduler.Start(ctx)
}

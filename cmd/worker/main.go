package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/alerts"
	"svitlo-ua/internal/cache"
	"svitlo-ua/internal/config"
	"svitlo-ua/internal/database"
	"svitlo-ua/internal/logging"
	"svitlo-ua/internal/mq"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if cfg.UkraineAlarmAPIKey() == "" {
		log.Fatal().Msg("UKRAINEALARM_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Database ---
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info().Msg("database connected and migrated")

	// --- Redis ---
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer redisCache.Close()
	log.Info().Msg("redis connected")

	// --- RabbitMQ ---
	publisher, err := mq.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq publisher")
	}
	defer publisher.Close()
	log.Info().Msg("rabbitmq connected")

	// --- Alarm poller ---
	client := alarm.NewClient(cfg.UkraineAlarmBaseURL, cfg.UkraineAlarmAPIKey, cfg.UpstreamTimeoutDuration())
	poller := alerts.NewPoller(client, redisCache, db, mq.NewAlarmPublisher(publisher), cfg.AlarmPollInterval, logging.Component("poller"))
	go poller.Start(ctx)
	log.Info().Int("interval_sec", cfg.AlarmPollInterval).Msg("alarm poller started")

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}

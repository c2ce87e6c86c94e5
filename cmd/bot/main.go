package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"svitlo-ua/internal/bot"
	"svitlo-ua/internal/config"
	"svitlo-ua/internal/logging"
	"svitlo-ua/internal/mq"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required. Get one from @BotFather on Telegram.")
	}
	if cfg.AlarmChannelID == 0 {
		log.Fatal().Msg("ALARM_CHANNEL_ID is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- RabbitMQ ---
	mqConsumer, err := mq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq consumer")
	}
	defer mqConsumer.Close()
	log.Info().Msg("rabbitmq connected")

	// --- Telegram Bot ---
	tgBot, err := bot.New(cfg.BotToken, loc, logging.Component("bot"))
	if err != nil {
		log.Fatal().Err(err).Msg("bot")
	}

	go tgBot.Start()
	defer tgBot.Stop()
	log.Info().Msg("telegram bot started")

	// --- Start RabbitMQ listener ---
	notifier := bot.NewAlarmNotifier(tgBot.TeleBot(), cfg.AlarmChannelID, loc, logging.Component("notifier"))
	l := newListener(notifier, mqConsumer)
	go l.start(ctx)
	log.Info().Msg("rabbitmq listener started")

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down bot service...")
	cancel()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/config"
	"svitlo-ua/internal/database"
	"svitlo-ua/internal/handlers"
	"svitlo-ua/internal/locations"
	"svitlo-ua/internal/logging"
	"svitlo-ua/internal/metrics"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	metrics.Register()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := locations.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("locations")
	}

	alarmClient := alarm.NewClient(cfg.UkraineAlarmBaseURL, cfg.UkraineAlarmAPIKey, cfg.UpstreamTimeoutDuration())

	h := &handlers.Handlers{
		Catalog:  catalog,
		Alarm:    alarmClient,
		Location: loc,
		Log:      logging.Component("api"),
	}

	// --- Database (optional, enables alarm history) ---
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		h.History = db
		log.Info().Msg("database connected and migrated")
	} else {
		log.Info().Msg("DATABASE_URL not set, alarm history disabled")
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	h.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Serve static frontend files
	app.Static("/", cfg.WebDir)

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

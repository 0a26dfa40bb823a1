package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stockman/internal/app"
	"stockman/internal/config"
	"stockman/internal/database"
	"stockman/internal/logger"
	"stockman/internal/services"
	"stockman/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// --- Record store ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	// --- Avatar storage ---
	avatars, err := app.NewAvatarStore(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to initialize avatar storage", "error", err)
		os.Exit(1)
	}

	// --- User events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			log.Error("failed to initialize RabbitMQ client", "error", err)
			os.Exit(1)
		}
		defer mqClient.Close()
		events = mqClient

		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent(log)); err != nil {
			log.Warn("failed to start RabbitMQ consumer", "error", err)
		}
	} else {
		log.Info("RABBITMQ_URL not set, user events disabled")
	}

	server := app.New(app.Deps{
		Config:  cfg,
		DB:      db,
		Avatars: avatars,
		Events:  events,
		Log:     log,
	})

	// --- Start HTTP server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.AppPort)
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case <-quit:
		log.Info("shutting down server")
	case err := <-listenErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	if err := server.Shutdown(); err != nil {
		log.Warn("error during Fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"story_client/internal/cli"
	"story_client/internal/cli/colours"
	"story_client/internal/config"
	"story_client/internal/publisher"
	"story_client/internal/service"
	"story_client/internal/source/hackorsnooze"
	"story_client/internal/storage/file"
	"story_client/internal/storage/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("STORYCTL_CONFIG")
	if configPath == "" {
		configPath = "storyctl.yaml"
	}

	app := cli.NewConfiguredApp(configPath, wire)
	err := app.Command().ExecuteContext(ctx)
	app.Close()

	if err != nil {
		colours.Error.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func wire(ctx context.Context, configPath string) (*cli.Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)

	api := hackorsnooze.New(hackorsnooze.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, logger)

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store service.CredentialStore
	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		db, err := postgres.Connect(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { db.Close() })

		if err := postgres.EnsureSchema(ctx, db); err != nil {
			closeAll()
			return nil, err
		}
		store = postgres.NewCredentialStore(db)
	default:
		store = file.NewCredentialStore(cfg.Session.Path)
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { rabbitMQ.Close() })
		pub = rabbitMQ
	}

	return &cli.Services{
		Stories: service.NewStoryService(api, pub, logger),
		Users:   service.NewUserService(api, store, pub, logger),
		Logger:  logger,
		Close:   closeAll,
	}, nil
}

// Logs go to stderr so command output stays clean on stdout.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

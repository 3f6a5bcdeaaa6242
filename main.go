// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"user-activation/cmd"
	"user-activation/internal/data/repository"
	"user-activation/internal/wire"
	"user-activation/pkg/database"
	"user-activation/pkg/mailer"
	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prepare database
	if err := database.EnsureDatabase(ctx, config.Database, logger); err != nil {
		logger.Fatal("Failed to prepare database", zap.Error(err))
	}

	db, err := database.InitDB(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool(), logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	logger.Info("Database connected successfully",
		zap.Int32("pool_min", config.Database.MinConns),
		zap.Int32("pool_max", config.Database.MaxConns),
	)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	sender := mailer.New(config.Email, config.Activation.TTL(), logger)

	// Wire all dependencies
	app := wire.Wiring(repos, db, sender, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}

	logger.Info("Server stopped, closing database pool")
}

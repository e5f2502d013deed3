// main.go
package main

import (
	"context"
	"log"

	"rental-marketplace/cmd"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/gateway"
	"rental-marketplace/internal/queue"
	"rental-marketplace/internal/wire"
	"rental-marketplace/pkg/database"
	"rental-marketplace/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
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

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External collaborators: event broker and payout rail
	notifier := queue.NewPublisher(config.Queue.URL, logger)
	dispatcher := gateway.NewHTTPPayoutDispatcher(config.Payout.DispatchURL, config.Payout.DispatchTimeout, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, notifier, dispatcher, logger)

	// Background maintenance: hold expiry and booking completion
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.StartSweepers(ctx, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}

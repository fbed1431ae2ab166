package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"warnetbook/internal/app"
	"warnetbook/internal/config"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
)

// @title Warnetbook API
// @version 1.0
// @description Warnet PC booking with the DompetBowar money wallet and per-venue time wallets.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting warnetbook")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, rdb, err := app.Connect(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect: %v", err)
	}
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	a := app.New(cfg, database, rdb)
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Error("Shutdown cleanup failed")
		}
	}()

	if err := a.Run(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Info("Server stopped")
}

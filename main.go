package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"replydesk/internal/config"
	"replydesk/internal/crypto"
	"replydesk/internal/cycle_runner"
	"replydesk/internal/repository"
	"replydesk/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	log := logrus.New()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize the sealer for token and API key storage
	key, err := cfg.SealingKey()
	if err != nil {
		logger.Fatal("Failed to load sealing key", zap.Error(err))
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		logger.Fatal("Failed to initialize sealer", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize the server (wires clients, repositories and services)
	srv := server.NewServer(db, cfg, sealer, log, logger)

	// Run the scheduled cycle in a goroutine (if enabled)
	if cfg.Scheduler.Enabled {
		settingsRepo := repository.NewSettingsRepository(db, logger)
		runner := cycle_runner.NewRunner(cfg.Scheduler.Spec, settingsRepo, srv.CycleService(), logger)
		go func() {
			if err := runner.Start(ctx); err != nil {
				logger.Error("Cycle runner failed", zap.Error(err))
			}
		}()
	}

	srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}

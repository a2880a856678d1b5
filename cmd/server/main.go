package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/citeline/chronology-core/internal/api"
	"github.com/citeline/chronology-core/internal/config"
	"github.com/citeline/chronology-core/internal/database"
	"github.com/citeline/chronology-core/internal/persistence"
	"github.com/citeline/chronology-core/internal/pipeline"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	configManager, err := config.NewManager()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if err := configManager.Validate(); err != nil {
		log.WithError(err).Fatal("configuration validation failed")
	}

	if level, err := logrus.ParseLevel(configManager.GetConfig().Logging.Level); err == nil {
		log.SetLevel(level)
	}

	cfg := configManager.GetConfig()
	log.WithFields(logrus.Fields{"host": cfg.Server.Host, "port": cfg.Server.Port}).Info("starting chronology engine")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	repo := persistence.NewRepository(db.Pool, log)
	orchestrator := pipeline.NewOrchestrator(log)

	server := api.NewServer(configManager, repo, orchestrator, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.WithError(err).Fatal("server failed")
	}

	log.Info("server stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"emittr/connect4/internal/analytics"
	"emittr/connect4/internal/config"
	"emittr/connect4/internal/server"
	"emittr/connect4/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store = storage.NewMemoryStore()
	if cfg.PostgresURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.PostgresURL, logger)
		if err != nil {
			logger.Warn("postgres disabled, keeping decisions in memory", "err", err)
		} else {
			if err := pg.EnsureTables(ctx); err != nil {
				logger.Error("postgres ensure tables failed", "err", err)
			}
			store = pg
		}
	}
	defer store.Close()

	producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	srv := server.New(server.Config{
		IdleTimeout:   cfg.IdleTimeout,
		SweepInterval: cfg.SweepInterval,
		Store:         store,
		Analytics:     producer,
		Logger:        logger,
	})

	logger.Info("listening", "addr", cfg.Addr, "postgres", cfg.PostgresURL != "", "kafka", producer != nil)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"watchlist/proj/internal/api/tasks"
	"watchlist/proj/internal/config"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/metrics"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")
	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug, cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	storage, closeStorage, err := openStorage(ctx, log, cfg)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.DB.Driver, "errMsg", err.Error())
		os.Exit(1)
	}
	defer closeStorage()
	log.Info("database connection established", "driver", cfg.DB.Driver)

	rateLimiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		log.Error("failed to set up rate limiter", "backend", cfg.Limiter.Backend, "errMsg", err.Error())
		os.Exit(1)
	}
	defer closeLimiter()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()

	app, err := NewApplication(cfg, log, storage, bgTasks, rateLimiter, m)
	if err != nil {
		log.Error("failed to set up application", "errMsg", err.Error())
		os.Exit(1)
	}
	if err := app.serve(); err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}

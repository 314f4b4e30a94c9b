package main

import (
	"log/slog"

	"watchlist/proj/internal/api/tasks"
	"watchlist/proj/internal/config"
	"watchlist/proj/internal/lib/decoder"
	"watchlist/proj/internal/lib/limiter"
	"watchlist/proj/internal/metrics"
	"watchlist/proj/internal/services"
	"watchlist/proj/internal/services/movies"
)

type Application struct {
	cfg      *config.Config
	log      *slog.Logger
	Http     *Http
	Services *services.Services
	storage  pinger
	tasks    *tasks.Pool
	limiter  limiter.Limiter
	metrics  *metrics.Metrics
	decoder  *decoder.URLDecoder
}

// NewApplication wires the services. m may be nil when metrics are disabled.
func NewApplication(
	cfg *config.Config,
	log *slog.Logger,
	storage appStorage,
	bgTasks *tasks.Pool,
	rateLimiter limiter.Limiter,
	m *metrics.Metrics,
) (*Application, error) {
	var observer movies.OperationObserver
	if m != nil {
		observer = m
	}
	svc, err := services.New(log, cfg, storage, bgTasks, observer)
	if err != nil {
		return nil, err
	}
	return &Application{
		cfg: cfg,
		log: log,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
		Services: svc,
		storage:  storage,
		tasks:    bgTasks,
		limiter:  rateLimiter,
		metrics:  m,
		decoder:  decoder.New(),
	}, nil
}

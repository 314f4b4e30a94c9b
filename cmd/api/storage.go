package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"watchlist/proj/internal/config"
	"watchlist/proj/internal/lib/limiter"
	"watchlist/proj/internal/services"
	"watchlist/proj/internal/storage/postgres"
	"watchlist/proj/internal/storage/postgres/models"
	"watchlist/proj/internal/storage/sqlite"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type appStorage interface {
	services.Storage
	pinger
}

type postgresStorage struct {
	*models.Models
	db *postgres.PostgresDB
}

func (s postgresStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func openStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (appStorage, func() error, error) {
	switch cfg.DB.Driver {
	case config.DBDriverSQLite:
		if dir := filepath.Dir(cfg.DB.Dsn); !strings.HasPrefix(cfg.DB.Dsn, "file:") && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err := sqlite.New(ctx, log, cfg.DB.Dsn, cfg.DB.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		db, err := postgres.New(ctx, log, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime, cfg.DB.ConnectRetries)
		if err != nil {
			return nil, nil, err
		}
		return postgresStorage{Models: models.New(db), db: db}, db.Close, nil
	}
}

func newLimiter(ctx context.Context, cfg *config.Config) (limiter.Limiter, func(), error) {
	if cfg.Limiter.Backend == config.LimiterBackendRedis {
		rdb, err := limiter.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return limiter.NewRedis(rdb, "watchlist:ratelimit", cfg.Limiter.Rps, cfg.Limiter.Burst), func() { rdb.Close() }, nil
	}
	mem := limiter.NewMemory(cfg.Limiter.Rps, cfg.Limiter.Burst)
	return mem, mem.Close, nil
}

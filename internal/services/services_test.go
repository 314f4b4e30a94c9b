package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchlist/proj/internal/config"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/storage/sqlite"
)

type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

func TestNew(t *testing.T) {
	store, err := sqlite.New(context.Background(), logger.Discard(), filepath.Join(t.TempDir(), "svc.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	t.Run("local provider", func(t *testing.T) {
		cfg := &config.Config{Auth: config.Auth{Provider: config.AuthProviderLocal, SessionTTL: time.Hour, SessionUpdateAge: time.Minute, BcryptCost: 4}}
		svc, err := New(logger.Discard(), cfg, store, syncExecutor{}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc.Auth)
		assert.NotNil(t, svc.Movies)
	})

	t.Run("sso provider", func(t *testing.T) {
		cfg := &config.Config{
			AppSecret: "secret",
			Auth:      config.Auth{Provider: config.AuthProviderSSO},
			Clients:   config.ClientsConfig{SSO: config.Client{Addr: "localhost:44044", RetryTimeout: time.Second, RetriesCount: 1}},
			SMTP:      config.SMTP{Enabled: true, Host: "localhost", Port: 1025},
		}
		svc, err := New(logger.Discard(), cfg, store, syncExecutor{}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc.Auth)
	})
}

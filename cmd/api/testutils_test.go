package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"watchlist/proj/internal/api/tasks"
	"watchlist/proj/internal/config"
	"watchlist/proj/internal/lib/limiter"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/metrics"
	"watchlist/proj/internal/storage/sqlite"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.Server{CorsAllowedOrigins: []string{"http://localhost:5173"}},
		Limiter: config.Limiter{
			Enabled:               true,
			Backend:               config.LimiterBackendMemory,
			Rps:                   1000,
			Burst:                 1000,
			AuthRequestsPerMinute: 1000,
		},
		DB: config.DB{Driver: config.DBDriverSQLite},
		Auth: config.Auth{
			Provider:         config.AuthProviderLocal,
			CookieName:       "saas-auth.session_token",
			SessionTTL:       7 * 24 * time.Hour,
			SessionUpdateAge: 24 * time.Hour,
			BcryptCost:       4,
		},
		Tasks:   config.Tasks{Workers: 1, QueueSize: 10},
		Metrics: config.Metrics{Enabled: true},
	}
}

// NewTestApplication builds the application over a temporary sqlite database.
// mutate may adjust the config before wiring.
func NewTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := newTestConfig()
	if mutate != nil {
		mutate(cfg)
	}
	log := logger.Discard()
	store, err := sqlite.New(context.Background(), log, filepath.Join(t.TempDir(), "api.db"), 4)
	require.NoError(t, err)
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()
	mem := limiter.NewMemory(cfg.Limiter.Rps, cfg.Limiter.Burst)
	t.Cleanup(func() {
		bgTasks.Shutdown(context.Background())
		mem.Close()
		store.Close()
	})
	app, err := NewApplication(cfg, log, store, bgTasks, mem, metrics.New())
	require.NoError(t, err)
	return app
}

type testResponse struct {
	Code    int
	Header  http.Header
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *testResponse) decodeData(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

func doRequest(t *testing.T, h http.Handler, method, path, body, token string) *testResponse {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := &testResponse{Code: rec.Code, Header: rec.Header()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res), rec.Body.String())
	}
	return res
}

// signupAndLogin registers a user and returns its session token.
func signupAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	body := `{"name":"Test User","email":"` + email + `","password":"password123"}`
	res := doRequest(t, h, http.MethodPost, "/api/v1/auth/signup", body, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	res = doRequest(t, h, http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	var data struct {
		Token string `json:"token"`
	}
	res.decodeData(t, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

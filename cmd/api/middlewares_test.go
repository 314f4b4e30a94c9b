package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/services/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequiredAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(t, nil)
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(auth.WithPrincipal(request.Context(), &auth.Principal{
			User:    &models.User{ID: "u-1", Name: "test", Email: "test@gmail.com"},
			Session: &models.Session{ID: "ses-1"},
		}))
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(t, nil)
	for _, value := range []any{"boom", errors.New("boom")} {
		recorder := httptest.NewRecorder()
		panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(value) })
		assert.NotPanics(t, func() {
			app.Recoverer(panicking).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	}
}

type denyLimiter struct{ err error }

func (l denyLimiter) Allow(context.Context, string) (bool, error) { return false, l.err }

func TestRateLimiter(t *testing.T) {
	app := NewTestApplication(t, nil)

	app.limiter = denyLimiter{}
	recorder := httptest.NewRecorder()
	app.RateLimiter(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	app.limiter = denyLimiter{err: errors.New("redis: connection refused")}
	recorder = httptest.NewRecorder()
	app.RateLimiter(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code, "limiter failures must fail open")

	app.limiter = denyLimiter{}
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "203.0.113.7"
	app.RateLimiter(okHandler).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code, "a remote address without a port is still a key")

	app.cfg.Limiter.Enabled = false
	app.limiter = denyLimiter{}
	recorder = httptest.NewRecorder()
	app.RateLimiter(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAuthenticate(t *testing.T) {
	app := NewTestApplication(t, nil)
	token := signupAndLogin(t, app.routes(), "alice@example.com")

	var got *auth.Principal
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.PrincipalFrom(r.Context())
	})

	t.Run("bearer token", func(t *testing.T) {
		got = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		app.Authenticate(capture).ServeHTTP(httptest.NewRecorder(), request)
		if assert.NotNil(t, got) {
			assert.Equal(t, "alice@example.com", got.User.Email)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		got = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: app.cfg.Auth.CookieName, Value: token})
		app.Authenticate(capture).ServeHTTP(httptest.NewRecorder(), request)
		assert.NotNil(t, got)
	})

	t.Run("unknown token stays anonymous", func(t *testing.T) {
		got = &auth.Principal{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged")
		recorder := httptest.NewRecorder()
		app.Authenticate(capture).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, got)
	})
}

func TestRoutesBehindProxy(t *testing.T) {
	app := NewTestApplication(t, nil)
	h := app.routes()
	token := signupAndLogin(t, h, "alice@example.com")

	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil)
		request.Header.Set(header, "203.0.113.7")
		recorder := httptest.NewRecorder()
		h.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code, header)

		request = httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
		request.Header.Set(header, "203.0.113.7")
		request.Header.Set("Authorization", "Bearer "+token)
		recorder = httptest.NewRecorder()
		h.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code, header)
	}
}

type unavailableProvider struct{}

func (unavailableProvider) Resolve(context.Context, string) (*auth.Principal, error) {
	return nil, errors.New("dial tcp 127.0.0.1:44044: connect: connection refused")
}

func (unavailableProvider) Signup(context.Context, string, string, string) (*models.User, error) {
	return nil, errors.New("unavailable")
}

func (unavailableProvider) Login(context.Context, string, string, models.ClientInfo) (*auth.LoginResult, error) {
	return nil, errors.New("unavailable")
}

func (unavailableProvider) Logout(context.Context, string) error { return nil }

func TestAuthenticate_ProviderFailureLeavesRequestAnonymous(t *testing.T) {
	app := NewTestApplication(t, nil)
	app.Services.Auth = auth.New(logger.Discard(), unavailableProvider{}, nil, app.tasks)
	h := app.routes()

	res := doRequest(t, h, http.MethodGet, "/api/v1/auth/session", "", "some-token")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"session":null,"user":null}`, string(res.Data))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil)
	request.Header.Set("Authorization", "Bearer some-token")
	h.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)

	res = doRequest(t, h, http.MethodGet, "/api/v1/movies", "", "some-token")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

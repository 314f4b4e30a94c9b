package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"watchlist/proj/internal/services/auth"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				app.Http.ServerError(w, r, fmt.Errorf("panic: %w", err), "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs every request and feeds the HTTP metrics.
func (app *Application) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if app.metrics != nil {
			app.metrics.HTTPActiveRequests.Inc()
			defer app.metrics.HTTPActiveRequests.Dec()
		}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		app.Http.setupLogPerReq(r).Info(
			"request completed",
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		)
		if app.metrics != nil {
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			app.metrics.RecordHTTPRequest(r.Method, route, status, duration)
		}
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Limiter.Enabled {
			// RealIP leaves a bare address without a port
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			allowed, err := app.limiter.Allow(r.Context(), ip)
			if err != nil {
				// an unavailable limiter backend must not take the API down
				log.Error("rate limiter failed", "ip", ip, "errMsg", err.Error())
				allowed = true
			}
			if !allowed {
				log.Warn("rate limit exceeded", "ip", ip)
				app.Http.TooManyRequests(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate resolves the session token, if any, and stores the principal in
// the request context. Unknown or expired tokens and provider failures leave the
// request anonymous.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := app.sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := app.Services.Auth.Authenticate(r.Context(), token)
		if err != nil {
			app.Http.setupLogPerReq(r).Error("Failed to resolve session, continuing anonymously", "errMsg", err.Error())
			next.ServeHTTP(w, r)
			return
		}
		if principal == nil {
			app.log.Debug("Invalid or expired token")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.CurrentIdentity(r.Context()); err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				app.Http.Unauthorized(w, r, "You must be authenticated to access this resource")
				return
			}
			app.Http.ServerError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

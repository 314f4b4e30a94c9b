package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(app.RequestLogger)
	router.Use(app.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	if app.metrics != nil {
		router.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	}
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", app.getSession)
			r.With(app.requireAuthenticatedUser).Get("/me", app.me)
			r.Post("/logout", app.logout)
			r.Group(func(r chi.Router) {
				r.Use(httprate.Limit(
					app.cfg.Limiter.AuthRequestsPerMinute,
					time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
					httprate.WithLimitHandler(app.Http.TooManyRequests),
				))
				r.Post("/signup", app.signup)
				r.Post("/login", app.login)
			})
		})
		r.Route("/movies", func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Get("/", app.listMovies)
			r.Post("/", app.createMovie)
			r.Get("/stats", app.movieStats)
			r.Get("/{id}", app.getMovie)
			r.Patch("/{id}", app.updateMovie)
			r.Delete("/{id}", app.deleteMovie)
			r.Post("/{id}/toggle-watched", app.toggleWatched)
		})
	})
	return router
}

package main

import (
	"net/http"

	"watchlist/proj/internal/services/auth"
	"watchlist/proj/internal/services/movies"
)

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	var filter movies.FilterInput
	if err := app.decoder.Decode(&filter, r.URL.Query()); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	list, err := app.Services.Movies.List(r.Context(), identity, filter)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movies": list}, "")
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	movie, err := app.Services.Movies.Get(r.Context(), identity, movies.MovieIDInput{ID: app.extractIDParam(r)})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	var input movies.CreateMovieInput
	if !app.readBody(w, r, &input) {
		return
	}
	movie, err := app.Services.Movies.Create(r.Context(), identity, input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/movies/"+movie.ID)
	app.Http.Created(w, r, envelop{"movie": movie}, "Movie added to your watchlist")
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	var body struct {
		Title   *string `json:"title"`
		Year    *int32  `json:"year"`
		Genre   *string `json:"genre"`
		Rating  *int32  `json:"rating"`
		Watched *bool   `json:"watched"`
		Notes   *string `json:"notes"`
	}
	if !app.readBody(w, r, &body) {
		return
	}
	movie, err := app.Services.Movies.Update(r.Context(), identity, movies.UpdateMovieInput{
		ID:      app.extractIDParam(r),
		Title:   body.Title,
		Year:    body.Year,
		Genre:   body.Genre,
		Rating:  body.Rating,
		Watched: body.Watched,
		Notes:   body.Notes,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	movie, err := app.Services.Movies.Delete(r.Context(), identity, movies.MovieIDInput{ID: app.extractIDParam(r)})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "Movie removed from your watchlist")
}

func (app *Application) toggleWatched(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	movie, err := app.Services.Movies.ToggleWatched(r.Context(), identity, movies.MovieIDInput{ID: app.extractIDParam(r)})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) movieStats(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.CurrentIdentity(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	stats, err := app.Services.Movies.Stats(r.Context(), identity)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"stats": stats}, "")
}

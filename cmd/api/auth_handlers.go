package main

import (
	"net/http"

	"watchlist/proj/internal/services/auth"
)

// getSession never fails: anonymous callers get a null session.
func (app *Application) getSession(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		app.Http.Ok(w, r, envelop{"session": nil, "user": nil}, "")
		return
	}
	app.Http.Ok(w, r, envelop{"session": principal.Session, "user": principal.User}, "")
}

func (app *Application) me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		app.handleServiceError(w, r, auth.ErrUnauthenticated)
		return
	}
	app.Http.Ok(w, r, envelop{"user": principal.User}, "")
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input auth.SignupInput
	if !app.readBody(w, r, &input) {
		return
	}
	user, err := app.Services.Auth.Signup(r.Context(), input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "Account created")
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if !app.readBody(w, r, &input) {
		return
	}
	res, err := app.Services.Auth.Login(r.Context(), input, clientInfo(r))
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.setSessionCookie(w, res.Session, res.Token)
	app.Http.Ok(w, r, envelop{"user": res.User, "session": res.Session, "token": res.Token}, "")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.Services.Auth.Logout(r.Context(), app.sessionToken(r)); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.clearSessionCookie(w)
	app.Http.Ok(w, r, nil, "Logged out")
}

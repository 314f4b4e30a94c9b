package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/validator"
	"watchlist/proj/internal/services/auth"
	"watchlist/proj/internal/services/movies"
)

// extractIDParam returns the raw {id} path segment. Identifiers are opaque strings.
func (app *Application) extractIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// handleServiceError writes the response for an error returned by a service call.
func (app *Application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if vErr, ok := validator.IsValidationError(err); ok {
		app.Http.UnprocessableEntity(w, r, vErr.Errors)
		return
	}
	switch {
	case errors.Is(err, movies.ErrMovieNotFound):
		app.Http.NotFound(w, r, "Movie not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		app.Http.Unauthorized(w, r, "You must be authenticated to access this resource")
	case errors.Is(err, auth.ErrInvalidCredentials):
		app.Http.Unauthorized(w, r, "Invalid email or password")
	case errors.Is(err, auth.ErrUserAlreadyExists):
		app.Http.Conflict(w, r, "User with this email already exists")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

// readBody decodes a JSON body and answers 400 or 422 itself when it fails.
func (app *Application) readBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.readJSON(w, r, dst); err != nil {
		if vErr, ok := validator.IsValidationError(err); ok {
			app.Http.UnprocessableEntity(w, r, vErr.Errors)
			return false
		}
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	return true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return validator.NewFieldError(unmarshalTypeError.Field, fmt.Sprintf("Value must be of type %s", jsonTypeName(unmarshalTypeError)))
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Errorf("body contains unknown key %s", fieldName)

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

func jsonTypeName(err *json.UnmarshalTypeError) string {
	switch err.Type.String() {
	case "int32", "*int32", "int", "int64":
		return "integer"
	case "bool", "*bool":
		return "boolean"
	case "string", "*string":
		return "string"
	}
	return err.Type.String()
}

// sessionToken reads the session token from the session cookie or a bearer header.
func (app *Application) sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(app.cfg.Auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func clientInfo(r *http.Request) models.ClientInfo {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return models.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}

func (app *Application) setSessionCookie(w http.ResponseWriter, session *models.Session, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   app.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *Application) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   app.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

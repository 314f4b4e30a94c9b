package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	status := "available"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := app.storage.Ping(ctx); err != nil {
		app.Http.setupLogPerReq(r).Error("storage is unreachable", "errMsg", err.Error())
		status = "unavailable"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, struct {
		Status  string `json:"status"`
		Debug   bool   `json:"debug"`
		Version string `json:"version"`
	}{
		Status:  status,
		Debug:   app.cfg.Debug,
		Version: version,
	})
}

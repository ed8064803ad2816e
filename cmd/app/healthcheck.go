package main

import (
	"net/http"
	"time"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	app.writeSuccess(w, r, http.StatusOK, "available", envelope{
		"environment": app.config.Environment,
		"version":     app.config.Version,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

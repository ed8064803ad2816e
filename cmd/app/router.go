package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/api/health", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/api/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/me", app.requireAuthUser(app.getMeHandler))
	router.HandlerFunc(http.MethodPut, "/api/auth/profile", app.requireAuthUser(app.updateProfileHandler))

	// blog service, GET /api/blogs/mine is dispatched by getBlogHandler
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.listPublishedBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/api/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id/like", app.requireAuthUser(app.toggleLikeHandler))

	if app.media != nil {
		router.Handler(http.MethodGet, "/media/*filepath", http.StripPrefix("/media", app.media.FileServer()))
	}

	if app.registry != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	}

	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router)))))
}

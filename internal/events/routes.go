package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anas-fareedi/disaster-management/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Get("/", ListEventsHandler)
	r.Get("/{eventID}", GetEventHandler)
	r.Get("/{eventID}/requests", EventRequestsHandler)

	// Declaring a disaster is an admin call
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware(sessionFetcher))
		r.Post("/", CreateEventHandler)
	})

	return r
}

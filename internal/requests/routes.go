package requests

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anas-fareedi/disaster-management/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}
	limiter := middleware.NewRateLimiter(envFloat("RATE_LIMIT_RPS", 1), envInt("RATE_LIMIT_BURST", 5))

	r.Get("/requests", ListRequestsHandler)
	r.Get("/requests/nearby/search", NearbyRequestsHandler)
	r.Get("/requests/urgent/list", UrgentRequestsHandler)
	r.Get("/requests/recent/list", RecentRequestsHandler)
	r.Get("/requests/map/view", MapViewHandler)
	r.Get("/requests/{requestID}", GetRequestHandler)
	r.Get("/statistics", StatisticsHandler)

	// Anonymous submissions, rate limited per client
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/requests", CreateRequestHandler)
		r.Post("/requests/classify", ClassifyHandler)
	})

	// Volunteer actions
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Put("/requests/{requestID}", UpdateRequestHandler)
		r.Post("/requests/{requestID}/assign", AssignRequestHandler)
		r.Post("/requests/{requestID}/complete", CompleteRequestHandler)
	})

	// Admin actions
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware(sessionFetcher))
		r.Delete("/requests/{requestID}", DeleteRequestHandler)
		r.Post("/requests/{requestID}/verify", VerifyRequestHandler)
	})

	return r
}

func envFloat(name string, def float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

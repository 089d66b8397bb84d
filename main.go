package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/anas-fareedi/disaster-management/internal/cronjobs"
	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/events"
	"github.com/anas-fareedi/disaster-management/internal/middleware"
	"github.com/anas-fareedi/disaster-management/internal/requests"
	"github.com/anas-fareedi/disaster-management/internal/volunteers"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"message": "Disaster Relief API is running",
		"version": "1.0.0",
	})
}

func InfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"title":       "Crowdsourced Disaster Relief API",
		"description": "Platform for disaster relief coordination",
		"features": []string{
			"Submit disaster relief requests",
			"Find requests near a location",
			"Volunteer assignment workflow",
			"Request status tracking",
			"Spam and duplicate filtering",
		},
		"endpoints": map[string]any{
			"auth": map[string]string{
				"/auth/register": "Volunteer signup",
				"/auth/login":    "Session login",
				"/auth/me":       "Current volunteer",
			},
			"api": map[string]string{
				"/api/requests":               "Manage relief requests",
				"/api/requests/nearby/search": "Proximity search",
				"/api/requests/urgent/list":   "Triage feed",
				"/api/requests/map/view":      "Clustered map view",
				"/api/events":                 "Disaster events",
				"/api/statistics":             "Platform statistics",
			},
			"system": map[string]string{
				"/health": "Health check",
				"/info":   "API information",
			},
		},
	})
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	volunteers.Init()
	requests.Init()
	events.Init()

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Get("/health", HealthHandler)
	r.Get("/info", InfoHandler)

	r.Mount("/auth", volunteers.SetupRoutes())
	r.Mount("/api", requests.SetupRoutes())
	r.Mount("/api/events", events.SetupRoutes())

	if c := cronjobs.InitCronJobs(); c != nil {
		defer c.Stop()
	}

	fmt.Println("Server listening on port :" + port + "...")

	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, r))
}

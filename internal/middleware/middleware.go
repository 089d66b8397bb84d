package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/utils"
)

type SessionFetcher interface {
	FindSessionByID(id string) (utils.SessionData, error)
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session_id")
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSessionByID(cookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextVolunteerIDKey, session.VolunteerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var allowed = map[string]struct{}{
	"http://localhost:3000":                     {},
	"http://localhost:5173":                     {},
	"https://disaster-relief-portal.vercel.app": {},
	"https://disaster-relief-map.vercel.app":    {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		w.Header().Set("Access-Control-Expose-Headers", "Retry-After, Cache-Control")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type Volunteer struct {
	VolunteerID string `gorm:"primaryKey"`
	Role        string
}

func (Volunteer) TableName() string { return "app_auth.volunteers" }

func AdminMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			volunteerID, ok := utils.GetVolunteerIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: missing volunteer ID in context", http.StatusUnauthorized)
				return
			}

			var volunteer Volunteer
			if err := db.DB.First(&volunteer, "volunteer_id = ?", volunteerID).Error; err != nil {
				http.Error(w, "Unauthorized: volunteer not found", http.StatusUnauthorized)
				return
			}

			if volunteer.Role != "admin" {
				http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextVolunteerIDKey, volunteerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

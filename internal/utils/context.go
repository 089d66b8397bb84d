package utils

import (
	"context"
	"time"
)

type contextKey string

const ContextVolunteerIDKey contextKey = "volunteerID"

// SessionData is the minimal session projection middleware needs to
// authenticate a request without importing the volunteers package.
type SessionData struct {
	VolunteerID string
	ExpiresAt   time.Time
}

func GetVolunteerIDFromContext(ctx context.Context) (string, bool) {
	volunteerID := ctx.Value(ContextVolunteerIDKey)
	volunteerIDStr, ok := volunteerID.(string)
	return volunteerIDStr, ok
}

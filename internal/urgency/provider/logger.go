package provider

import (
	"log"
	"time"
)

// LogRequest logs a classification request being made.
func LogRequest(provider, url string) {
	log.Printf("[%s] POST %s", provider, url)
}

// LogClassification logs a completed classification.
func LogClassification(provider, level string, confidence float64, duration time.Duration) {
	log.Printf("[%s] classified as %s confidence=%.2f duration=%dms",
		provider, level, confidence, duration.Milliseconds())
}

// LogError logs an error from a classification operation.
func LogError(provider, operation string, err error) {
	log.Printf("[%s] %s error: %v", provider, operation, err)
}

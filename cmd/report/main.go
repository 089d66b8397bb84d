package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Prints a relief operations snapshot straight from the database. Meant for
// the morning coordination call, not for dashboards.
func main() {
	godotenv.Load(".env.local")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	type StatusRow struct {
		Status string
		Count  int64
	}
	var statuses []StatusRow
	if err := db.Raw(`
		SELECT status, COUNT(*) AS count
		FROM relief.requests
		WHERE is_active = true
		GROUP BY status
		ORDER BY count DESC
	`).Scan(&statuses).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}

	var total int64
	for _, s := range statuses {
		total += s.Count
	}
	fmt.Printf("Active relief requests: %d\n\n", total)

	fmt.Printf("=== By status ===\n")
	for _, s := range statuses {
		fmt.Printf("  %-12s %d\n", s.Status, s.Count)
	}
	fmt.Println()

	type TypeRow struct {
		RequestType string
		Count       int64
	}
	var types []TypeRow
	if err := db.Raw(`
		SELECT request_type, COUNT(*) AS count
		FROM relief.requests
		WHERE is_active = true
		GROUP BY request_type
		ORDER BY count DESC
	`).Scan(&types).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}

	fmt.Printf("=== By type ===\n")
	for _, t := range types {
		fmt.Printf("  %-15s %d\n", t.RequestType, t.Count)
	}
	fmt.Println()

	type EventRow struct {
		EventID      string
		Name         string
		OpenRequests int64
	}
	var eventRows []EventRow
	if err := db.Raw(`
		SELECT e.event_id, e.name, COUNT(r.request_id) AS open_requests
		FROM relief.disaster_events e
		LEFT JOIN relief.requests r
			ON r.disaster_event_id = e.event_id
			AND r.is_active = true
			AND r.status IN ('pending', 'in_progress')
		WHERE e.is_active = true
		GROUP BY e.event_id, e.name
		ORDER BY open_requests DESC
	`).Scan(&eventRows).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}

	fmt.Printf("=== Open requests by event ===\n")
	for _, e := range eventRows {
		fmt.Printf("  %-22s %-35s %d\n", e.EventID, e.Name, e.OpenRequests)
	}
	fmt.Println()

	type UrgentRow struct {
		RequestID      string
		Title          string
		UrgencyLevel   string
		PeopleAffected int
		CreatedAt      time.Time
	}
	var urgent []UrgentRow
	if err := db.Raw(`
		SELECT request_id, title, urgency_level, people_affected, created_at
		FROM relief.requests
		WHERE is_active = true
		  AND status = 'pending'
		  AND urgency_level = ANY(?)
		ORDER BY
			CASE urgency_level WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
			created_at ASC
		LIMIT 10
	`, pq.Array([]string{"high", "critical"})).Scan(&urgent).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}

	fmt.Printf("=== Oldest unassigned urgent requests (%d) ===\n", len(urgent))
	for _, u := range urgent {
		age := time.Since(u.CreatedAt).Round(time.Hour)
		fmt.Printf("  [%s] %s | %d people | waiting %s | %s\n",
			u.UrgencyLevel, u.Title, u.PeopleAffected, age, u.RequestID)
	}
}

package seeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/requests"
)

func SeedRequests() error {
	var rows []requests.DisasterRequest

	file, err := os.ReadFile("internal/requests/data/sample_requests.json")
	if err != nil {
		return fmt.Errorf("could not read sample_requests.json: %w", err)
	}

	if err := json.Unmarshal(file, &rows); err != nil {
		return fmt.Errorf("failed to parse sample_requests.json: %w", err)
	}

	// Sample rows get the same scoring a live submission would.
	classifier := filters.NewSpamClassifier(filters.DefaultRules())

	for _, row := range rows {
		var existing requests.DisasterRequest
		err := db.DB.First(&existing, "request_id = ?", row.RequestID).Error

		if err == nil {
			log.Printf("⚠️ Request exists, skipping: %s", row.RequestID)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("DB error on request %s: %w", row.RequestID, err)
		}

		score, flags := classifier.Evaluate(row.Submission())
		row.QualityScore = score
		row.SuspicionFlags = pq.StringArray(flags)

		if err := db.DB.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create request %s: %w", row.RequestID, err)
		}
	}

	log.Printf("✅ Seeded %d sample requests", len(rows))
	return nil
}

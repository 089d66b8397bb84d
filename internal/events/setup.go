package events

import (
	"log"

	"github.com/anas-fareedi/disaster-management/internal/db"
)

func Init() {
	// Ensure the relief schema exists
	if err := db.EnsureSchema(db.DB, "relief"); err != nil {
		log.Fatal("Failed to ensure schema relief: ", err)
	}

	if err := db.DB.AutoMigrate(&DisasterEvent{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}

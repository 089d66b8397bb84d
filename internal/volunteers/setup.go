package volunteers

import (
	"log"

	"github.com/anas-fareedi/disaster-management/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_auth"); err != nil {
		log.Fatal("Failed to ensure schema app_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&Volunteer{}, &Session{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}

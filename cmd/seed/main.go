package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/events"
	"github.com/anas-fareedi/disaster-management/internal/requests"
	"github.com/anas-fareedi/disaster-management/internal/seeds"
)

func main() {
	godotenv.Load(".env.local")
	db.Connect()

	// Migrations run here so the seeder works against a fresh database.
	requests.Init()
	events.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}

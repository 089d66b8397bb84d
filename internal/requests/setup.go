package requests

import (
	"log"
	"os"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/urgency/provider"

	// Import providers to register them via init()
	_ "github.com/anas-fareedi/disaster-management/internal/urgency/keyword"
	_ "github.com/anas-fareedi/disaster-management/internal/urgency/remote"
)

// Suggester is the active urgency classifier.
// It is initialized in Init() based on environment configuration and is
// nil when classification is disabled or misconfigured.
var Suggester provider.UrgencyProvider

var (
	store      *Store
	classifier *filters.SpamClassifier
	detector   *filters.DuplicateDetector
)

func Init() {
	// Ensure the relief schema exists
	if err := db.EnsureSchema(db.DB, "relief"); err != nil {
		log.Fatal("Failed to ensure schema relief: ", err)
	}

	if err := db.DB.AutoMigrate(&DisasterRequest{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	// Bounding-box scans hit latitude and longitude together
	if err := db.DB.Exec(`
        CREATE INDEX IF NOT EXISTS requests_location_idx
        ON relief.requests (latitude, longitude);
    `).Error; err != nil {
		log.Fatal("Failed to create requests_location_idx", err)
	}

	// Duplicate-candidate lookups filter on type + phone + recency
	if err := db.DB.Exec(`
        CREATE INDEX IF NOT EXISTS requests_dup_probe_idx
        ON relief.requests (request_type, contact_phone, created_at);
    `).Error; err != nil {
		log.Fatal("Failed to create requests_dup_probe_idx", err)
	}

	rules := loadRules()

	store = NewStore(db.DB)
	classifier = filters.NewSpamClassifier(rules)
	detector = filters.NewDuplicateDetector(store)

	// Initialize the urgency classifier
	cfg := provider.LoadFromEnv()
	cfg.Rules = rules
	var err error
	Suggester, err = provider.NewProvider(cfg)
	if err != nil {
		log.Printf("[requests] WARNING: Failed to initialize %s urgency provider: %v", cfg.Provider, err)
		log.Printf("[requests] Urgency suggestions will be disabled")
		Suggester = nil
	} else {
		log.Printf("[requests] Initialized %s urgency provider", Suggester.Name())
	}
}

func loadRules() *filters.Ruleset {
	path := os.Getenv("FILTER_RULES_PATH")
	if path == "" {
		return filters.DefaultRules()
	}

	rules, err := filters.LoadRules(path)
	if err != nil {
		log.Printf("[requests] WARNING: Failed to load filter rules from %s: %v", path, err)
		log.Printf("[requests] Falling back to built-in rules")
		return filters.DefaultRules()
	}
	log.Printf("[requests] Loaded filter rules from %s", path)
	return rules
}

package seeds

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/events"
	"github.com/anas-fareedi/disaster-management/internal/utils"
)

// demoEvents are the disaster declarations the sample requests reference.
var demoEvents = []events.DisasterEvent{
	{
		EventID:       "FLOOD_2025_KOSI01",
		Name:          "Kosi River Flooding",
		EventType:     events.EventFlood,
		Severity:      events.SeveritySevere,
		Description:   "Breach in the eastern Kosi embankment flooded low-lying blocks across three districts.",
		CenterLat:     25.9716,
		CenterLng:     86.5951,
		RadiusKm:      80,
		AffectedAreas: pq.StringArray{"Supaul", "Saharsa", "Madhepura"},
		StartedAt:     time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	},
	{
		EventID:       "CYCLONE_2025_TN01",
		Name:          "Cyclone Vayulak Landfall",
		EventType:     events.EventCyclone,
		Severity:      events.SeverityModerate,
		Description:   "Cyclone made landfall north of Chennai with sustained winds near 110 kmph and storm surge along the coast.",
		CenterLat:     13.0827,
		CenterLng:     80.2707,
		RadiusKm:      60,
		AffectedAreas: pq.StringArray{"Chennai", "Tiruvallur"},
		StartedAt:     time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	},
	{
		EventID:       "LANDSLIDE_2025_UK01",
		Name:          "Uttarkashi Slope Failure",
		EventType:     events.EventLandslide,
		Severity:      events.SeveritySevere,
		Description:   "Heavy monsoon rain triggered slope failures that cut off villages along the Bhagirathi valley road.",
		CenterLat:     30.7268,
		CenterLng:     78.4354,
		RadiusKm:      25,
		AffectedAreas: pq.StringArray{"Uttarkashi", "Bhatwari"},
		StartedAt:     time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	},
}

func SeedEvents() error {
	for _, event := range demoEvents {
		var existing events.DisasterEvent
		err := db.DB.First(&existing, "event_id = ?", event.EventID).Error

		if err == nil {
			log.Printf("⚠️ Event exists, skipping: %s", event.EventID)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("DB error on event %s: %w", event.EventID, err)
		}

		event.ID = utils.GenerateUUID()
		if err := db.DB.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.EventID, err)
		}
	}

	log.Printf("✅ Seeded %d disaster events", len(demoEvents))
	return nil
}

package events

import (
	"time"

	"github.com/lib/pq"
)

type EventType string

const (
	EventFlood      EventType = "flood"
	EventEarthquake EventType = "earthquake"
	EventCyclone    EventType = "cyclone"
	EventFire       EventType = "fire"
	EventLandslide  EventType = "landslide"
	EventDrought    EventType = "drought"
	EventOther      EventType = "other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventFlood, EventEarthquake, EventCyclone, EventFire, EventLandslide, EventDrought, EventOther:
		return true
	}
	return false
}

type Severity string

const (
	SeverityMinor        Severity = "minor"
	SeverityModerate     Severity = "moderate"
	SeveritySevere       Severity = "severe"
	SeverityCatastrophic Severity = "catastrophic"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere, SeverityCatastrophic:
		return true
	}
	return false
}

// DisasterEvent groups relief requests under one declared disaster. Requests
// reference it through their disaster_event_id slug, so the slug is immutable
// once created.
type DisasterEvent struct {
	ID      string `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"not null;uniqueIndex" json:"event_id"`
	Name    string `gorm:"not null" json:"name"`

	EventType   EventType `gorm:"not null;index" json:"event_type"`
	Severity    Severity  `gorm:"not null;default:'moderate'" json:"severity"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	RadiusKm  float64 `json:"radius_km"`

	AffectedAreas pq.StringArray `gorm:"type:text[]" json:"affected_areas,omitempty"`

	StartedAt time.Time `json:"started_at"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DisasterEvent) TableName() string { return "relief.disaster_events" }

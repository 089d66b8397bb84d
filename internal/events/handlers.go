package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/geo"
	"github.com/anas-fareedi/disaster-management/internal/requests"
	"github.com/anas-fareedi/disaster-management/internal/utils"
)

// CreateEventInput declares a disaster. The slug is optional; one is minted
// from the type and year when absent.
type CreateEventInput struct {
	EventID       string   `json:"event_id"`
	Name          string   `json:"name"`
	EventType     string   `json:"event_type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	CenterLat     float64  `json:"center_lat"`
	CenterLng     float64  `json:"center_lng"`
	RadiusKm      float64  `json:"radius_km"`
	AffectedAreas []string `json:"affected_areas"`
	StartedAt     string   `json:"started_at"`
}

func CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input.EventType = strings.ToLower(input.EventType)
	input.Severity = strings.ToLower(input.Severity)
	if input.Severity == "" {
		input.Severity = string(SeverityModerate)
	}
	if input.RadiusKm == 0 {
		input.RadiusKm = 50
	}

	startedAt := time.Now().UTC()
	if input.StartedAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.StartedAt)
		if err != nil {
			http.Error(w, "started_at must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		startedAt = parsed.UTC()
	}

	if problems := validateEvent(&input); len(problems) > 0 {
		http.Error(w, "Validation failed: "+strings.Join(problems, "; "), http.StatusBadRequest)
		return
	}

	slug := strings.ToUpper(input.EventID)
	if slug == "" {
		slug = newEventSlug(EventType(input.EventType))
	}

	event := DisasterEvent{
		ID:            utils.GenerateUUID(),
		EventID:       slug,
		Name:          input.Name,
		EventType:     EventType(input.EventType),
		Severity:      Severity(input.Severity),
		Description:   input.Description,
		CenterLat:     input.CenterLat,
		CenterLng:     input.CenterLng,
		RadiusKm:      input.RadiusKm,
		AffectedAreas: pq.StringArray(input.AffectedAreas),
		StartedAt:     startedAt,
		IsActive:      true,
	}

	var existing DisasterEvent
	err := db.DB.First(&existing, "event_id = ?", event.EventID).Error
	if err == nil {
		http.Error(w, "An event with this ID already exists", http.StatusConflict)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := db.DB.Create(&event).Error; err != nil {
		http.Error(w, "Error creating event: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(event); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Where("is_active = ?", true)

	if eventType := strings.ToLower(r.URL.Query().Get("event_type")); eventType != "" {
		if !EventType(eventType).Valid() {
			http.Error(w, "event_type is not a valid event type", http.StatusBadRequest)
			return
		}
		q = q.Where("event_type = ?", eventType)
	}

	var events []DisasterEvent
	if err := q.Order("created_at DESC").Find(&events).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func GetEventHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "eventID")

	var event DisasterEvent
	err := db.DB.First(&event, "event_id = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, fmt.Sprintf("Event with ID %s not found", slug), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(event); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// EventRequestsHandler lists the relief requests tagged with the event slug,
// newest first, paginated like the main request list.
func EventRequestsHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "eventID")

	var event DisasterEvent
	err := db.DB.First(&event, "event_id = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, fmt.Sprintf("Event with ID %s not found", slug), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	page, err := queryInt(r, "page", 1, 1, 1000000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := queryInt(r, "size", 10, 1, 1000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	isActive := true
	rows, total, err := requests.NewStore(db.DB).List(r.Context(), requests.ListQuery{
		DisasterEventID: event.EventID,
		IsActive:        &isActive,
		SortBy:          "created_at",
		SortOrder:       "desc",
		Page:            page,
		Size:            size,
	})
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	list := make([]requests.RequestResponse, 0, len(rows))
	for _, row := range rows {
		list = append(list, requests.RequestResponse{
			DisasterRequest: row,
			LocationDisplay: row.LocationDisplay(),
			IsUrgent:        row.IsUrgent(),
		})
	}

	resp := requests.RequestsListResponse{
		Requests:   list,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func validateEvent(in *CreateEventInput) []string {
	var problems []string

	if in.EventID != "" {
		if n := utf8.RuneCountInString(in.EventID); n < 3 || n > 50 {
			problems = append(problems, "event_id must be between 3 and 50 characters")
		} else if !validSlug(in.EventID) {
			problems = append(problems, "event_id may only contain letters, digits, underscores and hyphens")
		}
	}
	if n := utf8.RuneCountInString(in.Name); n < 3 || n > 200 {
		problems = append(problems, "name must be between 3 and 200 characters")
	}
	if !EventType(in.EventType).Valid() {
		problems = append(problems, "event_type must be one of flood, earthquake, cyclone, fire, landslide, drought, other")
	}
	if !Severity(in.Severity).Valid() {
		problems = append(problems, "severity must be one of minor, moderate, severe, catastrophic")
	}
	if utf8.RuneCountInString(in.Description) > 2000 {
		problems = append(problems, "description must be at most 2000 characters")
	}
	if !geo.ValidCoordinates(in.CenterLat, in.CenterLng) {
		problems = append(problems, "center_lat/center_lng out of range")
	}
	if in.RadiusKm <= 0 || in.RadiusKm > 2000 {
		problems = append(problems, "radius_km must be greater than 0 and at most 2000")
	}
	if len(in.AffectedAreas) > 50 {
		problems = append(problems, "affected_areas must have at most 50 entries")
	}
	for _, area := range in.AffectedAreas {
		if n := utf8.RuneCountInString(strings.TrimSpace(area)); n == 0 || n > 100 {
			problems = append(problems, "affected_areas entries must be between 1 and 100 characters")
			break
		}
	}

	return problems
}

func validSlug(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// newEventSlug mints slugs like FLOOD_2025_A1B2C3. The uuid fragment keeps
// concurrent declarations from colliding without a sequence table.
func newEventSlug(t EventType) string {
	fragment := strings.ToUpper(strings.ReplaceAll(utils.GenerateUUID(), "-", "")[:6])
	return fmt.Sprintf("%s_%d_%s", strings.ToUpper(string(t)), time.Now().UTC().Year(), fragment)
}

func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}

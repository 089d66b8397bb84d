package requests

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/geo"
)

// RequestType is the category of help a submission asks for.
type RequestType string

const (
	TypeRescue         RequestType = "rescue"
	TypeMedical        RequestType = "medical"
	TypeFood           RequestType = "food"
	TypeWater          RequestType = "water"
	TypeShelter        RequestType = "shelter"
	TypeClothing       RequestType = "clothing"
	TypeTransportation RequestType = "transportation"
	TypeOther          RequestType = "other"
)

func (t RequestType) Valid() bool {
	switch t {
	case TypeRescue, TypeMedical, TypeFood, TypeWater, TypeShelter, TypeClothing, TypeTransportation, TypeOther:
		return true
	}
	return false
}

// UrgencyLevel orders requests for triage. Stored as plain text, so any
// SQL ordering over it must rank the values explicitly rather than sort
// the strings.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// rank returns 0 for the most urgent level. Mirrors urgencyRankSQL.
func (u UrgencyLevel) rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DisasterRequest is a single plea for help tied to a point on the map.
// Rows are soft-deleted by clearing IsActive; collection reads filter on
// it, direct ID lookups do not.
type DisasterRequest struct {
	RequestID   string      `gorm:"primaryKey" json:"request_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	RequestType RequestType `gorm:"not null;index" json:"request_type"`

	UrgencyLevel UrgencyLevel  `gorm:"not null;default:'medium'" json:"urgency_level"`
	Status       RequestStatus `gorm:"not null;default:'pending';index" json:"status"`

	ContactName  string `gorm:"not null" json:"contact_name"`
	ContactPhone string `gorm:"not null;index" json:"contact_phone"`
	ContactEmail string `json:"contact_email,omitempty"`

	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Address   string  `gorm:"not null" json:"address"`
	Landmark  string  `json:"landmark,omitempty"`

	PeopleAffected int     `gorm:"default:1" json:"people_affected"`
	EstimatedCost  float64 `json:"estimated_cost,omitempty"`

	AssignedTo      string `json:"assigned_to,omitempty"`
	AssignedContact string `json:"assigned_contact,omitempty"`

	AdditionalNotes string         `json:"additional_notes,omitempty"`
	QualityScore    float64        `json:"quality_score"`
	SuspicionFlags  pq.StringArray `gorm:"type:text[]" json:"suspicion_flags,omitempty"`

	IsVerified bool `gorm:"default:false" json:"is_verified"`
	IsActive   bool `gorm:"default:true;index" json:"is_active"`

	DisasterEventID string `gorm:"index" json:"disaster_event_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DisasterRequest) TableName() string { return "relief.requests" }

// IsUrgent reports whether the request should surface on triage views.
func (r *DisasterRequest) IsUrgent() bool {
	return r.UrgencyLevel == UrgencyHigh || r.UrgencyLevel == UrgencyCritical
}

// LocationDisplay renders the best human-readable location we have,
// falling back to raw coordinates when the reporter gave nothing else.
func (r *DisasterRequest) LocationDisplay() string {
	if r.Address != "" {
		return r.Address
	}
	if r.Landmark != "" {
		return "Near " + r.Landmark
	}
	return fmt.Sprintf("%.4f, %.4f", r.Latitude, r.Longitude)
}

// Submission projects the request into the shape the content filters score.
func (r *DisasterRequest) Submission() filters.Submission {
	return filters.Submission{
		Title:           r.Title,
		Description:     r.Description,
		RequestType:     string(r.RequestType),
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		ContactEmail:    r.ContactEmail,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Address:         r.Address,
		Landmark:        r.Landmark,
		PeopleAffected:  r.PeopleAffected,
		EstimatedCost:   r.EstimatedCost,
		AdditionalNotes: r.AdditionalNotes,
	}
}

// RequestResponse decorates a stored request with derived display fields.
// Distance fields are only set by the nearby search.
type RequestResponse struct {
	DisasterRequest
	LocationDisplay string   `json:"location_display"`
	IsUrgent        bool     `json:"is_urgent"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	DistanceText    string   `json:"distance_text,omitempty"`
	Direction       string   `json:"direction,omitempty"`
}

func toResponse(r DisasterRequest) RequestResponse {
	return RequestResponse{
		DisasterRequest: r,
		LocationDisplay: r.LocationDisplay(),
		IsUrgent:        r.IsUrgent(),
	}
}

func toResponses(reqs []DisasterRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toResponse(r))
	}
	return out
}

// RequestsListResponse is the paginated envelope for the list endpoint.
type RequestsListResponse struct {
	Requests   []RequestResponse `json:"requests"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalPages int               `json:"total_pages"`
}

// APIResponse is the generic success envelope for endpoints that do not
// return a request body of their own.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// MapCluster is one bubble on the map view: nearby requests grouped by
// the clustering pass, summarised by centroid and worst urgency.
type MapCluster struct {
	Centroid   geo.Coordinate `json:"centroid"`
	Count      int            `json:"count"`
	RequestIDs []string       `json:"request_ids"`
	TopUrgency UrgencyLevel   `json:"top_urgency"`
}

// MapViewResponse is the payload for the clustered map view. Bounds cover
// every matched point with padding so a map fit shows some margin.
type MapViewResponse struct {
	Clusters []MapCluster `json:"clusters"`
	Bounds   geo.Box      `json:"bounds"`
	Total    int          `json:"total"`
}

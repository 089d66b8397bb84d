package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/geo"
	"github.com/anas-fareedi/disaster-management/internal/utils"
)

// CreateRequestInput is the submission payload. Type and urgency arrive
// as free text and are lowercased before validation.
type CreateRequestInput struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	RequestType     string  `json:"request_type"`
	UrgencyLevel    string  `json:"urgency_level"`
	ContactName     string  `json:"contact_name"`
	ContactPhone    string  `json:"contact_phone"`
	ContactEmail    string  `json:"contact_email"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Address         string  `json:"address"`
	Landmark        string  `json:"landmark"`
	PeopleAffected  int     `json:"people_affected"`
	EstimatedCost   float64 `json:"estimated_cost"`
	AdditionalNotes string  `json:"additional_notes"`
	DisasterEventID string  `json:"disaster_event_id"`
}

// CreateRequestHandler validates a submission, runs it through the spam
// and duplicate filters, fills in a suggested urgency when the reporter
// gave none, and stores it.
func CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input.RequestType = strings.ToLower(input.RequestType)
	input.UrgencyLevel = strings.ToLower(input.UrgencyLevel)
	if input.PeopleAffected == 0 {
		input.PeopleAffected = 1
	}

	if problems := validateCreate(&input); len(problems) > 0 {
		http.Error(w, "Validation failed: "+strings.Join(problems, "; "), http.StatusBadRequest)
		return
	}

	sub := filters.Submission{
		Title:           input.Title,
		Description:     input.Description,
		RequestType:     input.RequestType,
		ContactName:     input.ContactName,
		ContactPhone:    input.ContactPhone,
		ContactEmail:    input.ContactEmail,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Address:         input.Address,
		Landmark:        input.Landmark,
		PeopleAffected:  input.PeopleAffected,
		EstimatedCost:   input.EstimatedCost,
		AdditionalNotes: input.AdditionalNotes,
	}

	if classifier.IsSpam(sub) {
		http.Error(w, "Request appears to be spam or invalid", http.StatusBadRequest)
		return
	}

	duplicate, err := detector.IsDuplicate(r.Context(), sub)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if duplicate {
		http.Error(w, "A similar request already exists for this location", http.StatusConflict)
		return
	}

	level := UrgencyLevel(input.UrgencyLevel)
	if level == "" {
		level = UrgencyMedium
		if Suggester != nil {
			suggestion, err := Suggester.Classify(r.Context(), input.Title, input.Description)
			if err != nil {
				log.Printf("[requests] urgency suggestion failed: %v", err)
			} else if suggested := UrgencyLevel(suggestion); suggested.Valid() {
				level = suggested
			}
		}
	}

	score, flags := classifier.Evaluate(sub)

	req := &DisasterRequest{
		RequestID:       utils.GenerateUUID(),
		Title:           input.Title,
		Description:     input.Description,
		RequestType:     RequestType(input.RequestType),
		UrgencyLevel:    level,
		Status:          StatusPending,
		ContactName:     input.ContactName,
		ContactPhone:    input.ContactPhone,
		ContactEmail:    input.ContactEmail,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Address:         input.Address,
		Landmark:        input.Landmark,
		PeopleAffected:  input.PeopleAffected,
		EstimatedCost:   input.EstimatedCost,
		AdditionalNotes: input.AdditionalNotes,
		QualityScore:    score,
		SuspicionFlags:  pq.StringArray(flags),
		IsActive:        true,
		DisasterEventID: input.DisasterEventID,
	}

	if err := store.Create(r.Context(), req); err != nil {
		http.Error(w, "Error creating request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListRequestsHandler returns a filtered, sorted page of requests.
func ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

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

	listQ := ListQuery{
		RequestType:     strings.ToLower(q.Get("request_type")),
		UrgencyLevel:    strings.ToLower(q.Get("urgency_level")),
		Status:          strings.ToLower(q.Get("status")),
		DisasterEventID: q.Get("disaster_event_id"),
		SortBy:          q.Get("sort_by"),
		SortOrder:       q.Get("sort_order"),
		Page:            page,
		Size:            size,
	}
	if listQ.RequestType != "" && !RequestType(listQ.RequestType).Valid() {
		http.Error(w, "request_type is not a valid request type", http.StatusBadRequest)
		return
	}
	if listQ.UrgencyLevel != "" && !UrgencyLevel(listQ.UrgencyLevel).Valid() {
		http.Error(w, "urgency_level is not a valid urgency level", http.StatusBadRequest)
		return
	}
	if listQ.Status != "" && !RequestStatus(listQ.Status).Valid() {
		http.Error(w, "status is not a valid request status", http.StatusBadRequest)
		return
	}
	if listQ.SortBy == "" {
		listQ.SortBy = "created_at"
	}
	if _, ok := sortColumns[listQ.SortBy]; !ok {
		http.Error(w, "sort_by is not a sortable field", http.StatusBadRequest)
		return
	}
	if listQ.SortOrder == "" {
		listQ.SortOrder = "desc"
	}
	if listQ.SortOrder != "asc" && listQ.SortOrder != "desc" {
		http.Error(w, "sort_order must be asc or desc", http.StatusBadRequest)
		return
	}

	if raw := q.Get("is_verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "is_verified must be a boolean", http.StatusBadRequest)
			return
		}
		listQ.IsVerified = &v
	}
	isActive := true
	if raw := q.Get("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "is_active must be a boolean", http.StatusBadRequest)
			return
		}
		isActive = v
	}
	listQ.IsActive = &isActive

	rows, total, err := store.List(r.Context(), listQ)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	resp := RequestsListResponse{
		Requests:   toResponses(rows),
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	req, err := store.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// UpdateRequestInput carries partial updates. Nil fields are untouched.
type UpdateRequestInput struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	UrgencyLevel    *string  `json:"urgency_level"`
	Status          *string  `json:"status"`
	ContactName     *string  `json:"contact_name"`
	ContactPhone    *string  `json:"contact_phone"`
	ContactEmail    *string  `json:"contact_email"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         *string  `json:"address"`
	Landmark        *string  `json:"landmark"`
	AssignedTo      *string  `json:"assigned_to"`
	AssignedContact *string  `json:"assigned_contact"`
	PeopleAffected  *int     `json:"people_affected"`
	EstimatedCost   *float64 `json:"estimated_cost"`
	AdditionalNotes *string  `json:"additional_notes"`
	IsVerified      *bool    `json:"is_verified"`
	IsActive        *bool    `json:"is_active"`
}

func UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	var input UpdateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req, err := store.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if problems := applyUpdate(req, &input); len(problems) > 0 {
		http.Error(w, "Validation failed: "+strings.Join(problems, "; "), http.StatusBadRequest)
		return
	}

	if err := store.Update(r.Context(), req); err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	err := store.SoftDelete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := APIResponse{
		Success: true,
		Message: fmt.Sprintf("Request %s has been deleted successfully", id),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// NearbyRequestsHandler finds active requests within a radius of a
// point, nearest first, each annotated with distance and direction from
// the search center.
func NearbyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	if latRaw == "" || lngRaw == "" {
		http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		http.Error(w, "lat must be a number", http.StatusBadRequest)
		return
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		http.Error(w, "lng must be a number", http.StatusBadRequest)
		return
	}
	if !geo.ValidCoordinates(lat, lng) {
		http.Error(w, "latitude/longitude out of range", http.StatusBadRequest)
		return
	}

	radius := 10.0
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "radius must be a number", http.StatusBadRequest)
			return
		}
	}
	if radius <= 0 || radius > 1000 {
		http.Error(w, "radius must be greater than 0 and at most 1000 km", http.StatusBadRequest)
		return
	}

	limit, err := queryInt(r, "limit", 50, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reqs, dists, err := store.NearbyActive(r.Context(), lat, lng, radius, limit)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		item := toResponse(reqs[i])
		dist := dists[i]
		item.DistanceKm = &dist
		item.DistanceText = geo.FormatDistance(dist)
		item.Direction = geo.CompassDirection(geo.Bearing(lat, lng, reqs[i].Latitude, reqs[i].Longitude))
		resp = append(resp, item)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func UrgentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reqs, err := store.Urgent(r.Context(), limit)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponses(reqs)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RecentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "hours", 24, 1, 168)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 50, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reqs, err := store.Recent(r.Context(), hours, limit)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponses(reqs)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// AssignRequestHandler hands a pending request to a volunteer or NGO.
// Assignee details come in as query parameters.
func AssignRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	q := r.URL.Query()

	name := q.Get("assignee_name")
	contact := q.Get("assignee_contact")
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		http.Error(w, "assignee_name must be between 2 and 100 characters", http.StatusBadRequest)
		return
	}
	if n := utf8.RuneCountInString(contact); n < 10 || n > 20 {
		http.Error(w, "assignee_contact must be between 10 and 20 characters", http.StatusBadRequest)
		return
	}

	req, err := store.Assign(r.Context(), id, name, contact)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrNotAssignable) {
		http.Error(w, "Request is already assigned or closed", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func CompleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	req, err := store.Complete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrNotCompletable) {
		http.Error(w, "Request must be in progress to complete", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func VerifyRequestHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	req, err := store.Verify(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, fmt.Sprintf("Request with ID %s not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(*req)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// MapViewHandler returns active requests in a viewport grouped into
// proximity clusters, plus padded bounds for the map fit. Without an
// explicit viewport it covers India.
func MapViewHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	box := geo.IndiaBounds
	if q.Get("lat_min") != "" || q.Get("lat_max") != "" || q.Get("lng_min") != "" || q.Get("lng_max") != "" {
		parsed := make(map[string]float64, 4)
		for _, name := range []string{"lat_min", "lat_max", "lng_min", "lng_max"} {
			raw := q.Get(name)
			if raw == "" {
				http.Error(w, "lat_min, lat_max, lng_min and lng_max must be provided together", http.StatusBadRequest)
				return
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				http.Error(w, name+" must be a number", http.StatusBadRequest)
				return
			}
			parsed[name] = v
		}
		box = geo.Box{
			MinLat: parsed["lat_min"],
			MaxLat: parsed["lat_max"],
			MinLng: parsed["lng_min"],
			MaxLng: parsed["lng_max"],
		}
		if box.MinLat > box.MaxLat || box.MinLng > box.MaxLng {
			http.Error(w, "viewport bounds are inverted", http.StatusBadRequest)
			return
		}
	}

	clusterKm := geo.DefaultClusterDistanceKm
	if raw := q.Get("cluster_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "cluster_km must be a number", http.StatusBadRequest)
			return
		}
		clusterKm = v
	}
	if clusterKm <= 0 || clusterKm > 100 {
		http.Error(w, "cluster_km must be greater than 0 and at most 100", http.StatusBadRequest)
		return
	}

	reqs, err := store.ActiveInBox(r.Context(), box)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	points := make([]geo.Coordinate, len(reqs))
	for i, rq := range reqs {
		points[i] = geo.Coordinate{Lat: rq.Latitude, Lng: rq.Longitude}
	}

	groups := geo.Cluster(points, clusterKm)
	clusters := make([]MapCluster, 0, len(groups))
	for _, idxs := range groups {
		pts := make([]geo.Coordinate, 0, len(idxs))
		ids := make([]string, 0, len(idxs))
		top := reqs[idxs[0]].UrgencyLevel
		for _, i := range idxs {
			pts = append(pts, points[i])
			ids = append(ids, reqs[i].RequestID)
			if reqs[i].UrgencyLevel.rank() < top.rank() {
				top = reqs[i].UrgencyLevel
			}
		}
		clusters = append(clusters, MapCluster{
			Centroid:   geo.Centroid(pts),
			Count:      len(idxs),
			RequestIDs: ids,
			TopUrgency: top,
		})
	}

	resp := MapViewResponse{
		Clusters: clusters,
		Bounds:   geo.MapBounds(points),
		Total:    len(points),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := store.Statistics(r.Context())
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := APIResponse{
		Success: true,
		Message: "Statistics retrieved successfully",
		Data:    stats,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ClassifyHandler exposes the urgency classifier directly so the intake
// form can preview a suggestion before submitting.
func ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Title == "" && input.Description == "" {
		http.Error(w, "title or description is required", http.StatusBadRequest)
		return
	}

	if Suggester == nil {
		http.Error(w, "Urgency classification is not configured", http.StatusServiceUnavailable)
		return
	}

	level, err := Suggester.Classify(r.Context(), input.Title, input.Description)
	if err != nil {
		http.Error(w, "Urgency classification failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	resp := struct {
		UrgencyLevel string `json:"urgency_level"`
		Source       string `json:"source"`
	}{level, Suggester.Name()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func validateCreate(in *CreateRequestInput) []string {
	var problems []string

	if n := utf8.RuneCountInString(in.Title); n < 5 || n > 200 {
		problems = append(problems, "title must be between 5 and 200 characters")
	}
	if n := utf8.RuneCountInString(in.Description); n < 10 || n > 2000 {
		problems = append(problems, "description must be between 10 and 2000 characters")
	}
	if !RequestType(in.RequestType).Valid() {
		problems = append(problems, "request_type must be one of rescue, medical, food, water, shelter, clothing, transportation, other")
	}
	if in.UrgencyLevel != "" && !UrgencyLevel(in.UrgencyLevel).Valid() {
		problems = append(problems, "urgency_level must be one of low, medium, high, critical")
	}
	if n := utf8.RuneCountInString(in.ContactName); n < 2 || n > 100 {
		problems = append(problems, "contact_name must be between 2 and 100 characters")
	}
	if n := utf8.RuneCountInString(in.ContactPhone); n < 10 || n > 20 {
		problems = append(problems, "contact_phone must be between 10 and 20 characters")
	} else if digitCount(in.ContactPhone) < 10 {
		problems = append(problems, "contact_phone must have at least 10 digits")
	}
	if email := strings.TrimSpace(in.ContactEmail); email != "" {
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			problems = append(problems, "contact_email is not a valid email address")
		}
	}
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		problems = append(problems, "latitude/longitude out of range")
	}
	if n := utf8.RuneCountInString(in.Address); n < 10 || n > 500 {
		problems = append(problems, "address must be between 10 and 500 characters")
	}
	if utf8.RuneCountInString(in.Landmark) > 200 {
		problems = append(problems, "landmark must be at most 200 characters")
	}
	if in.PeopleAffected < 1 || in.PeopleAffected > 1000 {
		problems = append(problems, "people_affected must be between 1 and 1000")
	}
	if in.EstimatedCost < 0 {
		problems = append(problems, "estimated_cost must not be negative")
	}
	if utf8.RuneCountInString(in.AdditionalNotes) > 1000 {
		problems = append(problems, "additional_notes must be at most 1000 characters")
	}
	if utf8.RuneCountInString(in.DisasterEventID) > 50 {
		problems = append(problems, "disaster_event_id must be at most 50 characters")
	}

	return problems
}

// applyUpdate copies set fields from the input onto the request,
// validating each. The request is only mutated for valid fields, so a
// caller must discard it when problems come back.
func applyUpdate(req *DisasterRequest, in *UpdateRequestInput) []string {
	var problems []string

	if in.Title != nil {
		if n := utf8.RuneCountInString(*in.Title); n < 5 || n > 200 {
			problems = append(problems, "title must be between 5 and 200 characters")
		} else {
			req.Title = *in.Title
		}
	}
	if in.Description != nil {
		if n := utf8.RuneCountInString(*in.Description); n < 10 || n > 2000 {
			problems = append(problems, "description must be between 10 and 2000 characters")
		} else {
			req.Description = *in.Description
		}
	}
	if in.UrgencyLevel != nil {
		level := UrgencyLevel(strings.ToLower(*in.UrgencyLevel))
		if !level.Valid() {
			problems = append(problems, "urgency_level must be one of low, medium, high, critical")
		} else {
			req.UrgencyLevel = level
		}
	}
	if in.Status != nil {
		status := RequestStatus(strings.ToLower(*in.Status))
		if !status.Valid() {
			problems = append(problems, "status must be one of pending, in_progress, completed, cancelled")
		} else {
			req.Status = status
		}
	}
	if in.ContactName != nil {
		if n := utf8.RuneCountInString(*in.ContactName); n < 2 || n > 100 {
			problems = append(problems, "contact_name must be between 2 and 100 characters")
		} else {
			req.ContactName = *in.ContactName
		}
	}
	if in.ContactPhone != nil {
		if n := utf8.RuneCountInString(*in.ContactPhone); n < 10 || n > 20 {
			problems = append(problems, "contact_phone must be between 10 and 20 characters")
		} else {
			req.ContactPhone = *in.ContactPhone
		}
	}
	if in.ContactEmail != nil {
		if email := strings.TrimSpace(*in.ContactEmail); email != "" && (!strings.Contains(email, "@") || !strings.Contains(email, ".")) {
			problems = append(problems, "contact_email is not a valid email address")
		} else {
			req.ContactEmail = *in.ContactEmail
		}
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			problems = append(problems, "latitude out of range")
		} else {
			req.Latitude = *in.Latitude
		}
	}
	if in.Longitude != nil {
		if *in.Longitude < -180 || *in.Longitude > 180 {
			problems = append(problems, "longitude out of range")
		} else {
			req.Longitude = *in.Longitude
		}
	}
	if in.Address != nil {
		if n := utf8.RuneCountInString(*in.Address); n < 10 || n > 500 {
			problems = append(problems, "address must be between 10 and 500 characters")
		} else {
			req.Address = *in.Address
		}
	}
	if in.Landmark != nil {
		if utf8.RuneCountInString(*in.Landmark) > 200 {
			problems = append(problems, "landmark must be at most 200 characters")
		} else {
			req.Landmark = *in.Landmark
		}
	}
	if in.AssignedTo != nil {
		if utf8.RuneCountInString(*in.AssignedTo) > 100 {
			problems = append(problems, "assigned_to must be at most 100 characters")
		} else {
			req.AssignedTo = *in.AssignedTo
		}
	}
	if in.AssignedContact != nil {
		if utf8.RuneCountInString(*in.AssignedContact) > 20 {
			problems = append(problems, "assigned_contact must be at most 20 characters")
		} else {
			req.AssignedContact = *in.AssignedContact
		}
	}
	if in.PeopleAffected != nil {
		if *in.PeopleAffected < 1 || *in.PeopleAffected > 1000 {
			problems = append(problems, "people_affected must be between 1 and 1000")
		} else {
			req.PeopleAffected = *in.PeopleAffected
		}
	}
	if in.EstimatedCost != nil {
		if *in.EstimatedCost < 0 {
			problems = append(problems, "estimated_cost must not be negative")
		} else {
			req.EstimatedCost = *in.EstimatedCost
		}
	}
	if in.AdditionalNotes != nil {
		if utf8.RuneCountInString(*in.AdditionalNotes) > 1000 {
			problems = append(problems, "additional_notes must be at most 1000 characters")
		} else {
			req.AdditionalNotes = *in.AdditionalNotes
		}
	}
	if in.IsVerified != nil {
		req.IsVerified = *in.IsVerified
	}
	if in.IsActive != nil {
		req.IsActive = *in.IsActive
	}

	return problems
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

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

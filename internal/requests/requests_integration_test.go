package requests_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/middleware"
	"github.com/anas-fareedi/disaster-management/internal/requests"
	"github.com/anas-fareedi/disaster-management/internal/volunteers"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	// Load .env.local relative to the repo root (two directories up from internal/requests/).
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available, skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	// The submission limiter and the urgency provider read the environment during
	// setup. Tests need a deterministic keyword provider and a limiter they can't trip.
	os.Setenv("URGENCY_PROVIDER", "keyword")
	os.Setenv("RATE_LIMIT_RPS", "1000")
	os.Setenv("RATE_LIMIT_BURST", "1000")

	db.Connect()
	dbAvailable = true

	volunteers.Init()
	requests.Init()

	// Mount request routes on a chi router, matching production setup in main.go.
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.CORSMiddleware)
	r.Mount("/api", requests.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// uniquePhone returns a 10-digit phone number that no other test row shares, so
// the duplicate detector never crosses test boundaries.
func uniquePhone() string {
	return fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000)
}

// createPayload returns a submission body that passes validation and the content
// filters. Each call gets a fresh contact phone.
func createPayload() map[string]any {
	return map[string]any{
		"title":           "Food needed in Rajendra Nagar",
		"description":     "Twenty families stranded on rooftops need food packets and drinking water.",
		"request_type":    "food",
		"urgency_level":   "high",
		"contact_name":    "Ramesh Kumar",
		"contact_phone":   uniquePhone(),
		"latitude":        25.5941,
		"longitude":       85.1376,
		"address":         "12 Rajendra Nagar, Patna, Bihar",
		"people_affected": 20,
	}
}

// createTestRequest inserts a request row directly and registers a cleanup that
// hard-deletes it. The mutate hook adjusts fields before the insert.
func createTestRequest(t *testing.T, mutate func(*requests.DisasterRequest)) *requests.DisasterRequest {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	req := &requests.DisasterRequest{
		RequestID:      uuid.New().String(),
		Title:          "Medical help needed near the river bank",
		Description:    "Elderly residents cut off by flood water need medicines and a doctor visit.",
		RequestType:    requests.TypeMedical,
		UrgencyLevel:   requests.UrgencyMedium,
		Status:         requests.StatusPending,
		ContactName:    "Integration Tester",
		ContactPhone:   uniquePhone(),
		Latitude:       25.5941,
		Longitude:      85.1376,
		Address:        "45 Ashok Rajpath, Patna, Bihar",
		PeopleAffected: 5,
		IsActive:       true,
	}
	if mutate != nil {
		mutate(req)
	}
	if err := db.DB.Create(req).Error; err != nil {
		t.Fatalf("failed to create test request: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Where("request_id = ?", req.RequestID).Delete(&requests.DisasterRequest{})
	})

	return req
}

// authClient returns an http.Client whose cookie jar carries a valid session for
// a freshly created volunteer with the given role.
func authClient(t *testing.T, role string) *http.Client {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	volunteer := volunteers.Volunteer{
		VolunteerID:    uuid.New().String(),
		Username:       fmt.Sprintf("volunteer_%s", uuid.New().String()[:8]),
		HashedPassword: "integration-test-placeholder",
		Role:           role,
	}
	if err := db.DB.Create(&volunteer).Error; err != nil {
		t.Fatalf("failed to create test volunteer: %v", err)
	}

	session := volunteers.Session{
		SessionID:   uuid.New().String(),
		VolunteerID: volunteer.VolunteerID,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Where("volunteer_id = ?", volunteer.VolunteerID).Delete(&volunteers.Session{})
		db.DB.Where("volunteer_id = ?", volunteer.VolunteerID).Delete(&volunteers.Volunteer{})
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	serverURL, err := url.Parse(testServer.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	jar.SetCookies(serverURL, []*http.Cookie{{Name: "session_id", Value: session.SessionID}})
	return &http.Client{Jar: jar}
}

// postJSON sends a JSON POST with the default client.
func postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(testServer.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// readBody reads and returns the response body as a string, draining and closing it.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// cleanupRequest registers a hard delete for a row created through the API.
func cleanupRequest(t *testing.T, requestID string) {
	t.Helper()
	t.Cleanup(func() {
		db.DB.Where("request_id = ?", requestID).Delete(&requests.DisasterRequest{})
	})
}

// TestCreateRequest_Success verifies a clean submission is stored with a fresh ID,
// pending status and the derived display fields.
func TestCreateRequest_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	resp := postJSON(t, "/api/requests", createPayload())
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", resp.StatusCode, body)
	}

	var created requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	cleanupRequest(t, created.RequestID)

	if created.RequestID == "" {
		t.Error("expected a generated request_id")
	}
	if created.Status != requests.StatusPending {
		t.Errorf("expected status pending, got %q", created.Status)
	}
	if !created.IsUrgent {
		t.Error("expected is_urgent true for a high urgency submission")
	}
	if created.LocationDisplay != "12 Rajendra Nagar, Patna, Bihar" {
		t.Errorf("expected location_display to use the address, got %q", created.LocationDisplay)
	}
	if created.QualityScore < 0 || created.QualityScore > 1 {
		t.Errorf("expected quality_score in [0,1], got %f", created.QualityScore)
	}
}

// TestCreateRequest_SpamRejected verifies junk content is turned away before storage.
func TestCreateRequest_SpamRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	payload := createPayload()
	payload["description"] = "aaaaaaaaaa test test test spam spam spam"

	resp := postJSON(t, "/api/requests", payload)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "spam or invalid") {
		t.Errorf("expected spam rejection message, got: %q", body)
	}
}

// TestCreateRequest_DuplicateRejected verifies an identical resubmission within the
// duplicate window is rejected with 409.
func TestCreateRequest_DuplicateRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	payload := createPayload()

	first := postJSON(t, "/api/requests", payload)
	firstBody := readBody(t, first)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first submission failed: %d %s", first.StatusCode, firstBody)
	}
	var created requests.RequestResponse
	if err := json.Unmarshal([]byte(firstBody), &created); err != nil {
		t.Fatalf("invalid JSON body: %s", firstBody)
	}
	cleanupRequest(t, created.RequestID)

	second := postJSON(t, "/api/requests", payload)
	secondBody := readBody(t, second)

	if second.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for resubmission, got %d; body: %s", second.StatusCode, secondBody)
	}
	if !strings.Contains(secondBody, "similar request already exists") {
		t.Errorf("expected duplicate rejection message, got: %q", secondBody)
	}
}

// TestCreateRequest_ValidationFailed verifies field problems are collected into one
// 400 response.
func TestCreateRequest_ValidationFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	payload := createPayload()
	payload["title"] = "Help"
	payload["contact_phone"] = "12345"

	resp := postJSON(t, "/api/requests", payload)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Validation failed") {
		t.Errorf("expected validation envelope, got: %q", body)
	}
	if !strings.Contains(body, "title") || !strings.Contains(body, "contact_phone") {
		t.Errorf("expected both field problems reported, got: %q", body)
	}
}

// TestCreateRequest_SuggestsUrgency verifies a submission without an urgency level
// gets one from the keyword classifier instead of silently defaulting.
func TestCreateRequest_SuggestsUrgency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	payload := createPayload()
	delete(payload, "urgency_level")
	payload["title"] = "People trapped on rooftops"
	payload["description"] = "Families are trapped by rising water and need rescue boats before nightfall."

	resp := postJSON(t, "/api/requests", payload)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", resp.StatusCode, body)
	}
	var created requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	cleanupRequest(t, created.RequestID)

	if created.UrgencyLevel != requests.UrgencyHigh {
		t.Errorf("expected suggested urgency high, got %q", created.UrgencyLevel)
	}
}

// TestGetRequest_NotFound verifies an unknown ID yields 404 with the ID echoed back.
func TestGetRequest_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	missing := uuid.New().String()
	resp, err := http.Get(testServer.URL + "/api/requests/" + missing)
	if err != nil {
		t.Fatalf("GET request: %v", err)
	}
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, missing) {
		t.Errorf("expected body to echo the missing ID, got: %q", body)
	}
}

// TestGetRequest_Success verifies fetch-by-ID round-trips a stored row.
func TestGetRequest_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)

	resp, err := http.Get(testServer.URL + "/api/requests/" + stored.RequestID)
	if err != nil {
		t.Fatalf("GET request: %v", err)
	}
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}
	var got requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if got.RequestID != stored.RequestID {
		t.Errorf("expected request_id %s, got %s", stored.RequestID, got.RequestID)
	}
	if got.LocationDisplay != stored.Address {
		t.Errorf("expected location_display %q, got %q", stored.Address, got.LocationDisplay)
	}
}

// TestListRequests_FilterAndPaginate exercises filtering, sorting and pagination.
// Rows are isolated from the rest of the table through a unique disaster event ID.
func TestListRequests_FilterAndPaginate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	eventID := "evt-" + uuid.New().String()[:8]
	createTestRequest(t, func(r *requests.DisasterRequest) {
		r.DisasterEventID = eventID
		r.RequestType = requests.TypeFood
		r.UrgencyLevel = requests.UrgencyCritical
	})
	createTestRequest(t, func(r *requests.DisasterRequest) {
		r.DisasterEventID = eventID
		r.RequestType = requests.TypeFood
		r.UrgencyLevel = requests.UrgencyLow
	})
	createTestRequest(t, func(r *requests.DisasterRequest) {
		r.DisasterEventID = eventID
		r.RequestType = requests.TypeMedical
		r.UrgencyLevel = requests.UrgencyHigh
	})

	get := func(query string) requests.RequestsListResponse {
		t.Helper()
		resp, err := http.Get(testServer.URL + "/api/requests?" + query)
		if err != nil {
			t.Fatalf("GET /api/requests: %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
		}
		var list requests.RequestsListResponse
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			t.Fatalf("invalid JSON body: %s", body)
		}
		return list
	}

	page1 := get("disaster_event_id=" + eventID + "&size=2&page=1")
	if page1.Total != 3 {
		t.Errorf("expected total 3, got %d", page1.Total)
	}
	if page1.TotalPages != 2 {
		t.Errorf("expected total_pages 2, got %d", page1.TotalPages)
	}
	if len(page1.Requests) != 2 {
		t.Errorf("expected 2 rows on page 1, got %d", len(page1.Requests))
	}

	page2 := get("disaster_event_id=" + eventID + "&size=2&page=2")
	if len(page2.Requests) != 1 {
		t.Errorf("expected 1 row on page 2, got %d", len(page2.Requests))
	}

	foodOnly := get("disaster_event_id=" + eventID + "&request_type=food")
	if foodOnly.Total != 2 {
		t.Errorf("expected 2 food rows, got %d", foodOnly.Total)
	}

	byUrgency := get("disaster_event_id=" + eventID + "&sort_by=urgency_level&sort_order=desc")
	if len(byUrgency.Requests) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(byUrgency.Requests))
	}
	if byUrgency.Requests[0].UrgencyLevel != requests.UrgencyCritical {
		t.Errorf("expected critical first under urgency sort, got %q", byUrgency.Requests[0].UrgencyLevel)
	}
	if byUrgency.Requests[2].UrgencyLevel != requests.UrgencyLow {
		t.Errorf("expected low last under urgency sort, got %q", byUrgency.Requests[2].UrgencyLevel)
	}
}

// TestListRequests_RejectsBadParams verifies filter and pagination validation.
func TestListRequests_RejectsBadParams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	cases := []struct {
		name   string
		query  string
		wantIn string
	}{
		{"unknown status", "status=done", "status"},
		{"unknown type", "request_type=money", "request_type"},
		{"unsortable field", "sort_by=contact_phone", "sortable"},
		{"bad sort order", "sort_order=sideways", "sort_order"},
		{"oversized page size", "size=2000", "size must be between"},
		{"non-numeric page", "page=abc", "page must be an integer"},
		{"bad is_active", "is_active=maybe", "is_active"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + "/api/requests?" + tc.query)
			if err != nil {
				t.Fatalf("GET /api/requests: %v", err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d; body: %s", resp.StatusCode, body)
			}
			if !strings.Contains(body, tc.wantIn) {
				t.Errorf("expected message mentioning %q, got: %q", tc.wantIn, body)
			}
		})
	}
}

// TestNearbySearch verifies radius filtering, distance decoration and ordering.
func TestNearbySearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	// Remote corner of the map so other rows stay out of the search radius.
	baseLat, baseLng := 10.2100, 76.4500

	near := createTestRequest(t, func(r *requests.DisasterRequest) {
		r.Latitude = baseLat + 0.009 // ~1 km north
		r.Longitude = baseLng
	})
	farther := createTestRequest(t, func(r *requests.DisasterRequest) {
		r.Latitude = baseLat
		r.Longitude = baseLng + 0.0456 // ~5 km east
	})
	outside := createTestRequest(t, func(r *requests.DisasterRequest) {
		r.Latitude = 28.6100 // Delhi, far outside the radius
		r.Longitude = 77.2000
	})

	u := fmt.Sprintf("%s/api/requests/nearby/search?lat=%f&lng=%f&radius=10&limit=100", testServer.URL, baseLat, baseLng)
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET nearby: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var results []requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}

	index := map[string]int{}
	for i, r := range results {
		index[r.RequestID] = i
		if r.DistanceKm == nil {
			t.Fatalf("expected distance_km on every nearby result, missing on %s", r.RequestID)
		}
		if *r.DistanceKm > 10 {
			t.Errorf("result %s is %f km away, outside the 10 km radius", r.RequestID, *r.DistanceKm)
		}
		if r.DistanceText == "" || r.Direction == "" {
			t.Errorf("expected distance_text and direction on %s", r.RequestID)
		}
		if i > 0 && *results[i-1].DistanceKm > *r.DistanceKm {
			t.Errorf("results not sorted by distance at index %d", i)
		}
	}

	nearIdx, ok := index[near.RequestID]
	if !ok {
		t.Fatal("expected the 1 km row in the results")
	}
	fartherIdx, ok := index[farther.RequestID]
	if !ok {
		t.Fatal("expected the 5 km row in the results")
	}
	if nearIdx > fartherIdx {
		t.Error("expected the closer row to sort before the farther row")
	}
	if _, ok := index[outside.RequestID]; ok {
		t.Error("row far outside the radius must not appear")
	}
}

// TestNearbySearch_RequiresCoordinates verifies lat and lng are mandatory.
func TestNearbySearch_RequiresCoordinates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	resp, err := http.Get(testServer.URL + "/api/requests/nearby/search?lat=25.59")
	if err != nil {
		t.Fatalf("GET nearby: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "lat and lng") {
		t.Errorf("expected missing-coordinate message, got: %q", body)
	}
}

// TestUrgentList verifies the triage feed only carries open high and critical rows
// and never lists a high row above a critical one.
func TestUrgentList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	critical := createTestRequest(t, func(r *requests.DisasterRequest) {
		r.UrgencyLevel = requests.UrgencyCritical
	})
	createTestRequest(t, func(r *requests.DisasterRequest) {
		r.UrgencyLevel = requests.UrgencyHigh
	})

	resp, err := http.Get(testServer.URL + "/api/requests/urgent/list?limit=100")
	if err != nil {
		t.Fatalf("GET urgent: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var results []requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}

	seenHigh := false
	found := false
	for _, r := range results {
		if !r.IsUrgent {
			t.Errorf("non-urgent row %s in the urgent feed", r.RequestID)
		}
		if r.Status != requests.StatusPending {
			t.Errorf("non-pending row %s in the urgent feed", r.RequestID)
		}
		if r.UrgencyLevel == requests.UrgencyHigh {
			seenHigh = true
		}
		if r.UrgencyLevel == requests.UrgencyCritical && seenHigh {
			t.Error("critical row listed after a high row")
		}
		if r.RequestID == critical.RequestID {
			found = true
		}
	}
	if !found {
		t.Error("expected the created critical row in the urgent feed")
	}
}

// TestRecentList verifies the recency window.
func TestRecentList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	fresh := createTestRequest(t, nil)

	resp, err := http.Get(testServer.URL + "/api/requests/recent/list?hours=1&limit=100")
	if err != nil {
		t.Fatalf("GET recent: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var results []requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}

	cutoff := time.Now().Add(-time.Hour - time.Minute)
	found := false
	for _, r := range results {
		if r.CreatedAt.Before(cutoff) {
			t.Errorf("row %s created %s is outside the 1 hour window", r.RequestID, r.CreatedAt)
		}
		if r.RequestID == fresh.RequestID {
			found = true
		}
	}
	if !found {
		t.Error("expected the fresh row in the recent feed")
	}
}

// TestAssignFlow walks a request through its whole lifecycle and verifies the
// state machine rejects repeat transitions.
func TestAssignFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)
	client := authClient(t, "volunteer")

	assignURL := fmt.Sprintf("%s/api/requests/%s/assign?assignee_name=%s&assignee_contact=%s",
		testServer.URL, stored.RequestID, url.QueryEscape("Bihar Relief Team"), "9000000001")

	resp, err := client.Post(assignURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST assign: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign failed: %d %s", resp.StatusCode, body)
	}
	var assigned requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &assigned); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if assigned.Status != requests.StatusInProgress {
		t.Errorf("expected status in_progress after assign, got %q", assigned.Status)
	}
	if assigned.AssignedTo != "Bihar Relief Team" {
		t.Errorf("expected assigned_to recorded, got %q", assigned.AssignedTo)
	}

	// A second assign must bounce off the in_progress status.
	resp, err = client.Post(assignURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST assign again: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for double assign, got %d; body: %s", resp.StatusCode, body)
	}

	completeURL := fmt.Sprintf("%s/api/requests/%s/complete", testServer.URL, stored.RequestID)
	resp, err = client.Post(completeURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST complete: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete failed: %d %s", resp.StatusCode, body)
	}
	var completed requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &completed); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if completed.Status != requests.StatusCompleted {
		t.Errorf("expected status completed, got %q", completed.Status)
	}

	// Completed rows take no further transitions.
	resp, err = client.Post(completeURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST complete again: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double complete, got %d", resp.StatusCode)
	}

	resp, err = client.Post(assignURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST assign after complete: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for assigning a completed request, got %d", resp.StatusCode)
	}
}

// TestAssign_Unauthorized verifies volunteer actions need a session.
func TestAssign_Unauthorized(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)

	assignURL := fmt.Sprintf("%s/api/requests/%s/assign?assignee_name=Team&assignee_contact=9000000001",
		testServer.URL, stored.RequestID)
	resp, err := http.Post(assignURL, "application/json", nil)
	if err != nil {
		t.Fatalf("POST assign: %v", err)
	}
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d; body: %s", resp.StatusCode, body)
	}
}

// TestUpdateRequest verifies a partial update through the volunteer route.
func TestUpdateRequest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)
	client := authClient(t, "volunteer")

	payload, _ := json.Marshal(map[string]any{
		"urgency_level":   "CRITICAL",
		"people_affected": 75,
	})
	req, err := http.NewRequest(http.MethodPut, testServer.URL+"/api/requests/"+stored.RequestID, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT request: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var updated requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &updated); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if updated.UrgencyLevel != requests.UrgencyCritical {
		t.Errorf("expected urgency critical after update, got %q", updated.UrgencyLevel)
	}
	if updated.PeopleAffected != 75 {
		t.Errorf("expected people_affected 75, got %d", updated.PeopleAffected)
	}
	if updated.Title != stored.Title {
		t.Errorf("expected title untouched, got %q", updated.Title)
	}
}

// TestDeleteRequest_AdminOnly verifies only admins can soft-delete and the row
// survives as an inactive tombstone.
func TestDeleteRequest_AdminOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)
	volunteerClient := authClient(t, "volunteer")
	adminClient := authClient(t, "admin")

	deleteURL := testServer.URL + "/api/requests/" + stored.RequestID

	req, _ := http.NewRequest(http.MethodDelete, deleteURL, nil)
	resp, err := volunteerClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE as volunteer: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d; body: %s", resp.StatusCode, body)
	}

	req, _ = http.NewRequest(http.MethodDelete, deleteURL, nil)
	resp, err = adminClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE as admin: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin delete, got %d; body: %s", resp.StatusCode, body)
	}

	var envelope requests.APIResponse
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if !envelope.Success || !strings.Contains(envelope.Message, "deleted successfully") {
		t.Errorf("unexpected delete envelope: %+v", envelope)
	}

	// The row stays fetchable by ID, flagged inactive.
	getResp, err := http.Get(testServer.URL + "/api/requests/" + stored.RequestID)
	if err != nil {
		t.Fatalf("GET after delete: %v", err)
	}
	getBody := readBody(t, getResp)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching tombstone, got %d; body: %s", getResp.StatusCode, getBody)
	}
	var got requests.RequestResponse
	if err := json.Unmarshal([]byte(getBody), &got); err != nil {
		t.Fatalf("invalid JSON body: %s", getBody)
	}
	if got.IsActive {
		t.Error("expected is_active false after delete")
	}
}

// TestVerifyRequest_Admin verifies the admin verification stamp.
func TestVerifyRequest_Admin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	stored := createTestRequest(t, nil)
	adminClient := authClient(t, "admin")

	resp, err := adminClient.Post(testServer.URL+"/api/requests/"+stored.RequestID+"/verify", "application/json", nil)
	if err != nil {
		t.Fatalf("POST verify: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var verified requests.RequestResponse
	if err := json.Unmarshal([]byte(body), &verified); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if !verified.IsVerified {
		t.Error("expected is_verified true after verification")
	}
}

// TestStatistics verifies the summary envelope and its invariants.
func TestStatistics(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	createTestRequest(t, nil)

	resp, err := http.Get(testServer.URL + "/api/statistics")
	if err != nil {
		t.Fatalf("GET statistics: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Success bool                `json:"success"`
		Message string              `json:"message"`
		Data    requests.Statistics `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if !envelope.Success {
		t.Error("expected success true")
	}
	if envelope.Message != "Statistics retrieved successfully" {
		t.Errorf("unexpected message: %q", envelope.Message)
	}
	if envelope.Data.TotalRequests < 1 {
		t.Errorf("expected at least one active request, got %d", envelope.Data.TotalRequests)
	}
	if envelope.Data.CompletionRate < 0 || envelope.Data.CompletionRate > 100 {
		t.Errorf("completion_rate out of range: %f", envelope.Data.CompletionRate)
	}
	if len(envelope.Data.TypeDistribution) == 0 {
		t.Error("expected a non-empty type distribution")
	}
}

// TestMapView verifies viewport filtering and proximity clustering: three rows a
// couple hundred meters apart collapse into one cluster.
func TestMapView(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	// Remote corner of the map with a tight viewport to keep other rows out.
	ids := map[string]bool{}
	for i, delta := range []float64{0, 0.0018, -0.0018} {
		level := requests.UrgencyLow
		if i == 0 {
			level = requests.UrgencyHigh
		}
		row := createTestRequest(t, func(r *requests.DisasterRequest) {
			r.Latitude = 20.7100 + delta
			r.Longitude = 83.2500
			r.UrgencyLevel = level
		})
		ids[row.RequestID] = true
	}

	u := testServer.URL + "/api/requests/map/view?lat_min=20.70&lat_max=20.72&lng_min=83.24&lng_max=83.26"
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET map view: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var view requests.MapViewResponse
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}

	if view.Total != 3 {
		t.Fatalf("expected 3 rows in the viewport, got %d", view.Total)
	}
	if len(view.Clusters) != 1 {
		t.Fatalf("expected one cluster, got %d", len(view.Clusters))
	}

	cluster := view.Clusters[0]
	if cluster.Count != 3 {
		t.Errorf("expected cluster of 3, got %d", cluster.Count)
	}
	for id := range ids {
		found := false
		for _, cid := range cluster.RequestIDs {
			if cid == id {
				found = true
			}
		}
		if !found {
			t.Errorf("expected request %s in the cluster", id)
		}
	}
	if cluster.TopUrgency != requests.UrgencyHigh {
		t.Errorf("expected top_urgency high, got %q", cluster.TopUrgency)
	}
	if cluster.Centroid.Lat < 20.70 || cluster.Centroid.Lat > 20.72 {
		t.Errorf("centroid latitude outside the viewport: %f", cluster.Centroid.Lat)
	}
}

// TestMapView_PartialBounds verifies the all-or-nothing viewport contract.
func TestMapView_PartialBounds(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	resp, err := http.Get(testServer.URL + "/api/requests/map/view?lat_min=20.70")
	if err != nil {
		t.Fatalf("GET map view: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "provided together") {
		t.Errorf("expected partial-bounds message, got: %q", body)
	}
}

// TestClassifyEndpoint verifies the standalone classification endpoint uses the
// keyword provider configured for tests.
func TestClassifyEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	resp := postJSON(t, "/api/requests/classify", map[string]string{
		"title":       "People trapped on rooftops",
		"description": "Families are trapped by rising water and need rescue boats before nightfall.",
	})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	var result struct {
		UrgencyLevel string `json:"urgency_level"`
		Source       string `json:"source"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if result.UrgencyLevel != "high" {
		t.Errorf("expected high, got %q", result.UrgencyLevel)
	}
	if result.Source != "keyword" {
		t.Errorf("expected keyword source, got %q", result.Source)
	}

	empty := postJSON(t, "/api/requests/classify", map[string]string{})
	emptyBody := readBody(t, empty)
	if empty.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty input, got %d; body: %s", empty.StatusCode, emptyBody)
	}
}

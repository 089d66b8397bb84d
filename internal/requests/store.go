package requests

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/geo"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrNotAssignable  = errors.New("request is not pending")
	ErrNotCompletable = errors.New("request is not in progress")
)

// urgencyRankSQL orders text urgency values by severity. A plain ORDER BY
// on the column would sort alphabetically and put "high" above "critical".
const urgencyRankSQL = "CASE urgency_level WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END"

// Store is the persistence layer for disaster requests.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// ListQuery narrows and orders the paginated listing. Zero values mean
// "no filter" for the string fields and nil means "no filter" for the
// boolean ones.
type ListQuery struct {
	RequestType     string
	UrgencyLevel    string
	Status          string
	IsVerified      *bool
	IsActive        *bool
	DisasterEventID string
	SortBy          string
	SortOrder       string
	Page            int
	Size            int
}

func (s *Store) Create(ctx context.Context, req *DisasterRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*DisasterRequest, error) {
	var req DisasterRequest
	err := s.db.WithContext(ctx).First(&req, "request_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&DisasterRequest{})
	if q.RequestType != "" {
		tx = tx.Where("request_type = ?", q.RequestType)
	}
	if q.UrgencyLevel != "" {
		tx = tx.Where("urgency_level = ?", q.UrgencyLevel)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.IsVerified != nil {
		tx = tx.Where("is_verified = ?", *q.IsVerified)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if q.DisasterEventID != "" {
		tx = tx.Where("disaster_event_id = ?", q.DisasterEventID)
	}
	return tx
}

var sortColumns = map[string]string{
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"urgency_level":   urgencyRankSQL,
	"people_affected": "people_affected",
	"estimated_cost":  "estimated_cost",
	"quality_score":   "quality_score",
}

// List returns one page of requests plus the total row count for the
// same filters.
func (s *Store) List(ctx context.Context, q ListQuery) ([]DisasterRequest, int64, error) {
	var total int64
	if err := s.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	order := col + " DESC"
	if q.SortOrder == "asc" {
		order = col + " ASC"
	}
	if q.SortBy == "urgency_level" {
		// The rank expression already runs most-urgent-first, so the
		// directions swap.
		order = urgencyRankSQL
		if q.SortOrder == "asc" {
			order = urgencyRankSQL + " DESC"
		}
	}

	offset := (q.Page - 1) * q.Size
	if offset < 0 {
		offset = 0
	}

	var rows []DisasterRequest
	err := s.filtered(ctx, q).Order(order).Offset(offset).Limit(q.Size).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists every field of req.
func (s *Store) Update(ctx context.Context, req *DisasterRequest) error {
	return s.db.WithContext(ctx).Save(req).Error
}

// SoftDelete hides a request from every read path without dropping the row.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&DisasterRequest{}).
		Where("request_id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NearbyActive finds active requests within radiusKm of the center,
// nearest first, along with the distance to each. The bounding box keeps
// the query on indexes; the exact distance pass then drops the box
// corners, so truncation only happens after every true match is known.
func (s *Store) NearbyActive(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]DisasterRequest, []float64, error) {
	box := geo.BoundingBox(lat, lng, radiusKm)

	var candidates []DisasterRequest
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Find(&candidates).Error
	if err != nil {
		return nil, nil, err
	}

	type match struct {
		req  DisasterRequest
		dist float64
	}
	matches := make([]match, 0, len(candidates))
	for _, c := range candidates {
		d := geo.Distance(lat, lng, c.Latitude, c.Longitude)
		if d <= radiusKm {
			matches = append(matches, match{req: c, dist: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	reqs := make([]DisasterRequest, len(matches))
	dists := make([]float64, len(matches))
	for i, m := range matches {
		reqs[i] = m.req
		dists[i] = m.dist
	}
	return reqs, dists, nil
}

// Urgent lists pending high and critical requests, most urgent first,
// oldest first within a level so long-waiting requests surface.
func (s *Store) Urgent(ctx context.Context, limit int) ([]DisasterRequest, error) {
	var rows []DisasterRequest
	err := s.db.WithContext(ctx).
		Where("urgency_level IN ?", []string{string(UrgencyHigh), string(UrgencyCritical)}).
		Where("status = ?", string(StatusPending)).
		Where("is_active = ?", true).
		Order(urgencyRankSQL + ", created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Recent lists active requests created in the last N hours, newest first.
func (s *Store) Recent(ctx context.Context, hours, limit int) ([]DisasterRequest, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var rows []DisasterRequest
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Assign hands a pending request to a volunteer or NGO and moves it to
// in_progress.
func (s *Store) Assign(ctx context.Context, id, assigneeName, assigneeContact string) (*DisasterRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrNotAssignable
	}

	req.AssignedTo = assigneeName
	req.AssignedContact = assigneeContact
	req.Status = StatusInProgress
	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// Complete closes out an in-progress request.
func (s *Store) Complete(ctx context.Context, id string) (*DisasterRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusInProgress {
		return nil, ErrNotCompletable
	}

	req.Status = StatusCompleted
	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// Verify marks a request as reviewed by an admin.
func (s *Store) Verify(ctx context.Context, id string) (*DisasterRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.IsVerified = true
	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// ActiveInBox returns every active request inside a viewport, newest
// first, for the clustered map view. The fixed ordering keeps the greedy
// clustering downstream reproducible between calls.
func (s *Store) ActiveInBox(ctx context.Context, box geo.Box) ([]DisasterRequest, error) {
	var rows []DisasterRequest
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Statistics summarises the active request pool.
type Statistics struct {
	TotalRequests     int64            `json:"total_requests"`
	PendingRequests   int64            `json:"pending_requests"`
	CompletedRequests int64            `json:"completed_requests"`
	UrgentRequests    int64            `json:"urgent_requests"`
	CompletionRate    float64          `json:"completion_rate"`
	TypeDistribution  map[string]int64 `json:"type_distribution"`
}

func (s *Store) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{TypeDistribution: map[string]int64{}}

	active := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&DisasterRequest{}).Where("is_active = ?", true)
	}

	if err := active().Count(&stats.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := active().Where("status = ?", string(StatusPending)).Count(&stats.PendingRequests).Error; err != nil {
		return nil, err
	}
	if err := active().Where("status = ?", string(StatusCompleted)).Count(&stats.CompletedRequests).Error; err != nil {
		return nil, err
	}
	err := active().
		Where("urgency_level IN ?", []string{string(UrgencyHigh), string(UrgencyCritical)}).
		Where("status = ?", string(StatusPending)).
		Count(&stats.UrgentRequests).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalRequests > 0 {
		stats.CompletionRate = float64(stats.CompletedRequests) / float64(stats.TotalRequests) * 100
	}

	rows, err := s.db.WithContext(ctx).
		Raw("SELECT request_type, COUNT(*) FROM relief.requests WHERE is_active = true GROUP BY request_type").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var requestType string
		var count int64
		if err := rows.Scan(&requestType, &count); err != nil {
			return nil, err
		}
		stats.TypeDistribution[requestType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// FindDuplicateCandidates returns recent same-type, same-phone requests
// inside the search box, projected down to the fields the duplicate
// detector compares.
func (s *Store) FindDuplicateCandidates(ctx context.Context, q filters.CandidateQuery) ([]filters.Candidate, error) {
	tx := s.db.WithContext(ctx).
		Model(&DisasterRequest{}).
		Select("description", "contact_name", "address").
		Where("is_active = ?", true).
		Where("request_type = ?", q.RequestType).
		Where("contact_phone = ?", q.ContactPhone).
		Where("created_at >= ?", q.Since).
		Where("latitude BETWEEN ? AND ?", q.Box.MinLat, q.Box.MaxLat).
		Where("longitude BETWEEN ? AND ?", q.Box.MinLng, q.Box.MaxLng)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []DisasterRequest
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]filters.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, filters.Candidate{
			Description: r.Description,
			ContactName: r.ContactName,
			Address:     r.Address,
		})
	}
	return out, nil
}

// SweepStale deactivates completed and cancelled requests that have not
// been touched for olderThan. Returns the number of rows swept.
func (s *Store) SweepStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).Model(&DisasterRequest{}).
		Where("is_active = ?", true).
		Where("status IN ?", []string{string(StatusCompleted), string(StatusCancelled)}).
		Where("updated_at < ?", time.Now().UTC().Add(-olderThan)).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

package filters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anas-fareedi/disaster-management/internal/geo"
)

// Candidate is the projection of a stored request the detector compares
// against. Keeping it this narrow keeps the persistence layer swappable.
type Candidate struct {
	Description string
	ContactName string
	Address     string
}

// CandidateQuery asks the store for active records matching every filter:
// same type, same contact phone, created at or after Since, coordinates
// inside Box, at most Limit rows.
type CandidateQuery struct {
	RequestType  string
	ContactPhone string
	Since        time.Time
	Box          geo.Box
	Limit        int
}

// CandidateFinder is the single store capability the detector consumes.
type CandidateFinder interface {
	FindDuplicateCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// DuplicateDetector decides whether a submission repeats an existing active
// request. The pre-filter requires the SAME contact phone on purpose:
// distinct people reporting one incident is corroboration we want, not
// duplication. Only resubmission by the same contact is collapsed.
type DuplicateDetector struct {
	store CandidateFinder

	RadiusKm      float64
	Window        time.Duration
	MaxCandidates int
}

// NewDuplicateDetector returns a detector with the production defaults:
// 1km radius, 24 hour window, 10 candidate cap.
func NewDuplicateDetector(store CandidateFinder) *DuplicateDetector {
	return &DuplicateDetector{
		store:         store,
		RadiusKm:      1.0,
		Window:        24 * time.Hour,
		MaxCandidates: 10,
	}
}

// IsDuplicate fetches same-type same-phone records created inside the time
// window and the bounding box around the submission, then declares a
// duplicate when any of them has near-identical description text (Jaccard
// > 0.8) or an exactly matching contact name and address (case-insensitive).
//
// The check reads without any transactional tie to the subsequent insert, so
// two near-simultaneous submissions can both pass. Accepted limitation;
// moderation is the backstop.
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, sub Submission) (bool, error) {
	q := CandidateQuery{
		RequestType:  sub.RequestType,
		ContactPhone: sub.ContactPhone,
		Since:        time.Now().UTC().Add(-d.Window),
		Box:          geo.BoundingBox(sub.Latitude, sub.Longitude, d.RadiusKm),
		Limit:        d.MaxCandidates,
	}

	candidates, err := d.store.FindDuplicateCandidates(ctx, q)
	if err != nil {
		return false, fmt.Errorf("querying duplicate candidates: %w", err)
	}

	for _, c := range candidates {
		if TextSimilarity(sub.Description, c.Description) > 0.8 {
			return true, nil
		}
		if strings.EqualFold(sub.ContactName, c.ContactName) &&
			strings.EqualFold(sub.Address, c.Address) {
			return true, nil
		}
	}

	return false, nil
}

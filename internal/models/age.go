package models

import "time"

// AgeBucket classifies properties by time since creation.
type AgeBucket string

const (
	AgeNew    AgeBucket = "new"    // created within the last 30 days
	AgeRecent AgeBucket = "recent" // created 31-180 days ago
	AgeOlder  AgeBucket = "older"  // created more than 180 days ago
)

// AgeBounds returns the created_at range for a bucket relative to now.
// A nil bound means the range is open on that side. Boundaries are computed
// per call, not cached.
func AgeBounds(bucket AgeBucket, now time.Time) (after, before *time.Time) {
	thirty := now.AddDate(0, 0, -30)
	oneEighty := now.AddDate(0, 0, -180)

	switch bucket {
	case AgeNew:
		return &thirty, nil
	case AgeRecent:
		return &oneEighty, &thirty
	case AgeOlder:
		return nil, &oneEighty
	}
	return nil, nil
}

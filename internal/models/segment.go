package models

import "time"

// Segment is one calendar month of the horizon intersected with the
// projection's [startDate, endDate] — the unit of processing and caching.
type Segment struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time

	Events []TimelineEvent

	// AffectedAccountIDs is the union of every event's AccountID plus, for
	// transfer events, FromAccountID/ToAccountID.
	AffectedAccountIDs map[string]bool

	CacheKey string
	Cached   bool
}

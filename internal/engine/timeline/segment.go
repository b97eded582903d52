package timeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"projector/internal/models"
)

// segmentEvents walks an already-sorted event slice once, grouping it into
// startOf(month)..endOf(month) windows intersected with [startDate, endDate].
func segmentEvents(events []models.TimelineEvent, startDate, endDate time.Time) []models.Segment {
	var segments []models.Segment

	monthStart := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, startDate.Location())
	for !monthStart.After(endDate) {
		segStart := monthStart
		if segStart.Before(startDate) {
			segStart = startDate
		}
		monthEnd := lastInstantOfMonth(monthStart)
		segEnd := monthEnd
		if segEnd.After(endDate) {
			segEnd = endDate
		}

		seg := models.Segment{
			ID:                 segStart.Format("2006-01"),
			StartDate:          segStart,
			EndDate:            segEnd,
			AffectedAccountIDs: make(map[string]bool),
		}
		segments = append(segments, seg)

		monthStart = monthStart.AddDate(0, 1, 0)
	}

	for _, ev := range events {
		idx := segmentIndexForDate(segments, ev.Date)
		if idx < 0 {
			continue
		}
		segments[idx].Events = append(segments[idx].Events, ev)
		segments[idx].AffectedAccountIDs[ev.AccountID] = true
		if ev.FromAccountID != "" {
			segments[idx].AffectedAccountIDs[ev.FromAccountID] = true
		}
		if ev.ToAccountID != "" {
			segments[idx].AffectedAccountIDs[ev.ToAccountID] = true
		}
	}

	return segments
}

func lastInstantOfMonth(monthStart time.Time) time.Time {
	nextMonth := monthStart.AddDate(0, 1, 0)
	return nextMonth.Add(-time.Nanosecond)
}

// segmentIndexForDate finds the segment whose [StartDate, EndDate] window
// contains d, via binary search over the (already date-ordered) segments.
func segmentIndexForDate(segments []models.Segment, d time.Time) int {
	day := dayOnly(d)
	i := sort.Search(len(segments), func(i int) bool {
		return !dayOnly(segments[i].EndDate).Before(day)
	})
	if i < len(segments) && !day.Before(dayOnly(segments[i].StartDate)) {
		return i
	}
	return -1
}

// computeCacheKey fills Segment.CacheKey: SHA256 of event
// count, sorted min/max event date, and the joined (type_epochMillis_
// accountId) tuples, truncated to 16 hex chars and prefixed with the count
// and date range for quick human inspection.
func computeCacheKey(seg *models.Segment) {
	if len(seg.Events) == 0 {
		seg.CacheKey = fmt.Sprintf("0_%d_%d_", seg.StartDate.UnixMilli(), seg.EndDate.UnixMilli())
		return
	}

	minDate, maxDate := seg.Events[0].Date, seg.Events[0].Date
	tuples := make([]string, 0, len(seg.Events))
	for _, ev := range seg.Events {
		if ev.Date.Before(minDate) {
			minDate = ev.Date
		}
		if ev.Date.After(maxDate) {
			maxDate = ev.Date
		}
		tuples = append(tuples, fmt.Sprintf("%s_%d_%s", ev.Type, ev.Date.UnixMilli(), ev.AccountID))
	}
	sort.Strings(tuples)

	h := sha256.New()
	fmt.Fprintf(h, "%d", len(seg.Events))
	fmt.Fprintf(h, "%d", minDate.UnixMilli())
	fmt.Fprintf(h, "%d", maxDate.UnixMilli())
	h.Write([]byte(strings.Join(tuples, "|")))
	digest := hex.EncodeToString(h.Sum(nil))[:16]

	seg.CacheKey = fmt.Sprintf("%d_%d_%d_%s", len(seg.Events), minDate.UnixMilli(), maxDate.UnixMilli(), digest)
}

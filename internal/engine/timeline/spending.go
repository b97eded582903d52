package timeline

import (
	"time"

	"projector/internal/engine/errs"
	"projector/internal/models"
)

// generateSpendingTrackerEvents computes period boundaries for one spending
// category across the full horizon and emits one event per period, at
// periodEnd (noon UTC, to dodge timezone-shift day-boundary defects). Periods
// whose end precedes the category's configured startDate are emitted
// "virtual" — they let the Spending Tracker Manager walk its carry/threshold
// state forward from the start of the horizon so replay is correct, without
// emitting a remainder activity — and firstSpendingTracker attaches only to
// the first non-virtual period.
func (g *generator) generateSpendingTrackerEvents(a *models.Account, cat *models.SpendingCategoryConfig) ([]models.TimelineEvent, error) {
	windows, err := computePeriodBoundaries(cat.Interval, cat.IntervalEveryN, g.startDate, g.endDate)
	if err != nil {
		return nil, err
	}

	var out []models.TimelineEvent
	first := true
	for _, w := range windows {
		virtual := w.end.Before(cat.StartDate)
		firstReal := !virtual && first
		if !virtual {
			first = false
		}

		date := time.Date(w.end.Year(), w.end.Month(), w.end.Day(), 12, 0, 0, 0, time.UTC)

		out = append(out, models.TimelineEvent{
			ID:                   cat.ID + "_" + w.end.Format("2006-01-02"),
			Type:                 models.SpendingTrackerEvent,
			Date:                 date,
			AccountID:            a.ID,
			Priority:             models.SpendingTrackerEvent.Priority(),
			InsertionSeq:         g.nextSeq(),
			CategoryID:           cat.ID,
			PeriodStart:          w.start,
			PeriodEnd:            w.end,
			FirstSpendingTracker: firstReal,
			Virtual:              virtual,
		})
	}

	return out, nil
}

type periodWindow struct {
	start time.Time
	end   time.Time
}

// computePeriodBoundaries walks consecutive [start, end] windows of length
// interval*everyN from horizonStart to horizonEnd, each window's end being
// one day before the next window's start.
func computePeriodBoundaries(interval models.Period, everyN int, horizonStart, horizonEnd time.Time) ([]periodWindow, error) {
	var out []periodWindow

	occurrences := 0
	start := horizonStart
	for !start.After(horizonEnd) {
		occurrences++
		if occurrences > errs.MaxOccurrences {
			return nil, &errs.GeneratorOverflow{Source: "spending tracker periods", Count: occurrences}
		}

		next := models.NextDate(start, interval, everyN)
		end := next.AddDate(0, 0, -1)
		if end.After(horizonEnd) {
			end = horizonEnd
		}
		out = append(out, periodWindow{start: start, end: end})

		start = next
	}

	return out, nil
}

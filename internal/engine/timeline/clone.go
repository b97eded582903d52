package timeline

import (
	"context"

	"projector/internal/engine/errs"
	"projector/internal/engine/variables"
	"projector/internal/models"
)

// Clone returns a copy of the timeline with every Monte Carlo-tagged event
// redrawn against mc: bill/billTransfer amounts replay their original
// anniversary count against fresh samples (starting from the already-
// resolved pre-inflation BaseAmount), and interest events redraw their APR
// directly. Event identity (ID, date, priority, insertion order) is
// preserved — only the stochastic payload changes.
func (t *Timeline) Clone(ctx context.Context, mc variables.SampleProvider) (*Timeline, error) {
	events := make([]models.TimelineEvent, len(t.Events))
	copy(events, t.Events)

	for i := range events {
		ev := &events[i]
		if ev.MonteCarloSampleType == "" {
			continue
		}

		switch ev.Type {
		case models.InterestEvent:
			sample, err := mc.Sample(ctx, ev.MonteCarloSampleType, ev.Date)
			if err != nil {
				return nil, &errs.NumericError{AccountID: ev.AccountID, Detail: err.Error()}
			}
			ev.APR = sample

		case models.BillEvent, models.BillTransferEvent:
			result := ev.BaseAmount
			for n := 0; n < ev.MCAnniversaryCount; n++ {
				sample, err := mc.Sample(ctx, ev.MonteCarloSampleType, ev.Date)
				if err != nil {
					return nil, &errs.NumericError{AccountID: ev.AccountID, Detail: err.Error()}
				}
				result *= 1 + sample
			}
			ev.Amount = models.Amount(result)
		}
	}

	segments := make([]models.Segment, len(t.Segments))
	copy(segments, t.Segments)
	remapSegmentEvents(segments, events)

	return &Timeline{Events: events, Segments: segments}, nil
}

// remapSegmentEvents repopulates each cloned segment's Events slice from the
// corresponding range of the cloned (re-sampled) event slice, keyed by the
// original segment boundaries — segments partition Events contiguously by
// construction (segmentEvents), so a single pass suffices.
func remapSegmentEvents(segments []models.Segment, events []models.TimelineEvent) {
	byID := make(map[string][]models.TimelineEvent, len(segments))
	cursor := 0
	for _, seg := range segments {
		n := len(seg.Events)
		byID[seg.ID] = events[cursor : cursor+n]
		cursor += n
	}
	for i := range segments {
		segments[i].Events = byID[segments[i].ID]
	}
}

// Package pushpull implements the Push/Pull Handler: automatic
// inter-account liquidity management evaluated at the end of each segment,
// injecting AUTO-PULL/AUTO-PUSH transfer events for the segment to
// reprocess.
package pushpull

import (
	"fmt"
	"time"

	"projector/internal/engine/accounts"
	"projector/internal/engine/balance"
	"projector/internal/models"
)

// Evaluate inspects every pull/push-enabled account's segment balance range
// and returns the transfer events that must be injected into the segment
// before it is reprocessed. nextSeq supplies increasing
// insertion-sequence stamps so injected events sort after the segment's
// original events on the same date.
func Evaluate(mgr *accounts.Manager, tracker *balance.Tracker, segmentStart, today time.Time, nextSeq func() int) []models.TimelineEvent {
	var out []models.TimelineEvent

	for _, a := range mgr.All() {
		if !a.PerformsPulls && !a.PerformsPushes {
			continue
		}
		if segmentStart.Before(today) {
			continue
		}
		if a.PushStart != nil && segmentStart.Before(*a.PushStart) {
			continue
		}
		if a.PushEnd != nil && segmentStart.After(*a.PushEnd) {
			continue
		}

		min, _ := tracker.Range(a.ID)
		minBalance := floatOr(a.MinimumBalance, 0)
		minPull := floatOr(a.MinimumPullAmount, 0)

		if a.PerformsPulls && min < minBalance {
			target := minBalance - min + minPull
			out = append(out, pullEvents(mgr, tracker, a, target, segmentStart, nextSeq)...)
		}

		if a.PerformsPushes && min > minBalance+minPull*4 {
			pushAmount := min - minBalance - minPull*4
			if dest, ok := mgr.ByName(a.PushAccount); ok {
				tag := fmt.Sprintf("AUTO-PUSH_%s_%d", a.ID, segmentStart.UnixMilli())
				out = append(out, transferEvent(tag, a.ID, dest.ID, pushAmount, segmentStart, nextSeq()))
			}
		}
	}

	return out
}

// pullEvents repeatedly selects the lowest-priority pullable account whose
// balance exceeds its own minimumBalance, pulling the lesser of the
// remaining target and that account's available surplus, until the target
// is met or no candidate remains.
func pullEvents(mgr *accounts.Manager, tracker *balance.Tracker, dest *models.Account, target float64, segmentStart time.Time, nextSeq func() int) []models.TimelineEvent {
	var out []models.TimelineEvent
	remaining := target

	for _, src := range mgr.PullCandidates() {
		if remaining <= 0 {
			break
		}
		if src.ID == dest.ID {
			continue
		}

		srcMinBalance := floatOr(src.MinimumBalance, 0)
		available := tracker.GetBalance(src.ID) - srcMinBalance
		if available <= 0 {
			continue
		}

		amount := remaining
		if available < amount {
			amount = available
		}

		tag := fmt.Sprintf("AUTO-PULL_%s_%d", dest.ID, segmentStart.UnixMilli())
		out = append(out, transferEvent(tag, src.ID, dest.ID, amount, segmentStart, nextSeq()))
		remaining -= amount
	}

	return out
}

func transferEvent(id, fromID, toID string, amount float64, date time.Time, seq int) models.TimelineEvent {
	return models.TimelineEvent{
		ID:            id,
		Type:          models.ActivityTransferEvent,
		Date:          date,
		AccountID:     fromID,
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        models.Amount(amount),
		Category:      "Ignore.Transfer",
		Name:          id,
		Priority:      models.ActivityTransferEvent.Priority(),
		InsertionSeq:  seq,
	}
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

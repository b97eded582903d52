// Package balance implements the Balance Tracker: per-account
// balances, interest state, per-segment min/max ranges, and the
// processed-event set idempotency check, with snapshot/restore for the
// Push/Pull Handler's checkpoint/retry.
package balance

import (
	"math"

	"projector/internal/engine/errs"
)

// InterestState tracks which Interest record is currently active for an
// account and its accumulated taxable interest for the year.
type InterestState struct {
	ActiveInterestID           string
	AccumulatedTaxableInterest float64
}

func (s InterestState) clone() InterestState { return s }

// Tracker holds accountId -> balance, accountId -> InterestState, and
// per-segment min/max of day-end balances, plus the processed-event set
// used for idempotency checks across push/pull reprocessing.
type Tracker struct {
	balances  map[string]float64
	interest  map[string]InterestState
	segMin    map[string]float64
	segMax    map[string]float64
	processed map[string]bool
}

// New initializes a Tracker from starting account balances.
func New(startingBalances map[string]float64) *Tracker {
	t := &Tracker{
		balances:  make(map[string]float64, len(startingBalances)),
		interest:  make(map[string]InterestState),
		segMin:    make(map[string]float64),
		segMax:    make(map[string]float64),
		processed: make(map[string]bool),
	}
	for id, bal := range startingBalances {
		t.balances[id] = bal
		t.segMin[id] = bal
		t.segMax[id] = bal
	}
	return t
}

// GetBalance returns an account's current balance.
func (t *Tracker) GetBalance(accountID string) float64 {
	return t.balances[accountID]
}

// SetBalance overwrites an account's balance directly (used for initial
// seeding and restore; segment processing should prefer AdjustBalance).
func (t *Tracker) SetBalance(accountID string, value float64) {
	t.balances[accountID] = value
	t.trackRange(accountID, value)
}

// AdjustBalance applies a signed delta to an account's balance, rejecting
// NaN/infinite results with a NumericError.
func (t *Tracker) AdjustBalance(accountID string, delta float64) (float64, error) {
	newBalance := t.balances[accountID] + delta
	if math.IsNaN(newBalance) || math.IsInf(newBalance, 0) {
		return 0, &errs.NumericError{AccountID: accountID, Detail: "balance became NaN/Inf"}
	}
	t.balances[accountID] = newBalance
	t.trackRange(accountID, newBalance)
	return newBalance, nil
}

func (t *Tracker) trackRange(accountID string, value float64) {
	if min, ok := t.segMin[accountID]; !ok || value < min {
		t.segMin[accountID] = value
	}
	if max, ok := t.segMax[accountID]; !ok || value > max {
		t.segMax[accountID] = value
	}
}

// BeginSegment resets the min/max tracking window for the given accounts to
// their current balance, ready to observe a new segment's day-end swings.
func (t *Tracker) BeginSegment(accountIDs []string) {
	for _, id := range accountIDs {
		bal := t.balances[id]
		t.segMin[id] = bal
		t.segMax[id] = bal
	}
}

// Range returns an account's segment-window [min, max] of day-end balances,
// consumed by the Push/Pull Handler.
func (t *Tracker) Range(accountID string) (min, max float64) {
	return t.segMin[accountID], t.segMax[accountID]
}

// InterestState returns an account's interest bookkeeping, zero-valued if
// none has been recorded yet.
func (t *Tracker) InterestState(accountID string) InterestState {
	return t.interest[accountID]
}

// SetInterestState replaces an account's interest bookkeeping.
func (t *Tracker) SetInterestState(accountID string, state InterestState) {
	t.interest[accountID] = state
}

// MarkProcessed records an event id as applied, returning false if it was
// already marked, so a segment reprocessed after a Push/Pull retry does not
// double-apply events it already handled.
func (t *Tracker) MarkProcessed(eventID string) bool {
	if t.processed[eventID] {
		return false
	}
	t.processed[eventID] = true
	return true
}

// Snapshot is a deep copy of all numeric/id-set state, taken at segment
// entry so the Push/Pull Handler can restore and reprocess.
type Snapshot struct {
	balances  map[string]float64
	interest  map[string]InterestState
	segMin    map[string]float64
	segMax    map[string]float64
	processed map[string]bool
}

// Snapshot captures the tracker's current state.
func (t *Tracker) Snapshot() *Snapshot {
	return &Snapshot{
		balances:  cloneFloatMap(t.balances),
		interest:  cloneInterestMap(t.interest),
		segMin:    cloneFloatMap(t.segMin),
		segMax:    cloneFloatMap(t.segMax),
		processed: cloneBoolMap(t.processed),
	}
}

// Restore reverts the tracker to a previously captured Snapshot.
func (t *Tracker) Restore(snap *Snapshot) {
	t.balances = cloneFloatMap(snap.balances)
	t.interest = cloneInterestMap(snap.interest)
	t.segMin = cloneFloatMap(snap.segMin)
	t.segMax = cloneFloatMap(snap.segMax)
	t.processed = cloneBoolMap(snap.processed)
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInterestMap(m map[string]InterestState) map[string]InterestState {
	out := make(map[string]InterestState, len(m))
	for k, v := range m {
		out[k] = v.clone()
	}
	return out
}

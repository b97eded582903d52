// Package spending implements the Spending Tracker Manager:
// per-category carry balance, threshold inflation (with threshold-change
// overrides), period spending accumulation, and carry-forward at period
// boundaries.
package spending

import (
	"math"
	"time"

	"projector/internal/models"
)

// Manager holds one SpendingCategoryState per configured category, plus
// the engine's start date used as the default inflation reference date.
type Manager struct {
	configs     map[string]*models.SpendingCategoryConfig
	state       map[string]models.SpendingCategoryState
	engineStart time.Time
}

// New builds a Manager from every account's spending categories.
func New(categories []*models.SpendingCategoryConfig, engineStart time.Time) *Manager {
	m := &Manager{
		configs:     make(map[string]*models.SpendingCategoryConfig, len(categories)),
		state:       make(map[string]models.SpendingCategoryState, len(categories)),
		engineStart: engineStart,
	}
	for _, c := range categories {
		m.configs[c.ID] = c
		m.state[c.ID] = models.SpendingCategoryState{}
	}
	return m
}

// ThresholdAt resolves the base threshold in effect on date d, applying the
// latest thresholdChange at or before d and annual inflation since that
// change's reference date.
func (m *Manager) ThresholdAt(categoryID string, d time.Time) float64 {
	cfg := m.configs[categoryID]
	if cfg == nil {
		return 0
	}

	base := cfg.Threshold
	referenceDate := m.engineStart
	for _, change := range cfg.ThresholdChanges {
		if !change.Date.After(d) {
			base = change.NewThreshold
			referenceDate = change.Date
		}
	}

	if cfg.IncreaseBy == 0 {
		return base
	}

	milestones := anniversaryCount(referenceDate, d, cfg.IncreaseByDate)
	return base * math.Pow(1+cfg.IncreaseBy, float64(milestones))
}

// anniversaryCount counts occurrences of anchor's month/day strictly after
// referenceDate and on or before d.
func anniversaryCount(referenceDate, d, anchor time.Time) int {
	count := 0
	for y := referenceDate.Year(); y <= d.Year(); y++ {
		ann := time.Date(y, anchor.Month(), anchor.Day(), 0, 0, 0, 0, referenceDate.Location())
		if ann.After(referenceDate) && !ann.After(d) {
			count++
		}
	}
	return count
}

// EffectiveThreshold is the base threshold plus carry balance, floored at 0.
func (m *Manager) EffectiveThreshold(categoryID string, d time.Time) float64 {
	st := m.state[categoryID]
	eff := m.ThresholdAt(categoryID, d) + st.CarryBalance
	if eff < 0 {
		return 0
	}
	return eff
}

// Remainder is max(0, effectiveThreshold - totalSpent).
func (m *Manager) Remainder(categoryID string, d time.Time) float64 {
	st := m.state[categoryID]
	r := m.EffectiveThreshold(categoryID, d) - st.PeriodSpending
	if r < 0 {
		return 0
	}
	return r
}

// RecordActivity accumulates one activity's signed amount into the
// category's period spending, subtracting the signed amount (expenses are
// negative so subtraction increases periodSpending; refunds decrease it).
// Activities on or before the category's lastProcessedPeriodEnd are
// ignored, preventing double counting across segment boundaries.
func (m *Manager) RecordActivity(categoryID string, amount float64, date time.Time) {
	st, ok := m.state[categoryID]
	if !ok {
		return
	}
	if st.LastProcessedPeriodEnd != nil && !date.After(*st.LastProcessedPeriodEnd) {
		return
	}
	st.PeriodSpending -= amount
	m.state[categoryID] = st
}

// UpdateCarry rolls a category's carry balance forward at period end.
// Callers must record any remainder activity (via RecordActivity) before
// calling UpdateCarry, since the formula consumes the already-updated
// periodSpending — this is what makes "positive carry never persists" an
// emergent property of call order rather than a special case here.
func (m *Manager) UpdateCarry(categoryID string, periodEnd time.Time) {
	cfg := m.configs[categoryID]
	st := m.state[categoryID]
	if cfg == nil {
		return
	}

	base := m.ThresholdAt(categoryID, periodEnd)
	newCarry := st.CarryBalance + (base - st.PeriodSpending)

	if newCarry > 0 && !cfg.CarryOver {
		newCarry = 0
	}
	if newCarry < 0 && !cfg.CarryUnder {
		newCarry = 0
	}

	for _, change := range cfg.ThresholdChanges {
		if change.ResetCarry && sameDay(change.Date, periodEnd) {
			newCarry = 0
		}
	}

	st.CarryBalance = newCarry
	m.state[categoryID] = st
}

// ResetPeriodSpending zeroes a category's accumulated spending for the next
// period.
func (m *Manager) ResetPeriodSpending(categoryID string) {
	st := m.state[categoryID]
	st.PeriodSpending = 0
	m.state[categoryID] = st
}

// MarkPeriodProcessed records periodEnd as the category's last-processed
// period boundary, gating future RecordActivity double-counting.
func (m *Manager) MarkPeriodProcessed(categoryID string, periodEnd time.Time) {
	st := m.state[categoryID]
	end := periodEnd
	st.LastProcessedPeriodEnd = &end
	m.state[categoryID] = st
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Snapshot is a checkpoint shadow mirroring balance.Tracker's
// snapshot/restore protocol.
type Snapshot struct {
	state map[string]models.SpendingCategoryState
}

func (m *Manager) Snapshot() *Snapshot {
	clone := make(map[string]models.SpendingCategoryState, len(m.state))
	for id, st := range m.state {
		clone[id] = st.Clone()
	}
	return &Snapshot{state: clone}
}

func (m *Manager) Restore(snap *Snapshot) {
	clone := make(map[string]models.SpendingCategoryState, len(snap.state))
	for id, st := range snap.state {
		clone[id] = st.Clone()
	}
	m.state = clone
}

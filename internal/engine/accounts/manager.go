// Package accounts implements the Account Manager:
// indexes accounts by id and name, catalogs pull-eligible accounts sorted by
// priority, and exposes retirement configs and the interest-pay account set.
package accounts

import (
	"sort"

	"projector/internal/models"
)

// Manager indexes a fixed set of accounts for one projection. It performs
// lookups only — it never mutates Account.Balance; that is the Balance
// Tracker's job.
type Manager struct {
	byID   map[string]*models.Account
	byName map[string]*models.Account
	order  []*models.Account
}

// New builds a Manager from the input account list. Account pointers alias
// the slice backing array, so callers must not mutate the shape of accounts
// (only Balance, and only via the Balance Tracker) during a projection.
func New(accounts []models.Account) *Manager {
	m := &Manager{
		byID:   make(map[string]*models.Account, len(accounts)),
		byName: make(map[string]*models.Account, len(accounts)),
		order:  make([]*models.Account, len(accounts)),
	}
	for i := range accounts {
		a := &accounts[i]
		m.byID[a.ID] = a
		m.byName[a.Name] = a
		m.order[i] = a
	}
	return m
}

// ByID looks up an account by its stable id.
func (m *Manager) ByID(id string) (*models.Account, bool) {
	a, ok := m.byID[id]
	return a, ok
}

// ByName looks up an account by its display name — the form transfer
// endpoints and payee references use.
func (m *Manager) ByName(name string) (*models.Account, bool) {
	a, ok := m.byName[name]
	return a, ok
}

// All returns every account in input order.
func (m *Manager) All() []*models.Account {
	return m.order
}

// PullCandidates returns accounts eligible to be pulled from — PullPriority
// >= 0 — sorted ascending by priority, so the lowest-priority pullable
// account is selected first.
func (m *Manager) PullCandidates() []*models.Account {
	var candidates []*models.Account
	for _, a := range m.order {
		if a.PullPriority >= 0 {
			candidates = append(candidates, a)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PullPriority < candidates[j].PullPriority
	})
	return candidates
}

// RetirementAccounts returns accounts with a Pension or SocialSecurity
// configuration attached.
func (m *Manager) RetirementAccounts() []*models.Account {
	var out []*models.Account
	for _, a := range m.order {
		if a.Pension != nil || a.SocialSecurity != nil {
			out = append(out, a)
		}
	}
	return out
}

// InterestPayAccounts returns the set of account names referenced by any
// other account's InterestPayAccount field — the accounts the tax event
// treats as the source of taxable-interest tax outflows.
func (m *Manager) InterestPayAccounts() map[string]bool {
	set := make(map[string]bool)
	for _, a := range m.order {
		if a.InterestPayAccount != "" {
			set[a.InterestPayAccount] = true
		}
	}
	return set
}

// TaxEligibleAccounts returns accounts that should receive a
// yearly tax event.
func (m *Manager) TaxEligibleAccounts() []*models.Account {
	interestPay := m.InterestPayAccounts()
	var out []*models.Account
	for _, a := range m.order {
		if a.PerformsPulls || interestPay[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

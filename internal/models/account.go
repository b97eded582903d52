// Package models defines the data shapes the projection engine operates on:
// accounts, their activity/bill/interest schedules, retirement configuration,
// and the consolidated activity stream produced by a projection.
package models

import (
	"time"

	"projector/internal/engine/errs"
)

// AccountType tags the kind of account for behaviors that differ by type
// (loan/credit transfer caps, RMD eligibility, etc).
type AccountType string

const (
	Checking   AccountType = "Checking"
	Savings    AccountType = "Savings"
	Investment AccountType = "Investment"
	Credit     AccountType = "Credit"
	Loan       AccountType = "Loan"
	Retirement AccountType = "Retirement"
)

// Account is a single financial account: identity, starting balance, its
// declarative schedules (Activities, Bills, Interest), and behavioral flags
// that drive taxation, RMDs, and automatic push/pull liquidity management.
//
// Account shape is immutable during a projection; the only field the engine
// mutates is Balance, and only through the balance tracker (internal/engine/balance).
type Account struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    AccountType `json:"type"`
	Balance float64     `json:"balance"`
	Hidden  bool        `json:"hidden"`

	Activities []Activity `json:"activities"`
	Bills      []Bill     `json:"bills"`
	Interests  []Interest `json:"interest"`

	Pension        *Pension        `json:"pension,omitempty"`
	SocialSecurity *SocialSecurity `json:"socialSecurity,omitempty"`

	PullPriority int `json:"pullPriority"` // -1 disables pulling from this account

	InterestTaxRate       float64    `json:"interestTaxRate"`
	WithdrawalTaxRate     float64    `json:"withdrawalTaxRate"`
	EarlyWithdrawlPenalty float64    `json:"earlyWithdrawlPenalty"` // sic, wire contract
	EarlyWithdrawlDate    *time.Time `json:"earlyWithdrawlDate,omitempty"`
	InterestPayAccount    string     `json:"interestPayAccount,omitempty"` // account name

	UsesRMD         bool       `json:"usesRMD"`
	AccountOwnerDOB *time.Time `json:"accountOwnerDOB,omitempty"`
	RMDAccount      string     `json:"rmdAccount,omitempty"` // account name

	MinimumBalance    *float64 `json:"minimumBalance,omitempty"`
	MinimumPullAmount *float64 `json:"minimumPullAmount,omitempty"`

	PerformsPulls  bool       `json:"performsPulls"`
	PerformsPushes bool       `json:"performsPushes"`
	PushStart      *time.Time `json:"pushStart,omitempty"`
	PushEnd        *time.Time `json:"pushEnd,omitempty"`
	PushAccount    string     `json:"pushAccount,omitempty"` // account name

	SpendingCategories []SpendingCategoryConfig `json:"spendingCategories,omitempty"`
}

// Validate checks the push/pull invariant: an account that
// performs pulls or pushes must declare a minimum balance, and a pushing
// account must name a push target.
func (a *Account) Validate() error {
	if (a.PerformsPulls || a.PerformsPushes) && a.MinimumBalance == nil {
		return &errs.ConfigurationError{Msg: "account " + a.Name + ": performsPulls/performsPushes requires minimumBalance"}
	}
	if a.PerformsPushes && a.PushAccount == "" {
		return &errs.ConfigurationError{Msg: "account " + a.Name + ": performsPushes requires pushAccount"}
	}
	return nil
}

package models

import "time"

// EventType tags the TimelineEvent sum type.
type EventType string

const (
	ActivityEvent         EventType = "activity"
	BillEvent             EventType = "bill"
	InterestEvent         EventType = "interest"
	ActivityTransferEvent EventType = "activityTransfer"
	BillTransferEvent     EventType = "billTransfer"
	PensionEvent          EventType = "pension"
	SocialSecurityEvent   EventType = "socialSecurity"
	TaxEvent              EventType = "tax"
	RMDEvent              EventType = "rmd"
	SpendingTrackerEvent  EventType = "spendingTracker"
)

// Priority returns the same-date processing order:
// 0 interest -> 1 activity/activityTransfer -> 2 bill/billTransfer/pension/
// socialSecurity -> 2.5 spendingTracker -> 3 rmd/tax.
func (t EventType) Priority() float64 {
	switch t {
	case InterestEvent:
		return 0
	case ActivityEvent, ActivityTransferEvent:
		return 1
	case BillEvent, BillTransferEvent, PensionEvent, SocialSecurityEvent:
		return 2
	case SpendingTrackerEvent:
		return 2.5
	case RMDEvent, TaxEvent:
		return 3
	default:
		return 9
	}
}

// TimelineEvent is one materialized occurrence of a schedule: a bill
// payment, an interest application, a pension deposit, and so on. Payloads
// not relevant to a given Type are left zero.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Date      time.Time `json:"date"`
	AccountID string    `json:"accountId"`
	Priority  float64   `json:"priority"`

	// insertionSeq breaks same-date/same-priority ties deterministically,
	// by stable insertion order.
	InsertionSeq int `json:"-"`

	// Amount-bearing payload (bill, billTransfer).
	Amount AmountSpec `json:"amount,omitempty"`

	// Activity/Bill backref for firstBill/billId wiring.
	SourceID  string `json:"sourceId,omitempty"`
	FirstBill bool   `json:"firstBill,omitempty"`

	// Interest payload.
	InterestID    string  `json:"interestId,omitempty"`
	APR           float64 `json:"apr,omitempty"`
	Compounded    Period  `json:"compounded,omitempty"`
	FirstInterest bool    `json:"firstInterest,omitempty"`

	// Transfer payload.
	FromAccountID string `json:"fromAccountId,omitempty"`
	ToAccountID   string `json:"toAccountId,omitempty"`

	Category         string `json:"category,omitempty"`
	Name             string `json:"name,omitempty"`
	SpendingCategory string `json:"spendingCategory,omitempty"`
	Flag             bool   `json:"flag,omitempty"`
	FlagColor        string `json:"flagColor,omitempty"`

	// Retirement payload.
	OwnerAge     int  `json:"ownerAge,omitempty"`
	FirstPayment bool `json:"firstPayment,omitempty"`

	// Spending tracker payload.
	CategoryID           string    `json:"categoryId,omitempty"`
	PeriodStart          time.Time `json:"periodStart,omitempty"`
	PeriodEnd            time.Time `json:"periodEnd,omitempty"`
	FirstSpendingTracker bool      `json:"firstSpendingTracker,omitempty"`
	Virtual              bool      `json:"virtual,omitempty"`

	// Symbolic amount marker for transfer-capped half/full resolution.
	Symbolic SymbolicKind `json:"symbolic,omitempty"`

	// Monte Carlo re-sampling metadata.
	// MonteCarloSampleType is empty for deterministically-resolved events.
	// BaseAmount/MCAnniversaryCount let Clone redraw a bill's inflation chain
	// without re-walking its source Bill record.
	MonteCarloSampleType string  `json:"-"`
	BaseAmount           float64 `json:"-"`
	MCAnniversaryCount   int     `json:"-"`
}

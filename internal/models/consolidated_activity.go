package models

import "time"

// ConsolidatedActivity is a single dated, resolved, balance-annotated event
// belonging to exactly one account — the engine's output entity.
// Within one account's stream, date is non-decreasing and
// Balance[k] = Balance[k-1] + Amount[k].
type ConsolidatedActivity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Flag      bool      `json:"flag"`
	FlagColor string    `json:"flagColor,omitempty"`

	IsTransfer bool   `json:"isTransfer"`
	Fro        string `json:"fro,omitempty"` // sic, wire contract
	To         string `json:"to,omitempty"`

	Amount          float64 `json:"amount"`
	AmountIsVariable bool   `json:"amountIsVariable"`
	AmountVariable  string  `json:"amountVariable,omitempty"`

	Date          time.Time `json:"date"`
	DateIsVariable bool     `json:"dateIsVariable"`
	DateVariable  string    `json:"dateVariable,omitempty"`

	Balance float64 `json:"balance"`

	BillID     *string `json:"billId,omitempty"`
	FirstBill  bool    `json:"firstBill"`

	InterestID    *string `json:"interestId,omitempty"`
	FirstInterest bool    `json:"firstInterest"`

	SpendingCategory string `json:"spendingCategory,omitempty"`

	// Priority and insertion order are carried through for downstream
	// sort-stability checks but are not part of the stable wire contract.
	Priority       float64 `json:"-"`
	InsertionOrder int     `json:"-"`
}

// DateString formats the date per the wire contract ("YYYY-MM-DD").
func (c *ConsolidatedActivity) DateString() string {
	return c.Date.Format("2006-01-02")
}

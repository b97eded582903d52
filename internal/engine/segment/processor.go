// Package segment implements the Segment Processor: applies
// every event in a segment, in priority-then-insertion order, producing
// consolidated activities appended to the owning account and updating
// balances via the Balance Tracker.
package segment

import (
	"context"
	"strings"
	"time"

	"projector/internal/engine/accounts"
	"projector/internal/engine/balance"
	"projector/internal/engine/retirement"
	"projector/internal/engine/spending"
	"projector/internal/engine/variables"
	"projector/internal/models"
)

// withdrawalRecord is one taxable withdrawal (RMD or pull-originated
// transfer) dated for the year-over-year tax aggregation handleTax performs.
type withdrawalRecord struct {
	date   time.Time
	amount float64
}

// Processor applies segments against a shared Balance Tracker and Spending
// Tracker Manager, accumulating each account's ConsolidatedActivity stream
// and the year-keyed taxable-interest/withdrawal ledgers the tax event
// consumes.
type Processor struct {
	mgr         *accounts.Manager
	tracker     *balance.Tracker
	spendingMgr *spending.Manager
	resolver    variables.Resolver
	rateTables  models.RateTables
	simulation  string

	activities map[string][]models.ConsolidatedActivity

	taxableInterestByYear map[string]map[int]float64
	withdrawalsByYear     map[string]map[int][]withdrawalRecord
}

// New builds a Processor sharing the given collaborators across every
// segment of one projection (or Monte Carlo iteration).
func New(mgr *accounts.Manager, tracker *balance.Tracker, spendingMgr *spending.Manager, resolver variables.Resolver, rateTables models.RateTables, simulation string) *Processor {
	return &Processor{
		mgr:                   mgr,
		tracker:               tracker,
		spendingMgr:           spendingMgr,
		resolver:              resolver,
		rateTables:            rateTables,
		simulation:            simulation,
		activities:            make(map[string][]models.ConsolidatedActivity),
		taxableInterestByYear: make(map[string]map[int]float64),
		withdrawalsByYear:     make(map[string]map[int][]withdrawalRecord),
	}
}

// Activities returns the accumulated ConsolidatedActivity stream for one
// account, in append order (already chronologically non-decreasing by
// construction).
func (p *Processor) Activities(accountID string) []models.ConsolidatedActivity {
	return p.activities[accountID]
}

// Ingest splices a previously-computed segment's activities (a cache hit)
// into the processor's running stream without re-executing any handler,
// and fast-forwards the Balance Tracker to the balance the last cached
// activity recorded. Spending category carry/threshold state is not part
// of the cached snapshot, so a cache hit is only safe for segments whose
// accounts carry no spending categories; callers are responsible for that
// check before calling Ingest.
func (p *Processor) Ingest(accountID string, cached []models.ConsolidatedActivity) {
	if len(cached) == 0 {
		return
	}
	p.activities[accountID] = append(p.activities[accountID], cached...)
	p.tracker.SetBalance(accountID, cached[len(cached)-1].Balance)
}

// ProcessSegment applies every event in seg, in the order the Event
// Generator already sorted them (priority-then-insertion).
func (p *Processor) ProcessSegment(ctx context.Context, seg *models.Segment) error {
	accountIDs := make([]string, 0, len(seg.AffectedAccountIDs))
	for id := range seg.AffectedAccountIDs {
		accountIDs = append(accountIDs, id)
	}
	p.tracker.BeginSegment(accountIDs)

	for i := range seg.Events {
		ev := &seg.Events[i]
		if !p.tracker.MarkProcessed(eventIdempotencyKey(ev)) {
			continue
		}

		var err error
		switch ev.Type {
		case models.InterestEvent:
			err = p.handleInterest(ctx, ev)
		case models.ActivityEvent:
			err = p.handleActivity(ctx, ev)
		case models.ActivityTransferEvent, models.BillTransferEvent:
			err = p.handleTransfer(ctx, ev)
		case models.BillEvent:
			err = p.handleBill(ctx, ev)
		case models.PensionEvent:
			err = p.handleRetirementPay(ctx, ev, retirementKindPension)
		case models.SocialSecurityEvent:
			err = p.handleRetirementPay(ctx, ev, retirementKindSocialSecurity)
		case models.RMDEvent:
			err = p.handleRMD(ctx, ev)
		case models.TaxEvent:
			err = p.handleTax(ev)
		case models.SpendingTrackerEvent:
			err = p.handleSpendingTracker(ev)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// eventIdempotencyKey distinguishes otherwise-identical event ids across
// occurrences by folding in the date, so the processed-event set only
// suppresses true re-application (e.g. a segment reprocessed after
// Push/Pull injected transfers), not distinct occurrences of the same
// recurring bill.
func eventIdempotencyKey(ev *models.TimelineEvent) string {
	return string(ev.Type) + "_" + ev.ID + "_" + ev.Date.Format(time.RFC3339)
}

// appendActivity records ca against accountID's stream, stamping its
// running balance, and attributes it to a spending category if tagged.
func (p *Processor) appendActivity(accountID string, ca models.ConsolidatedActivity) {
	ca.Balance = p.tracker.GetBalance(accountID)
	p.activities[accountID] = append(p.activities[accountID], ca)

	if ca.SpendingCategory != "" {
		p.spendingMgr.RecordActivity(ca.SpendingCategory, ca.Amount, ca.Date)
	}
}

func isAutoPull(ev *models.TimelineEvent) bool {
	return strings.HasPrefix(ev.ID, "AUTO-PULL_")
}

func (p *Processor) recordTaxableInterest(accountID string, year int, amount float64) {
	if p.taxableInterestByYear[accountID] == nil {
		p.taxableInterestByYear[accountID] = make(map[int]float64)
	}
	p.taxableInterestByYear[accountID][year] += amount
}

func (p *Processor) recordWithdrawal(accountID string, date time.Time, amount float64) {
	year := date.Year()
	if p.withdrawalsByYear[accountID] == nil {
		p.withdrawalsByYear[accountID] = make(map[int][]withdrawalRecord)
	}
	p.withdrawalsByYear[accountID][year] = append(p.withdrawalsByYear[accountID][year], withdrawalRecord{date: date, amount: amount})
}

// retirementKind tags which Retirement Calculator function a pension/Social
// Security event routes to.
type retirementKind int

const (
	retirementKindPension retirementKind = iota
	retirementKindSocialSecurity
)

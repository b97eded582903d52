// Package timeline implements the Event Generator: it turns an
// account's declarative schedules (activities, bills, interest, retirement,
// RMD, tax, spending-tracker categories) into a fully materialized,
// chronologically sorted, per-calendar-month-segmented event list.
package timeline

import (
	"context"
	"log"
	"sort"
	"time"

	"projector/internal/engine/accounts"
	"projector/internal/engine/errs"
	"projector/internal/engine/variables"
	"projector/internal/models"
)

// Timeline is the materialized output of Generate: every event in
// chronological+priority order, already split into calendar-month Segments.
type Timeline struct {
	Events   []models.TimelineEvent
	Segments []models.Segment
}

// generator carries the shared collaborators and horizon for one Generate
// call, threaded through every per-account, per-schedule helper.
type generator struct {
	ctx        context.Context
	mgr        *accounts.Manager
	resolver   variables.Resolver
	mc         variables.SampleProvider
	simulation string
	startDate  time.Time
	endDate    time.Time
	today      time.Time

	seq int // insertion-sequence counter, stamped in generation order
}

// Generate materializes every account's schedules into TimelineEvents, sorts
// them, and segments the result into calendar-month windows.
// today gates the Tax event's lower bound ("max(today, horizonStart)").
func Generate(ctx context.Context, mgr *accounts.Manager, resolver variables.Resolver, mc variables.SampleProvider, simulation string, startDate, endDate, today time.Time) (*Timeline, error) {
	g := &generator{
		ctx:        ctx,
		mgr:        mgr,
		resolver:   resolver,
		mc:         mc,
		simulation: simulation,
		startDate:  startDate,
		endDate:    endDate,
		today:      today,
	}

	var events []models.TimelineEvent
	for _, a := range mgr.All() {
		acctEvents, err := g.generateAccountEvents(a)
		if err != nil {
			return nil, err
		}
		events = append(events, acctEvents...)
	}

	interestPay := mgr.TaxEligibleAccounts()
	for _, a := range interestPay {
		taxEvents, err := g.generateTaxEvents(a)
		if err != nil {
			return nil, err
		}
		events = append(events, taxEvents...)
	}

	sortEvents(events)

	segments := segmentEvents(events, startDate, endDate)
	for i := range segments {
		computeCacheKey(&segments[i])
	}

	return &Timeline{Events: events, Segments: segments}, nil
}

// generateAccountEvents emits every per-account event family except Tax,
// which is driven off the account set as a whole.
func (g *generator) generateAccountEvents(a *models.Account) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent

	activityEvents, err := g.generateActivityEvents(a)
	if err != nil {
		return nil, err
	}
	out = append(out, activityEvents...)

	billEvents, err := g.generateBillEvents(a)
	if err != nil {
		return nil, err
	}
	out = append(out, billEvents...)

	interestEvents, err := g.generateInterestEvents(a)
	if err != nil {
		return nil, err
	}
	out = append(out, interestEvents...)

	if a.Pension != nil {
		pensionEvents, err := g.generatePensionEvents(a)
		if err != nil {
			return nil, err
		}
		out = append(out, pensionEvents...)
	}

	if a.SocialSecurity != nil {
		ssEvents, err := g.generateSocialSecurityEvents(a)
		if err != nil {
			return nil, err
		}
		out = append(out, ssEvents...)
	}

	if a.UsesRMD && a.RMDAccount != "" && a.AccountOwnerDOB != nil {
		out = append(out, g.generateRMDEvents(a)...)
	}

	for i := range a.SpendingCategories {
		spendingEvents, err := g.generateSpendingTrackerEvents(a, &a.SpendingCategories[i])
		if err != nil {
			return nil, err
		}
		out = append(out, spendingEvents...)
	}

	return out, nil
}

// nextSeq returns the next insertion-sequence stamp, breaking same-date/
// same-priority ties by generation order.
func (g *generator) nextSeq() int {
	s := g.seq
	g.seq++
	return s
}

// inHorizon reports whether d falls within [startDate, endDate] inclusive.
func (g *generator) inHorizon(d time.Time) bool {
	return !d.Before(g.startDate) && !d.After(g.endDate)
}

// resolveAccountByName looks an account up by name, logging and reporting a
// DanglingReferenceError — non-fatal, the caller skips the dependent event —
// when it does not exist.
func (g *generator) resolveAccountByName(name, context string) (*models.Account, error) {
	if name == "" {
		return nil, nil
	}
	if a, ok := g.mgr.ByName(name); ok {
		return a, nil
	}
	err := &errs.DanglingReferenceError{AccountName: name, Context: context}
	log.Printf("timeline: %s", err)
	return nil, err
}

// sortEvents sorts ascending by (date-day, priority), preserving relative
// order within a tie via a stable sort over the insertion-sequence-stamped
// slice.
func sortEvents(events []models.TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := dayOnly(events[i].Date), dayOnly(events[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if events[i].Priority != events[j].Priority {
			return events[i].Priority < events[j].Priority
		}
		return events[i].InsertionSeq < events[j].InsertionSeq
	})
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package timeline

import (
	"math"
	"time"

	"projector/internal/engine/errs"
	"projector/internal/models"
)

// generateBillEvents iterates a Bill's occurrences from startDate by
// nextDate until the bill's own endDate or the horizon end, whichever comes
// first, resolving each occurrence's amount via resolveBillAmount.
func (g *generator) generateBillEvents(a *models.Account) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent

	for i := range a.Bills {
		bill := &a.Bills[i]

		limit := g.endDate
		if bill.EndDate != nil && bill.EndDate.Before(limit) {
			limit = *bill.EndDate
		}

		occurrences := 0
		first := true
		for date := bill.StartDate; !date.After(limit); date = models.NextDate(date, bill.Periods, bill.EveryN) {
			occurrences++
			if occurrences > errs.MaxOccurrences {
				return nil, &errs.GeneratorOverflow{Source: "bill " + bill.ID, Count: occurrences}
			}

			if g.inHorizon(date) {
				amount, base, annCount, err := g.resolveBillAmount(bill, date)
				if err != nil {
					if ne, ok := err.(*errs.NumericError); ok && ne.AccountID == "" {
						ne.AccountID = a.ID
					}
					return nil, err
				}

				ev := models.TimelineEvent{
					ID:                   bill.ID,
					Date:                 date,
					AccountID:            a.ID,
					SourceID:             bill.ID,
					FirstBill:            first,
					Category:             bill.Category,
					Name:                 bill.Name,
					SpendingCategory:     bill.SpendingCategory,
					Flag:                 bill.Flag,
					FlagColor:            bill.FlagColor,
					Amount:               amount,
					InsertionSeq:         g.nextSeq(),
					MonteCarloSampleType: bill.MonteCarloSampleType,
					BaseAmount:           base,
					MCAnniversaryCount:   annCount,
				}
				if bill.IsTransfer {
					ev.Type = models.BillTransferEvent
					if from, ferr := g.resolveAccountByName(bill.Fro, "bill "+bill.ID+" fro"); ferr == nil && from != nil {
						ev.FromAccountID = from.ID
					}
					if to, terr := g.resolveAccountByName(bill.To, "bill "+bill.ID+" to"); terr == nil && to != nil {
						ev.ToAccountID = to.ID
					}
				} else {
					ev.Type = models.BillEvent
				}
				ev.Priority = ev.Type.Priority()

				out = append(out, ev)
			}
			first = false
		}
	}

	return out, nil
}

// resolveBillAmount resolves a bill occurrence's amount: symbolic
// amounts pass through unchanged; otherwise resolve the base (literal or
// variable), apply the ceiling once, then inflate/re-ceiling once per
// anniversary of increaseByDate strictly within (startDate, currentDate] —
// or, in Monte Carlo mode, sample and multiply per anniversary with no
// ceiling at all.
func (g *generator) resolveBillAmount(bill *models.Bill, occurrence time.Time) (amount models.AmountSpec, base float64, anniversaryCount int, err error) {
	if bill.Amount.IsSymbolic() {
		return bill.Amount, 0, 0, nil
	}

	base = bill.Amount.Literal
	if bill.Amount.IsVariable() {
		v, verr := g.resolver.ResolveAmount(g.ctx, bill.Amount.Variable, g.simulation)
		if verr != nil {
			return models.AmountSpec{}, 0, 0, verr
		}
		base = v
	}

	anchor := bill.IncreaseByDate
	if anchor == nil || (bill.IncreaseBy == 0 && bill.MonteCarloSampleType == "") {
		result := base
		if bill.CeilingMultiple > 0 {
			result = ceilToMultiple(result, bill.CeilingMultiple)
		}
		return models.Amount(result), base, 0, nil
	}

	anns := anniversaries(bill.StartDate, occurrence, *anchor)

	if bill.MonteCarloSampleType != "" {
		result := base
		for _, ann := range anns {
			sample, serr := g.mc.Sample(g.ctx, bill.MonteCarloSampleType, ann)
			if serr != nil {
				return models.AmountSpec{}, 0, 0, &errs.NumericError{Detail: "bill " + bill.ID + ": " + serr.Error()}
			}
			result *= 1 + sample
		}
		return models.Amount(result), base, len(anns), nil
	}

	result := base
	if bill.CeilingMultiple > 0 {
		result = ceilToMultiple(result, bill.CeilingMultiple)
	}
	for range anns {
		result *= 1 + bill.IncreaseBy
		if bill.CeilingMultiple > 0 {
			result = ceilToMultiple(result, bill.CeilingMultiple)
		}
	}
	return models.Amount(result), base, len(anns), nil
}

func ceilToMultiple(v, multiple float64) float64 {
	if multiple <= 0 {
		return v
	}
	return math.Ceil(v/multiple) * multiple
}

// anniversaries returns, in ascending order, every occurrence of anchor's
// month/day strictly after startDate and on or before currentDate.
func anniversaries(startDate, currentDate, anchor time.Time) []time.Time {
	var out []time.Time
	for y := startDate.Year(); y <= currentDate.Year(); y++ {
		ann := time.Date(y, anchor.Month(), anchor.Day(), 0, 0, 0, 0, startDate.Location())
		if ann.After(startDate) && !ann.After(currentDate) {
			out = append(out, ann)
		}
	}
	return out
}

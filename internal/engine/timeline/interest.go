package timeline

import (
	"projector/internal/engine/errs"
	"projector/internal/models"
)

// generateInterestEvents emits one interest event at each record's
// applicableDate then every compounded step, until the next record's
// applicableDate (exclusive) or horizon end.
// Interest.ApplicableDate entries are assumed sorted ascending.
func (g *generator) generateInterestEvents(a *models.Account) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent

	for i := range a.Interests {
		rec := &a.Interests[i]

		recordEnd := g.endDate
		if i+1 < len(a.Interests) {
			next := a.Interests[i+1].ApplicableDate
			if next.Before(recordEnd) {
				recordEnd = next.AddDate(0, 0, -1)
			}
		}

		occurrences := 0
		first := true
		for date := rec.ApplicableDate; !date.After(recordEnd) && !date.After(g.endDate); date = models.NextDate(date, rec.Compounded, 1) {
			occurrences++
			if occurrences > errs.MaxOccurrences {
				return nil, &errs.GeneratorOverflow{Source: "interest " + rec.ID, Count: occurrences}
			}

			if g.inHorizon(date) {
				apr := rec.APR
				if rec.APRVariable != "" {
					v, err := g.resolver.ResolveAmount(g.ctx, rec.APRVariable, g.simulation)
					if err != nil {
						return nil, err
					}
					apr = v
				}
				if rec.MonteCarloType != "" {
					sample, err := g.mc.Sample(g.ctx, rec.MonteCarloType, date)
					if err != nil {
						return nil, &errs.NumericError{AccountID: a.ID, Detail: err.Error()}
					}
					apr = sample
				}

				out = append(out, models.TimelineEvent{
					ID:                   rec.ID,
					Type:                 models.InterestEvent,
					Date:                 date,
					AccountID:            a.ID,
					Priority:             models.InterestEvent.Priority(),
					InsertionSeq:         g.nextSeq(),
					InterestID:           rec.ID,
					APR:                  apr,
					Compounded:           rec.Compounded,
					FirstInterest:        first,
					MonteCarloSampleType: rec.MonteCarloType,
				})
			}
			first = false

			if rec.Compounded == "" {
				break
			}
		}
	}

	return out, nil
}

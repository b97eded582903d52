package timeline

import (
	"time"

	"projector/internal/engine/errs"
	"projector/internal/models"
)

// generatePensionEvents emits one monthly pension event per month from the
// resolved startDate until horizon end.
func (g *generator) generatePensionEvents(a *models.Account) ([]models.TimelineEvent, error) {
	start, err := g.resolveDateSpec(a.Pension.StartDate)
	if err != nil {
		return nil, err
	}
	return g.generateMonthlyRetirementEvents(a, models.PensionEvent, start, a.Pension.BirthDate, a.Pension.PaycheckName, a.Pension.Category)
}

// generateSocialSecurityEvents emits one monthly Social Security event per
// month from the resolved startDate until horizon end.
func (g *generator) generateSocialSecurityEvents(a *models.Account) ([]models.TimelineEvent, error) {
	start, err := g.resolveDateSpec(a.SocialSecurity.StartDate)
	if err != nil {
		return nil, err
	}
	return g.generateMonthlyRetirementEvents(a, models.SocialSecurityEvent, start, a.SocialSecurity.BirthDate, a.SocialSecurity.PaycheckName, a.SocialSecurity.Category)
}

func (g *generator) generateMonthlyRetirementEvents(a *models.Account, eventType models.EventType, start, birthDate time.Time, paycheckName, category string) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent

	occurrences := 0
	first := true
	for date := start; !date.After(g.endDate); date = models.NextDate(date, models.Month, 1) {
		occurrences++
		if occurrences > errs.MaxOccurrences {
			return nil, &errs.GeneratorOverflow{Source: string(eventType) + " " + a.ID, Count: occurrences}
		}

		if g.inHorizon(date) {
			out = append(out, models.TimelineEvent{
				ID:           a.ID + "_" + string(eventType) + "_" + date.Format("2006-01-02"),
				Type:         eventType,
				Date:         date,
				AccountID:    a.ID,
				Priority:     eventType.Priority(),
				InsertionSeq: g.nextSeq(),
				Name:         paycheckName,
				Category:     category,
				OwnerAge:     ownerAge(birthDate, date),
				FirstPayment: first,
			})
		}
		first = false
	}

	return out, nil
}

// ownerAge returns whole years elapsed from birthDate to date.
func ownerAge(birthDate, date time.Time) int {
	age := date.Year() - birthDate.Year()
	if date.Month() < birthDate.Month() || (date.Month() == birthDate.Month() && date.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// generateRMDEvents emits one event on December 31 of each year in the
// horizon for accounts with usesRMD ∧ rmdAccount ∧ accountOwnerDOB set.
func (g *generator) generateRMDEvents(a *models.Account) []models.TimelineEvent {
	var out []models.TimelineEvent
	for year := g.startDate.Year(); year <= g.endDate.Year(); year++ {
		date := time.Date(year, time.December, 31, 0, 0, 0, 0, g.startDate.Location())
		if !g.inHorizon(date) {
			continue
		}
		out = append(out, models.TimelineEvent{
			ID:           a.ID + "_rmd_" + date.Format("2006"),
			Type:         models.RMDEvent,
			Date:         date,
			AccountID:    a.ID,
			Priority:     models.RMDEvent.Priority(),
			InsertionSeq: g.nextSeq(),
			OwnerAge:     ownerAge(*a.AccountOwnerDOB, date),
		})
	}
	return out
}

// generateTaxEvents emits one event on March 1 of each year in
// [max(today, horizonStart), horizonEnd].
func (g *generator) generateTaxEvents(a *models.Account) ([]models.TimelineEvent, error) {
	lowerBound := g.startDate
	if g.today.After(lowerBound) {
		lowerBound = g.today
	}

	var out []models.TimelineEvent
	for year := lowerBound.Year(); year <= g.endDate.Year(); year++ {
		date := time.Date(year, time.March, 1, 0, 0, 0, 0, g.startDate.Location())
		if date.Before(lowerBound) || date.After(g.endDate) {
			continue
		}
		out = append(out, models.TimelineEvent{
			ID:           a.ID + "_tax_" + date.Format("2006"),
			Type:         models.TaxEvent,
			Date:         date,
			AccountID:    a.ID,
			Priority:     models.TaxEvent.Priority(),
			InsertionSeq: g.nextSeq(),
		})
	}
	return out, nil
}

// resolveDateSpec resolves a DateSpec (literal "2006-01-02" string or
// variable reference) to a concrete time.Time.
func (g *generator) resolveDateSpec(ds models.DateSpec) (time.Time, error) {
	if ds.IsVariable() {
		return g.resolver.ResolveDate(g.ctx, ds.Variable, g.simulation)
	}
	return time.Parse("2006-01-02", *ds.Literal)
}

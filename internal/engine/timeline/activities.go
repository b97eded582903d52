package timeline

import (
	"time"

	"projector/internal/models"
)

// generateActivityEvents emits one activity/activityTransfer event per
// Activity with date ≤ endDate.
func (g *generator) generateActivityEvents(a *models.Account) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent

	for i := range a.Activities {
		act := &a.Activities[i]

		date, err := act.ResolvedDate(g.simulation, g.resolveDateVar)
		if err != nil {
			return nil, err
		}
		if !g.inHorizon(date) {
			continue
		}

		ev := models.TimelineEvent{
			ID:               act.ID,
			Date:             date,
			AccountID:        a.ID,
			SourceID:         act.ID,
			Category:         act.Category,
			Name:             act.Name,
			SpendingCategory: act.SpendingCategory,
			Flag:             act.Flag,
			FlagColor:        act.FlagColor,
			Amount:           act.Amount,
			InsertionSeq:     g.nextSeq(),
		}

		if act.IsTransfer {
			ev.Type = models.ActivityTransferEvent
			if from, ferr := g.resolveAccountByName(act.Fro, "activity "+act.ID+" fro"); ferr == nil && from != nil {
				ev.FromAccountID = from.ID
			}
			if to, terr := g.resolveAccountByName(act.To, "activity "+act.ID+" to"); terr == nil && to != nil {
				ev.ToAccountID = to.ID
			}
		} else {
			ev.Type = models.ActivityEvent
		}
		ev.Priority = ev.Type.Priority()

		out = append(out, ev)
	}

	return out, nil
}

// resolveDateVar adapts the Variable Resolver collaborator to the
// (name, simulation) (time.Time, error) shape DateSpec.ResolvedDate expects.
func (g *generator) resolveDateVar(name, sim string) (time.Time, error) {
	return g.resolver.ResolveDate(g.ctx, name, sim)
}

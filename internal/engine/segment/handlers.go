package segment

import (
	"context"
	"math"
	"time"

	"projector/internal/engine/retirement"
	"projector/internal/models"
)

// handleInterest applies the active record's nominal per-period rate
// (apr/periodsPerYear) to the current balance, emits a categorized
// activity, updates the balance, and accumulates the signed amount into
// the account's taxable-interest ledger for the year. apr is the nominal
// annual rate, divided evenly across the compounding periods rather than
// converted from an effective-annual rate, so compounding monthly at
// apr=0.12 yields 1% a month.
func (p *Processor) handleInterest(ctx context.Context, ev *models.TimelineEvent) error {
	periodsPerYear := models.PeriodsPerYear(ev.Compounded)
	balanceBefore := p.tracker.GetBalance(ev.AccountID)
	amount := balanceBefore * (ev.APR / periodsPerYear)

	if _, err := p.tracker.AdjustBalance(ev.AccountID, amount); err != nil {
		return err
	}

	interestID := ev.InterestID
	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:            ev.ID + "_" + ev.Date.Format("20060102"),
		Name:          "Banking.Interest",
		Category:      "Banking.Interest",
		Amount:        amount,
		Date:          ev.Date,
		InterestID:    &interestID,
		FirstInterest: ev.FirstInterest,
		Priority:      ev.Priority,
	})

	p.recordTaxableInterest(ev.AccountID, ev.Date.Year(), amount)
	return nil
}

// handleActivity resolves the amount (literal, variable, or
// symbolic-against-self) and applies it to the owning account.
func (p *Processor) handleActivity(ctx context.Context, ev *models.TimelineEvent) error {
	amount, symbolic, err := p.resolveAmount(ctx, ev.Amount, ev.AccountID, ev.AccountID)
	if err != nil {
		return err
	}
	if symbolic && amount == 0 {
		return nil
	}

	if _, err := p.tracker.AdjustBalance(ev.AccountID, amount); err != nil {
		return err
	}

	billID := ev.SourceID
	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:               ev.ID,
		Name:             ev.Name,
		Category:         ev.Category,
		Flag:             ev.Flag,
		FlagColor:        ev.FlagColor,
		Amount:           amount,
		Date:             ev.Date,
		SpendingCategory: ev.SpendingCategory,
		BillID:           &billID,
		Priority:         ev.Priority,
	})
	return nil
}

// handleBill resolves the (possibly still-symbolic) amount and applies it
// to the owning account.
func (p *Processor) handleBill(ctx context.Context, ev *models.TimelineEvent) error {
	amount, symbolic, err := p.resolveAmount(ctx, ev.Amount, ev.AccountID, ev.AccountID)
	if err != nil {
		return err
	}
	if symbolic && amount == 0 {
		return nil
	}

	if _, err := p.tracker.AdjustBalance(ev.AccountID, amount); err != nil {
		return err
	}

	billID := ev.SourceID
	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:               ev.ID + "_" + ev.Date.Format("20060102"),
		Name:             ev.Name,
		Category:         ev.Category,
		Flag:             ev.Flag,
		FlagColor:        ev.FlagColor,
		Amount:           amount,
		Date:             ev.Date,
		SpendingCategory: ev.SpendingCategory,
		BillID:           &billID,
		FirstBill:        ev.FirstBill,
		Priority:         ev.Priority,
	})
	return nil
}

// handleTransfer resolves the amount, applies the Loan/Credit and
// Savings/Investment transfer caps, and emits paired (or single, if only
// one endpoint is known) activities with opposite signs.
func (p *Processor) handleTransfer(ctx context.Context, ev *models.TimelineEvent) error {
	counterparty := ev.ToAccountID
	if ev.AccountID == ev.ToAccountID {
		counterparty = ev.FromAccountID
	}

	amount, symbolic, err := p.resolveAmount(ctx, ev.Amount, ev.AccountID, counterparty)
	if err != nil {
		return err
	}
	if symbolic && amount == 0 {
		return nil
	}
	amount = math.Abs(amount)
	amount = p.applyCap(ev.FromAccountID, ev.ToAccountID, amount)

	billID := ev.SourceID
	isPull := isAutoPull(ev)

	if ev.FromAccountID != "" {
		if _, err := p.tracker.AdjustBalance(ev.FromAccountID, -amount); err != nil {
			return err
		}
		p.appendActivity(ev.FromAccountID, models.ConsolidatedActivity{
			ID:               ev.ID + "_from_" + ev.Date.Format("20060102"),
			Name:             ev.Name,
			Category:         ev.Category,
			Flag:             ev.Flag,
			FlagColor:        ev.FlagColor,
			IsTransfer:       true,
			Fro:              ev.FromAccountID,
			To:               ev.ToAccountID,
			Amount:           -amount,
			Date:             ev.Date,
			SpendingCategory: ev.SpendingCategory,
			BillID:           &billID,
			FirstBill:        ev.FirstBill,
			Priority:         ev.Priority,
		})
		if isPull {
			p.recordWithdrawal(ev.FromAccountID, ev.Date, amount)
		}
	}

	if ev.ToAccountID != "" {
		if _, err := p.tracker.AdjustBalance(ev.ToAccountID, amount); err != nil {
			return err
		}
		p.appendActivity(ev.ToAccountID, models.ConsolidatedActivity{
			ID:               ev.ID + "_to_" + ev.Date.Format("20060102"),
			Name:             ev.Name,
			Category:         ev.Category,
			Flag:             ev.Flag,
			FlagColor:        ev.FlagColor,
			IsTransfer:       true,
			Fro:              ev.FromAccountID,
			To:               ev.ToAccountID,
			Amount:           amount,
			Date:             ev.Date,
			SpendingCategory: ev.SpendingCategory,
			BillID:           &billID,
			FirstBill:        ev.FirstBill,
			Priority:         ev.Priority,
		})
	}

	return nil
}

// applyCap enforces the transfer-capping rules: a
// transfer into a Loan/Credit account is capped at |balance_to|; a
// transfer from a non-Loan/Credit account into Savings/Investment is
// capped at the available balance of the source.
func (p *Processor) applyCap(fromID, toID string, amount float64) float64 {
	if toID != "" {
		if toAcct, ok := p.mgr.ByID(toID); ok && (toAcct.Type == models.Loan || toAcct.Type == models.Credit) {
			limit := math.Abs(p.tracker.GetBalance(toID))
			if amount > limit {
				amount = limit
			}
		}
	}
	if fromID != "" && toID != "" {
		fromAcct, fromOK := p.mgr.ByID(fromID)
		toAcct, toOK := p.mgr.ByID(toID)
		if fromOK && toOK && fromAcct.Type != models.Loan && fromAcct.Type != models.Credit &&
			(toAcct.Type == models.Savings || toAcct.Type == models.Investment) {
			limit := p.tracker.GetBalance(fromID)
			if amount > limit {
				amount = limit
			}
		}
	}
	return amount
}

// handleRetirementPay queries the Retirement Calculator for this month's
// pension or Social Security amount and emits it as income on the pay-to
// account.
func (p *Processor) handleRetirementPay(ctx context.Context, ev *models.TimelineEvent, kind retirementKind) error {
	acct, ok := p.mgr.ByID(ev.AccountID)
	if !ok {
		return nil
	}

	var amount float64
	switch kind {
	case retirementKindPension:
		if acct.Pension == nil {
			return nil
		}
		claimDate, err := p.resolveDateSpec(ctx, acct.Pension.StartDate)
		if err != nil {
			return err
		}
		amount = retirement.PensionMonthly(acct.Pension, claimDate)
	case retirementKindSocialSecurity:
		if acct.SocialSecurity == nil {
			return nil
		}
		claimDate, err := p.resolveDateSpec(ctx, acct.SocialSecurity.StartDate)
		if err != nil {
			return err
		}
		amount = retirement.SocialSecurityMonthly(acct.SocialSecurity, p.rateTables, claimDate)
	}

	if _, err := p.tracker.AdjustBalance(ev.AccountID, amount); err != nil {
		return err
	}

	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:       ev.ID,
		Name:     ev.Name,
		Category: ev.Category,
		Amount:   amount,
		Date:     ev.Date,
		Priority: ev.Priority,
	})
	return nil
}

// handleRMD computes the required distribution off the year-end balance
// and the IRS divisor for ownerAge, emits a
// transfer to rmdAccount, and mark the amount taxable for next year's tax
// event.
func (p *Processor) handleRMD(ctx context.Context, ev *models.TimelineEvent) error {
	acct, ok := p.mgr.ByID(ev.AccountID)
	if !ok || acct.RMDAccount == "" {
		return nil
	}
	dest, ok := p.mgr.ByName(acct.RMDAccount)
	if !ok {
		return nil
	}

	balance := p.tracker.GetBalance(ev.AccountID)
	amount := retirement.RMD(balance, ev.OwnerAge)
	if amount <= 0 {
		return nil
	}

	if _, err := p.tracker.AdjustBalance(ev.AccountID, -amount); err != nil {
		return err
	}
	if _, err := p.tracker.AdjustBalance(dest.ID, amount); err != nil {
		return err
	}

	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:         ev.ID + "_from",
		Name:       "RMD",
		Category:   "Banking.RMD",
		IsTransfer: true,
		Fro:        ev.AccountID,
		To:         dest.ID,
		Amount:     -amount,
		Date:       ev.Date,
		Priority:   ev.Priority,
	})
	p.appendActivity(dest.ID, models.ConsolidatedActivity{
		ID:         ev.ID + "_to",
		Name:       "RMD",
		Category:   "Banking.RMD",
		IsTransfer: true,
		Fro:        ev.AccountID,
		To:         dest.ID,
		Amount:     amount,
		Date:       ev.Date,
		Priority:   ev.Priority,
	})

	p.recordWithdrawal(ev.AccountID, ev.Date, amount)
	return nil
}

// handleTax sums, for the previous calendar
// year, taxable interest (via accounts that name this account as their
// interestPayAccount) times interestTaxRate, plus withdrawal tax (RMDs and
// pull-originated withdrawals) at withdrawalTaxRate plus earlyWithdrawlPenalty
// where the withdrawal preceded earlyWithdrawlDate.
func (p *Processor) handleTax(ev *models.TimelineEvent) error {
	acct, ok := p.mgr.ByID(ev.AccountID)
	if !ok {
		return nil
	}
	year := ev.Date.Year() - 1

	var total float64
	for _, other := range p.mgr.All() {
		if other.InterestPayAccount != acct.Name {
			continue
		}
		total += p.taxableInterestByYear[other.ID][year] * other.InterestTaxRate
	}

	for _, w := range p.withdrawalsByYear[acct.ID][year] {
		total += w.amount * acct.WithdrawalTaxRate
		if acct.EarlyWithdrawlDate != nil && w.date.Before(*acct.EarlyWithdrawlDate) {
			total += w.amount * acct.EarlyWithdrawlPenalty
		}
	}

	if total <= 0 {
		return nil
	}

	if _, err := p.tracker.AdjustBalance(ev.AccountID, -total); err != nil {
		return err
	}
	p.appendActivity(ev.AccountID, models.ConsolidatedActivity{
		ID:       ev.ID,
		Name:     "Banking.Taxes",
		Category: "Banking.Taxes",
		Amount:   -total,
		Date:     ev.Date,
		Priority: ev.Priority,
	})
	return nil
}

// handleSpendingTracker queries (effectiveThreshold, totalSpent, remainder)
// at periodEnd; emits a
// remainder activity if remainder > 0 so the budget is fully consumed on
// paper; then advance the category's carry/period state. Virtual events
// only advance state.
func (p *Processor) handleSpendingTracker(ev *models.TimelineEvent) error {
	if !ev.Virtual {
		remainder := p.spendingMgr.Remainder(ev.CategoryID, ev.PeriodEnd)
		if remainder > 0 {
			if targetID, ok := p.spendingTargetAccount(ev.CategoryID); ok {
				if _, err := p.tracker.AdjustBalance(targetID, -remainder); err != nil {
					return err
				}
				p.appendActivity(targetID, models.ConsolidatedActivity{
					ID:               ev.ID + "_remainder",
					Name:             "Spending remainder",
					Category:         "Banking.Spending",
					Amount:           -remainder,
					Date:             ev.PeriodEnd,
					SpendingCategory: ev.CategoryID,
					Priority:         ev.Priority,
				})
			}
		}
	}

	p.spendingMgr.UpdateCarry(ev.CategoryID, ev.PeriodEnd)
	p.spendingMgr.ResetPeriodSpending(ev.CategoryID)
	p.spendingMgr.MarkPeriodProcessed(ev.CategoryID, ev.PeriodEnd)
	return nil
}

// spendingTargetAccount resolves a category's configured target account
// name to an account id via the account set (all categories are scanned
// from every account, so the owning account list is the source of truth).
func (p *Processor) spendingTargetAccount(categoryID string) (string, bool) {
	for _, a := range p.mgr.All() {
		for _, cat := range a.SpendingCategories {
			if cat.ID == categoryID {
				if dest, ok := p.mgr.ByName(cat.TargetAccount); ok {
					return dest.ID, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// resolveAmount implements the shared {HALF,FULL}-against-counterparty /
// variable / literal resolution used by Activity/Bill amounts. The second
// return reports whether the amount came from a symbolic resolution, so
// callers can recognize and drop the "{HALF}/{FULL} of a zero balance"
// no-op case per spec §7 local recovery.
func (p *Processor) resolveAmount(ctx context.Context, spec models.AmountSpec, ownAccountID, counterpartyAccountID string) (float64, bool, error) {
	if spec.IsSymbolic() {
		cp := counterpartyAccountID
		if cp == "" {
			cp = ownAccountID
		}
		bal := p.tracker.GetBalance(cp)
		switch spec.Symbolic {
		case models.SymbolicHalf:
			return bal / 2, true, nil
		case models.SymbolicFull:
			return bal, true, nil
		case models.SymbolicNegHalf:
			return -bal / 2, true, nil
		case models.SymbolicNegFull:
			return -bal, true, nil
		}
	}
	if spec.IsVariable() {
		amount, err := p.resolver.ResolveAmount(ctx, spec.Variable, p.simulation)
		return amount, false, err
	}
	return spec.Literal, false, nil
}

// resolveDateSpec resolves a pension/Social Security claim date: either a
// named variable (e.g. "retirementDate") or a literal "2006-01-02" string.
func (p *Processor) resolveDateSpec(ctx context.Context, ds models.DateSpec) (time.Time, error) {
	if ds.IsVariable() {
		return p.resolver.ResolveDate(ctx, ds.Variable, p.simulation)
	}
	if ds.Literal != nil {
		return time.Parse("2006-01-02", *ds.Literal)
	}
	return time.Time{}, nil
}

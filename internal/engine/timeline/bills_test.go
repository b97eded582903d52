package timeline

import (
	"context"
	"testing"
	"time"

	"projector/internal/models"
)

func TestCeilToMultiple(t *testing.T) {
	cases := []struct {
		v, multiple, want float64
	}{
		{101, 50, 150},
		{100, 50, 100},
		{0, 50, 0},
		{10, 0, 10}, // multiple<=0 passes through unchanged
	}
	for _, c := range cases {
		if got := ceilToMultiple(c.v, c.multiple); got != c.want {
			t.Errorf("ceilToMultiple(%v, %v) = %v, want %v", c.v, c.multiple, got, c.want)
		}
	}
}

func TestAnniversaries(t *testing.T) {
	start := date(2023, 6, 15)
	anchor := date(2020, 3, 1) // month/day only matters
	current := date(2026, 3, 1)

	got := anniversaries(start, current, anchor)
	want := []time.Time{date(2024, 3, 1), date(2025, 3, 1), date(2026, 3, 1)}

	if len(got) != len(want) {
		t.Fatalf("anniversaries count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("anniversaries[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnniversariesExcludesStartDateItself(t *testing.T) {
	start := date(2024, 3, 1)
	anchor := date(2020, 3, 1)
	current := date(2024, 3, 1)

	got := anniversaries(start, current, anchor)
	if len(got) != 0 {
		t.Fatalf("anniversary equal to startDate must be excluded (strictly after), got %v", got)
	}
}

func TestResolveBillAmountNoInflation(t *testing.T) {
	g := &generator{ctx: context.Background()}
	bill := &models.Bill{
		StartDate:       date(2025, 1, 1),
		Amount:          models.Amount(275),
		CeilingMultiple: 50,
	}

	amount, base, anns, err := g.resolveBillAmount(bill, date(2025, 6, 1))
	if err != nil {
		t.Fatalf("resolveBillAmount: %v", err)
	}
	if base != 275 {
		t.Fatalf("base = %v, want 275", base)
	}
	if anns != 0 {
		t.Fatalf("anniversaryCount = %d, want 0 (no increaseByDate)", anns)
	}
	if amount.Literal != 300 {
		t.Fatalf("amount = %v, want ceil(275, 50)=300", amount.Literal)
	}
}

func TestResolveBillAmountWithAnnualInflation(t *testing.T) {
	anchor := date(2025, 1, 1)
	g := &generator{ctx: context.Background()}
	bill := &models.Bill{
		StartDate:      date(2025, 1, 1),
		Amount:         models.Amount(100),
		IncreaseBy:     0.10,
		IncreaseByDate: &anchor,
	}

	// One anniversary has passed (2026-01-01): 100 * 1.10 = 110.
	amount, _, anns, err := g.resolveBillAmount(bill, date(2026, 6, 1))
	if err != nil {
		t.Fatalf("resolveBillAmount: %v", err)
	}
	if anns != 1 {
		t.Fatalf("anniversaryCount = %d, want 1", anns)
	}
	if !closeEnough(amount.Literal, 110) {
		t.Fatalf("amount after 1 anniversary = %v, want 110", amount.Literal)
	}

	// Two anniversaries passed (2026, 2027): 100 * 1.10^2 = 121.
	amount2, _, anns2, err := g.resolveBillAmount(bill, date(2027, 6, 1))
	if err != nil {
		t.Fatalf("resolveBillAmount: %v", err)
	}
	if anns2 != 2 {
		t.Fatalf("anniversaryCount = %d, want 2", anns2)
	}
	if !closeEnough(amount2.Literal, 121) {
		t.Fatalf("amount after 2 anniversaries = %v, want 121", amount2.Literal)
	}
}

func TestResolveBillAmountSymbolicPassesThroughUnchanged(t *testing.T) {
	g := &generator{ctx: context.Background()}
	bill := &models.Bill{
		StartDate: date(2025, 1, 1),
		Amount:    models.AmountSpec{Symbolic: models.SymbolicHalf},
	}

	amount, base, anns, err := g.resolveBillAmount(bill, date(2025, 6, 1))
	if err != nil {
		t.Fatalf("resolveBillAmount: %v", err)
	}
	if amount.Symbolic != models.SymbolicHalf {
		t.Fatalf("symbolic amount must pass through unchanged, got %+v", amount)
	}
	if base != 0 || anns != 0 {
		t.Fatalf("symbolic path should not compute base/anniversaries, got base=%v anns=%d", base, anns)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

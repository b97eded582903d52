package retirement

import (
	"testing"
	"time"

	"projector/internal/models"
)

func TestCollectionAgeFactorTable(t *testing.T) {
	cases := map[int]float64{
		61: 0,
		62: 0.70,
		65: 13.0 / 15.0,
		67: 1.0,
		69: 1.16,
		70: 1.24,
		80: 1.24,
	}
	for age, want := range cases {
		if got := collectionAgeFactor(age); got != want {
			t.Errorf("collectionAgeFactor(%d) = %v, want %v", age, got, want)
		}
	}
}

func TestOwnerAge(t *testing.T) {
	birth := time.Date(1960, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 65},  // exact birthday
		{time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), 64},  // day before birthday
		{time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 65},   // after birthday, same year
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 64},   // before birthday month
	}
	for _, c := range cases {
		if got := ownerAge(birth, c.date); got != c.want {
			t.Errorf("ownerAge(%v) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestAWIExtrapolationPastLastKnownYear(t *testing.T) {
	table := map[int]float64{
		2020: 100,
		2021: 110, // +10%
		2022: 121, // +10%
	}
	// Mean YoY growth is 10%; one year past the last known year should be
	// 121 * 1.10 = 133.1.
	got := awiAt(table, 2023)
	if !closeEnough(got, 133.1) {
		t.Fatalf("awiAt(2023) = %v, want 133.1", got)
	}
}

func TestAWIKnownYearReturnsExact(t *testing.T) {
	table := map[int]float64{2020: 100, 2021: 110}
	if got := awiAt(table, 2021); got != 110 {
		t.Fatalf("awiAt(2021) = %v, want 110", got)
	}
}

func TestSocialSecurityMonthlyZeroBelowMinimumAge(t *testing.T) {
	ss := &models.SocialSecurity{
		BirthDate:             time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		PriorAnnualNetIncomes: map[int]float64{2000: 50000},
	}
	tables := models.RateTables{
		AverageWageIndex: map[int]float64{2020: 100},
		BendPoints:       map[int][2]float64{2020: {1000, 6000}},
	}

	// Claiming at age 61 (2021, before the 1960+62=2022 minimum) should yield zero benefit.
	claimDate := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	got := SocialSecurityMonthly(ss, tables, claimDate)
	if got != 0 {
		t.Fatalf("SocialSecurityMonthly before age 62 = %v, want 0", got)
	}
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

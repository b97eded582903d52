package retirement

import (
	"sort"
	"time"

	"projector/internal/models"
)

// collectionAgeFactors is the Social Security early/delayed-claiming
// reduction/credit table, keyed by claiming age in whole years.
var collectionAgeFactors = map[int]float64{
	62: 0.70,
	63: 0.75,
	64: 0.80,
	65: 13.0 / 15.0,
	66: 14.0 / 15.0,
	67: 1.0,
	68: 1.08,
	69: 1.16,
}

func collectionAgeFactor(age int) float64 {
	if age < 62 {
		return 0
	}
	if age >= 70 {
		return 1.24
	}
	if f, ok := collectionAgeFactors[age]; ok {
		return f
	}
	return 0
}

// SocialSecurityMonthly computes the monthly Social Security benefit for a
// claimant, fixed at the claiming date. The AIME/PIA computation depends
// only on the claim date, so every monthly event for one claimant yields the
// same amount; the segment handler recomputes it for each event.
func SocialSecurityMonthly(ss *models.SocialSecurity, tables models.RateTables, claimDate time.Time) float64 {
	yearTurn60 := ss.BirthDate.Year() + 60
	yearTurn62 := ss.BirthDate.Year() + 62

	aime := computeAIME(ss.PriorAnnualNetIncomes, tables.AverageWageIndex, yearTurn60)
	b1, b2 := bendPointsAt(tables.BendPoints, yearTurn62)

	pia := 0.9*min(aime, b1) + 0.32*min(max(aime-b1, 0), b2-b1) + 0.15*max(aime-b2, 0)

	claimAge := ownerAge(ss.BirthDate, claimDate)
	return pia * collectionAgeFactor(claimAge)
}

// computeAIME indexes prior earnings through yearTurn60, pads/truncates to
// 35 years, averages, and divides by 12.
func computeAIME(priorIncomes map[int]float64, awi map[int]float64, yearTurn60 int) float64 {
	indexFactor := awiAt(awi, yearTurn60)

	indexed := make([]float64, 0, len(priorIncomes))
	for year, income := range priorIncomes {
		if year <= yearTurn60 {
			denom := awiAt(awi, year)
			if denom == 0 {
				indexed = append(indexed, 0)
				continue
			}
			indexed = append(indexed, income*indexFactor/denom)
		} else {
			indexed = append(indexed, income)
		}
	}

	for len(indexed) < 35 {
		indexed = append(indexed, 0)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(indexed)))
	top35 := indexed[:35]

	var sum float64
	for _, v := range top35 {
		sum += v
	}
	return sum / 35 / 12
}

// awiAt returns the Average Wage Index for year, linearly extrapolating
// past the series' last known year by the mean observed year-over-year
// growth rate.
func awiAt(table map[int]float64, year int) float64 {
	if v, ok := table[year]; ok {
		return v
	}
	years := sortedYears(table)
	if len(years) == 0 {
		return 0
	}
	maxYear := years[len(years)-1]
	if year <= maxYear {
		// Missing interior year: fall back to the nearest known year at or
		// before it.
		v := table[years[0]]
		for _, y := range years {
			if y > year {
				break
			}
			v = table[y]
		}
		return v
	}
	growth := meanYoYGrowth(table, years)
	v := table[maxYear]
	for y := maxYear + 1; y <= year; y++ {
		v *= 1 + growth
	}
	return v
}

// bendPointsAt extrapolates each bend-point component independently, the
// same way awiAt extrapolates a single series.
func bendPointsAt(table map[int][2]float64, year int) (float64, float64) {
	b1 := map[int]float64{}
	b2 := map[int]float64{}
	for y, pair := range table {
		b1[y] = pair[0]
		b2[y] = pair[1]
	}
	return awiAt(b1, year), awiAt(b2, year)
}

func sortedYears(table map[int]float64) []int {
	years := make([]int, 0, len(table))
	for y := range table {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func meanYoYGrowth(table map[int]float64, years []int) float64 {
	if len(years) < 2 {
		return 0
	}
	var total float64
	n := 0
	for i := 1; i < len(years); i++ {
		prev := table[years[i-1]]
		cur := table[years[i]]
		if prev == 0 {
			continue
		}
		total += (cur - prev) / prev
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// ownerAge returns whole years elapsed from birthDate to date.
func ownerAge(birthDate, date time.Time) int {
	age := date.Year() - birthDate.Year()
	if date.Month() < birthDate.Month() || (date.Month() == birthDate.Month() && date.Day() < birthDate.Day()) {
		age--
	}
	return age
}

package retirement

import (
	"sort"
	"time"

	"projector/internal/models"
)

// PensionMonthly computes the monthly pension benefit for a claimant, fixed
// at the claiming date.
func PensionMonthly(p *models.Pension, claimDate time.Time) float64 {
	years := p.HighestCompensationConsecutiveYearsToAverage
	if years <= 0 {
		years = 4
	}
	highestAvg := highestConsecutiveAverage(p.PriorAnnualCompensation, years)

	claimAge := ownerAge(p.BirthDate, claimDate)
	yearsWorked := ownerAge(p.WorkStartDate, claimDate)

	reductionFactor := pensionReductionFactor(p, claimAge, yearsWorked)

	return highestAvg * p.AccrualFactor * float64(yearsWorked) * reductionFactor / 12
}

// highestConsecutiveAverage returns the highest average of `years`
// consecutive calendar years present in compensation.
func highestConsecutiveAverage(compensation map[int]float64, years int) float64 {
	if len(compensation) == 0 || years <= 0 {
		return 0
	}
	yearList := make([]int, 0, len(compensation))
	for y := range compensation {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)

	if len(yearList) < years {
		years = len(yearList)
	}

	var best float64
	first := true
	for i := 0; i+years <= len(yearList); i++ {
		if !isConsecutive(yearList[i : i+years]) {
			continue
		}
		var sum float64
		for _, y := range yearList[i : i+years] {
			sum += compensation[y]
		}
		avg := sum / float64(years)
		if first || avg > best {
			best = avg
			first = false
		}
	}
	return best
}

func isConsecutive(years []int) bool {
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return false
		}
	}
	return true
}

// pensionReductionFactor applies the eligibility/reduction rule: 1 if any
// unreduced requirement is met, 0 if no reduced requirement is met either,
// else a clamped table lookup.
func pensionReductionFactor(p *models.Pension, age, yearsWorked int) float64 {
	if requirementMet(p.UnreducedRequirements, age, yearsWorked) {
		return 1
	}
	if !requirementMet(p.ReducedRequirements, age, yearsWorked) {
		return 0
	}
	return clampedReductionLookup(p.ReducedRateByAgeThenYearsOfService, age, yearsWorked)
}

func requirementMet(req models.PensionRequirement, age, yearsWorked int) bool {
	if req.Age != nil && age < *req.Age {
		return false
	}
	return yearsWorked >= req.YearsWorked
}

// clampedReductionLookup clamps age/years to the table's range: below the
// minimum tabulated age/years, use the minimum; above the maximum, return a
// full (unreduced) factor of 1; otherwise floor-lookup to the nearest
// tabulated key at or below the input, on both the age and years axes, since
// the table is only ever populated at the plan's breakpoint ages/years.
func clampedReductionLookup(table map[int]map[int]float64, age, yearsWorked int) float64 {
	if len(table) == 0 {
		return 0
	}

	ages := make([]int, 0, len(table))
	for a := range table {
		ages = append(ages, a)
	}
	sort.Ints(ages)

	minAge, maxAge := ages[0], ages[len(ages)-1]
	if age > maxAge {
		return 1
	}
	clampedAge := age
	if clampedAge < minAge {
		clampedAge = minAge
	}

	sub := table[floorKey(ages, clampedAge)]
	if len(sub) == 0 {
		return 0
	}
	years := make([]int, 0, len(sub))
	for y := range sub {
		years = append(years, y)
	}
	sort.Ints(years)

	minYears, maxYears := years[0], years[len(years)-1]
	if yearsWorked > maxYears {
		return 1
	}
	clampedYears := yearsWorked
	if clampedYears < minYears {
		clampedYears = minYears
	}

	return sub[floorKey(years, clampedYears)]
}

// floorKey returns the greatest element of sorted (ascending, non-empty)
// at or below value. Callers only ever pass a value already clamped to
// [sorted[0], sorted[len(sorted)-1]], so a match always exists.
func floorKey(sorted []int, value int) int {
	idx := sort.SearchInts(sorted, value)
	if idx == len(sorted) || sorted[idx] != value {
		idx--
	}
	return sorted[idx]
}

// Package apportion contains the pure cost-distribution math: day factors
// for time weighting and the per-key share formulas. Identical inputs yield
// penny-identical outputs, which is what lets per-unit results of one
// statement run sum to the statement total.
package apportion

import (
	"time"

	"github.com/shopspring/decimal"
)

// truncateDay strips the time-of-day portion.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OverlapDays returns the number of days both intervals share. Both
// endpoints count, so a single shared day is one day of overlap.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := truncateDay(aStart)
	if b := truncateDay(bStart); b.After(start) {
		start = b
	}
	end := truncateDay(aEnd)
	if b := truncateDay(bEnd); b.Before(end) {
		end = b
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// DayFactor is the fraction of the statement period covered by the overlap
// of the given interval with the period.
func DayFactor(intervalStart, intervalEnd, periodStart, periodEnd time.Time) decimal.Decimal {
	totalDays := OverlapDays(periodStart, periodEnd, periodStart, periodEnd)
	if totalDays == 0 {
		return decimal.Zero
	}
	overlap := OverlapDays(intervalStart, intervalEnd, periodStart, periodEnd)
	return decimal.NewFromInt(int64(overlap)).Div(decimal.NewFromInt(int64(totalDays)))
}

// AreaShare apportions total by the unit's share of the building's living
// area, time-weighted by dayFactor.
func AreaShare(total, unitArea, buildingArea, dayFactor decimal.Decimal) decimal.Decimal {
	if !buildingArea.IsPositive() {
		return decimal.Zero
	}
	return total.Mul(unitArea).Div(buildingArea).Mul(dayFactor)
}

// PersonsShare apportions total by the contract's share of the persons
// living in the building. Vacant units contribute zero persons and are
// excluded from the denominator by the caller.
func PersonsShare(total decimal.Decimal, persons, buildingPersons int, dayFactor decimal.Decimal) decimal.Decimal {
	if persons <= 0 || buildingPersons <= 0 {
		return decimal.Zero
	}
	return total.
		Mul(decimal.NewFromInt(int64(persons))).
		Div(decimal.NewFromInt(int64(buildingPersons))).
		Mul(dayFactor)
}

// UnitsShare apportions total evenly across the building's units,
// time-weighted by dayFactor.
func UnitsShare(total decimal.Decimal, unitCount int, dayFactor decimal.Decimal) decimal.Decimal {
	if unitCount <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(unitCount))).Mul(dayFactor)
}

// Round2 rounds to two fraction digits. Per-item shares are rounded with it
// before they are summed into a unit's total cost.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

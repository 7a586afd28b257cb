package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
)

// Open-ended lease bounds. A missing start means the lease began before
// any period of interest, a missing end that it runs past them.
var (
	leaseFarPast   = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	leaseFarFuture = time.Date(2100, time.December, 31, 0, 0, 0, 0, time.UTC)
)

var leaseDateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"01/02/2006 03:04:05 PM",
}

// ParseLeaseDate parses a lease date in any of the source-document
// formats. ok is false for empty or unparseable values.
func ParseLeaseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range leaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// OccupancyFactors computes, for each period, the fraction of that
// period's calendar days the lease was active. Both dates absent means
// full occupancy throughout.
func OccupancyFactors(periods []string, leaseStart, leaseEnd string) map[string]decimal.Decimal {
	start, startOK := ParseLeaseDate(leaseStart)
	if leaseStart != "" && !startOK {
		common.LogWarn("invalid lease start date", common.Fields{"lease_start": leaseStart})
	}
	end, endOK := ParseLeaseDate(leaseEnd)
	if leaseEnd != "" && !endOK {
		common.LogWarn("invalid lease end date", common.Fields{"lease_end": leaseEnd})
	}

	factors := make(map[string]decimal.Decimal, len(periods))
	for _, period := range periods {
		factors[period] = occupancyFactor(period, start, startOK, end, endOK)
	}
	return factors
}

func occupancyFactor(period string, start time.Time, startOK bool, end time.Time, endOK bool) decimal.Decimal {
	first, last, days, ok := PeriodBounds(period)
	if !ok {
		common.LogWarn("invalid period for occupancy", common.Fields{"period": period})
		return decimal.Zero
	}

	if !startOK && !endOK {
		return decimal.NewFromInt(1)
	}
	if !startOK {
		start = leaseFarPast
	}
	if !endOK {
		end = leaseFarFuture
	}

	if end.Before(first) || start.After(last) {
		return decimal.Zero
	}

	overlapStart := start
	if first.After(overlapStart) {
		overlapStart = first
	}
	overlapEnd := end
	if last.Before(overlapEnd) {
		overlapEnd = last
	}

	overlapDays := int(overlapEnd.Sub(overlapStart).Hours()/24) + 1
	return decimal.NewFromInt(int64(overlapDays)).Div(decimal.NewFromInt(int64(days)))
}

// AverageOccupancy computes the weighted average of the period factors.
// A nil weights map means equal weights. Zero total weight yields zero.
func AverageOccupancy(factors map[string]decimal.Decimal, weights map[string]decimal.Decimal) decimal.Decimal {
	weightedSum := decimal.Zero
	totalWeight := decimal.Zero

	for period, factor := range factors {
		weight := decimal.NewFromInt(1)
		if weights != nil {
			w, ok := weights[period]
			if !ok {
				continue
			}
			weight = w
		}
		weightedSum = weightedSum.Add(factor.Mul(weight))
		totalWeight = totalWeight.Add(weight)
	}

	if totalWeight.IsZero() {
		return decimal.Zero
	}
	return weightedSum.Div(totalWeight)
}

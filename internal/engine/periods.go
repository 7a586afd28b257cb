// Package engine implements the reconciliation calculation pipeline:
// period derivation, GL classification, expense aggregation, base-year
// adjustment, cap enforcement, occupancy proration, capital-expense
// amortization, and final billing assembly.
package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/camrecon/camrecon/internal/common"
)

// PeriodSchedule holds the derived monthly periods for one run.
// Full is Recon plus any catch-up periods not already present.
type PeriodSchedule struct {
	Recon   []string
	CatchUp []string
	Full    []string
}

// CalculatePeriods derives the reconciliation periods for a year and,
// when lastBilled (YYYYMM) falls after that year, the catch-up periods
// from January of the following year through lastBilled inclusive.
func CalculatePeriods(reconYear int, lastBilled string) PeriodSchedule {
	schedule := PeriodSchedule{Recon: ReconPeriods(reconYear)}
	if lastBilled != "" {
		schedule.CatchUp = CatchUpPeriods(reconYear, lastBilled)
	}

	schedule.Full = append([]string(nil), schedule.Recon...)
	seen := make(map[string]bool, len(schedule.Recon))
	for _, p := range schedule.Recon {
		seen[p] = true
	}
	for _, p := range schedule.CatchUp {
		if !seen[p] {
			schedule.Full = append(schedule.Full, p)
			seen[p] = true
		}
	}
	return schedule
}

// ReconPeriods returns the twelve YYYYMM periods of a year.
func ReconPeriods(reconYear int) []string {
	if reconYear <= 0 {
		return nil
	}
	periods := make([]string, 0, 12)
	for month := 1; month <= 12; month++ {
		periods = append(periods, fmt.Sprintf("%d%02d", reconYear, month))
	}
	return periods
}

// CatchUpPeriods returns the periods from January of reconYear+1 through
// lastBilled inclusive. Empty when lastBilled is malformed or does not
// fall after the reconciliation year.
func CatchUpPeriods(reconYear int, lastBilled string) []string {
	lastYear, lastMonth, ok := ParsePeriod(lastBilled)
	if !ok {
		common.LogWarn("invalid last-billed period, no catch-up generated", common.Fields{
			"last_billed": lastBilled,
		})
		return nil
	}
	if lastYear <= reconYear {
		return nil
	}

	var periods []string
	year, month := reconYear+1, 1
	for year < lastYear || (year == lastYear && month <= lastMonth) {
		periods = append(periods, fmt.Sprintf("%d%02d", year, month))
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return periods
}

// ParsePeriod splits a YYYYMM string into year and month.
func ParsePeriod(period string) (year, month int, ok bool) {
	if len(period) != 6 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(period[:4])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(period[4:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// PeriodBounds returns the first day, last day, and day count of a
// period's calendar month.
func PeriodBounds(period string) (first, last time.Time, days int, ok bool) {
	year, month, ok := ParsePeriod(period)
	if !ok {
		return time.Time{}, time.Time{}, 0, false
	}
	first = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last, last.Day(), true
}

package stats

import (
	"call-blocks/models"
	"time"

	"github.com/jinzhu/now"
)

// WorkWeekDays is the number of days, starting Monday, in an aggregation window.
const WorkWeekDays = 5

var mondayWeek = &now.Config{WeekStartDay: time.Monday}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	return mondayWeek.With(t).BeginningOfWeek()
}

// WeekDays returns the WorkWeekDays dates beginning at weekStart.
func WeekDays(weekStart time.Time) []time.Time {
	days := make([]time.Time, WorkWeekDays)
	for i := 0; i < WorkWeekDays; i++ {
		days[i] = weekStart.AddDate(0, 0, i)
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// InWeek reports whether t falls on one of the work days starting at weekStart.
// Days are compared in weekStart's location.
func InWeek(t time.Time, weekStart time.Time) bool {
	loc := weekStart.Location()
	for _, day := range WeekDays(weekStart) {
		if SameDay(t, day, loc) {
			return true
		}
	}
	return false
}

// Aggregate sums calls and minutes per SDR for blocks starting within the work week.
// Only SDRs matching view are considered, and SDRs without a qualifying call are
// left out of the result.
func Aggregate(blocks map[models.SDRID][]models.CallBlock, weekStart time.Time, view models.ViewFilter) map[models.SDRID]models.WeeklyStats {
	result := make(map[models.SDRID]models.WeeklyStats)

	for sdr, sdrBlocks := range blocks {
		if !view.Matches(sdr) {
			continue
		}

		var acc models.WeeklyStats
		for _, block := range sdrBlocks {
			if !InWeek(block.Start, weekStart) {
				continue
			}
			acc.TotalCalls += block.Calls
			acc.TotalDuration += block.Duration
		}

		if acc.TotalCalls > 0 {
			acc.AverageDuration = acc.TotalDuration / float64(acc.TotalCalls)
			result[sdr] = acc
		}
	}

	return result
}

// BlockStats sums an arbitrary list of blocks by owning SDR, with no week scoping.
func BlockStats(blocks []models.CallBlock) map[models.SDRID]models.WeeklyStats {
	result := make(map[models.SDRID]models.WeeklyStats)
	for _, block := range blocks {
		acc := result[block.SDR]
		acc.TotalCalls += block.Calls
		acc.TotalDuration += block.Duration
		result[block.SDR] = acc
	}
	for sdr, acc := range result {
		if acc.TotalCalls > 0 {
			acc.AverageDuration = acc.TotalDuration / float64(acc.TotalCalls)
			result[sdr] = acc
		}
	}
	return result
}

// Totals sums per-SDR stats into a single figure.
func Totals(bySDR map[models.SDRID]models.WeeklyStats) models.WeeklyStats {
	var total models.WeeklyStats
	for _, s := range bySDR {
		total.TotalCalls += s.TotalCalls
		total.TotalDuration += s.TotalDuration
	}
	if total.TotalCalls > 0 {
		total.AverageDuration = total.TotalDuration / float64(total.TotalCalls)
	}
	return total
}

package stats_test

import (
	"call-blocks/models"
	"call-blocks/stats"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(day, hour, minute int) time.Time {
	return time.Date(2025, 2, day, hour, minute, 0, 0, time.UTC)
}

func block(sdr models.SDRID, start time.Time, calls int, duration float64) models.CallBlock {
	return models.CallBlock{
		SDR:      sdr,
		Start:    start,
		End:      start.Add(time.Duration(duration) * time.Minute),
		Calls:    calls,
		Duration: duration,
	}
}

func TestWeekStart(t *testing.T) {
	monday := date(10, 0, 0)

	tests := map[string]struct {
		input    time.Time
		expected time.Time
	}{
		"Monday_Morning":  {date(10, 9, 30), monday},
		"Tuesday":         {date(11, 14, 0), monday},
		"Friday_Evening":  {date(14, 23, 59), monday},
		"Saturday":        {date(15, 12, 0), monday},
		"Sunday_RollBack": {date(16, 8, 0), monday},
		"Next_Monday":     {date(17, 0, 0), date(17, 0, 0)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.WeekStart(tt.input))
		})
	}
}

func TestWeekStart_KeepsLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	got := stats.WeekStart(time.Date(2025, 2, 12, 0, 30, 0, 0, paris))
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, paris), got)
	assert.Equal(t, paris, got.Location())
}

func TestWeekDays(t *testing.T) {
	days := stats.WeekDays(date(10, 0, 0))
	require.Len(t, days, stats.WorkWeekDays)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Friday, days[4].Weekday())
	assert.Equal(t, 14, days[4].Day())
}

func TestAggregate(t *testing.T) {
	weekStart := date(10, 0, 0)

	data := map[models.SDRID][]models.CallBlock{
		"marine": {
			block("marine", date(10, 9, 0), 2, 20),
			block("marine", date(12, 14, 0), 4, 40),
			block("marine", date(15, 10, 0), 3, 30), // Saturday, outside the work week
		},
		"ludovic": {
			block("ludovic", date(3, 9, 0), 5, 50), // previous week
		},
		"sylvain": {
			block("sylvain", date(14, 17, 0), 1, 0),
		},
	}

	tests := map[string]struct {
		view     models.ViewFilter
		expected map[models.SDRID]models.WeeklyStats
	}{
		"All": {
			view: models.ViewAll,
			expected: map[models.SDRID]models.WeeklyStats{
				"marine":  {TotalCalls: 6, TotalDuration: 60, AverageDuration: 10},
				"sylvain": {TotalCalls: 1, TotalDuration: 0, AverageDuration: 0},
			},
		},
		"SingleSDR": {
			view: "marine",
			expected: map[models.SDRID]models.WeeklyStats{
				"marine": {TotalCalls: 6, TotalDuration: 60, AverageDuration: 10},
			},
		},
		"SDR_WithoutCallsThisWeek_IsOmitted": {
			view:     "ludovic",
			expected: map[models.SDRID]models.WeeklyStats{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := stats.Aggregate(data, weekStart, tt.view)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAggregate_MatchesCalendarDayInWeekLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// Sunday 23:30 UTC is already Monday 00:30 in Paris.
	data := map[models.SDRID][]models.CallBlock{
		"marine": {block("marine", time.Date(2025, 2, 9, 23, 30, 0, 0, time.UTC), 3, 15)},
	}

	inParis := stats.Aggregate(data, time.Date(2025, 2, 10, 0, 0, 0, 0, paris), models.ViewAll)
	assert.Equal(t, 3, inParis["marine"].TotalCalls)

	inUTC := stats.Aggregate(data, date(10, 0, 0), models.ViewAll)
	assert.Empty(t, inUTC)
}

func TestBlockStats(t *testing.T) {
	got := stats.BlockStats([]models.CallBlock{
		block("marine", date(10, 9, 0), 2, 20),
		block("ludovic", date(10, 9, 0), 4, 10),
		block("marine", date(11, 9, 0), 2, 0),
	})

	assert.Equal(t, map[models.SDRID]models.WeeklyStats{
		"marine":  {TotalCalls: 4, TotalDuration: 20, AverageDuration: 5},
		"ludovic": {TotalCalls: 4, TotalDuration: 10, AverageDuration: 2.5},
	}, got)
}

func TestTotals(t *testing.T) {
	total := stats.Totals(map[models.SDRID]models.WeeklyStats{
		"marine":  {TotalCalls: 6, TotalDuration: 60},
		"sylvain": {TotalCalls: 4, TotalDuration: 20},
	})
	assert.Equal(t, models.WeeklyStats{TotalCalls: 10, TotalDuration: 80, AverageDuration: 8}, total)

	assert.Equal(t, models.WeeklyStats{}, stats.Totals(nil))
}

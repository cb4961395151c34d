// Package calendar lays out call blocks on a Monday-to-Friday grid of hourly slots.
package calendar

import (
	"call-blocks/models"
	"call-blocks/segmenter"
	"call-blocks/stats"
	"math"
	"time"
)

const (
	// WorkdayStartHour is the first hour row of the grid.
	WorkdayStartHour = 8
	// WorkdayHours is the number of hour rows (08:00 through 21:00).
	WorkdayHours = 14
)

// DayNames are the column titles for the work week.
var DayNames = [stats.WorkWeekDays]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"}

// Week is the grid for one work week.
type Week struct {
	Start time.Time `json:"start"`
	Days  []Day     `json:"days"`
}

// Day is one column of the grid.
type Day struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Slots []Slot    `json:"slots"`
}

// Slot is one hour cell of a day.
type Slot struct {
	Hour    int     `json:"hour"`
	Entries []Entry `json:"entries,omitempty"`
}

// Entry places one SDR's block inside a slot.
// Height and Top are fractions of the slot; Lane is the entry's position
// among the Lanes entries sharing the slot.
type Entry struct {
	SDR    models.SDRID      `json:"sdr"`
	Label  string            `json:"label"`
	Block  models.CallBlock  `json:"block"`
	Height float64           `json:"height"`
	Top    float64           `json:"top"`
	Lane   int               `json:"lane"`
	Lanes  int               `json:"lanes"`
	Color  models.BlockColor `json:"color"`
}

// Build lays out the blocks visible under view for the week starting at weekStart.
// For each SDR a slot shows the first block starting on that day and hour.
func Build(blocks map[models.SDRID][]models.CallBlock, weekStart time.Time, view models.ViewFilter, roster models.Roster) Week {
	loc := weekStart.Location()

	ids := make([]models.SDRID, 0, len(blocks))
	for sdr := range blocks {
		if view.Matches(sdr) {
			ids = append(ids, sdr)
		}
	}
	ids = roster.Order(ids)

	week := Week{Start: weekStart}
	for i, date := range stats.WeekDays(weekStart) {
		day := Day{
			Name:  DayNames[i],
			Date:  date,
			Label: date.Format(segmenter.DateLabel),
			Slots: make([]Slot, 0, WorkdayHours),
		}

		for h := 0; h < WorkdayHours; h++ {
			hour := WorkdayStartHour + h
			slot := Slot{Hour: hour}

			for _, sdr := range ids {
				block, ok := findBlock(blocks[sdr], date, hour, loc)
				if !ok {
					continue
				}
				slot.Entries = append(slot.Entries, newEntry(block, roster.Label(sdr), loc))
			}
			for j := range slot.Entries {
				slot.Entries[j].Lane = j
				slot.Entries[j].Lanes = len(slot.Entries)
			}

			day.Slots = append(day.Slots, slot)
		}

		week.Days = append(week.Days, day)
	}

	return week
}

func findBlock(blocks []models.CallBlock, date time.Time, hour int, loc *time.Location) (models.CallBlock, bool) {
	for _, block := range blocks {
		if stats.SameDay(block.Start, date, loc) && block.Start.In(loc).Hour() == hour {
			return block, true
		}
	}
	return models.CallBlock{}, false
}

func newEntry(block models.CallBlock, label string, loc *time.Location) Entry {
	return Entry{
		SDR:    block.SDR,
		Label:  label,
		Block:  block,
		Height: math.Min(math.Round(block.Duration)/60, 1),
		Top:    float64(block.Start.In(loc).Minute()) / 60,
		Color:  segmenter.Color(block.Calls),
	}
}

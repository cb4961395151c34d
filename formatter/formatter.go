package formatter

import (
	"call-blocks/calendar"
	"call-blocks/models"
	"call-blocks/segmenter"
	"call-blocks/stats"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const clock = "15:04"

var (
	dayStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	colorStyles = map[models.BlockColor]lipgloss.Style{
		models.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		models.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		models.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		models.ColorOrange: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		models.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// Report is the JSON document produced for a week.
type Report struct {
	WeekStart time.Time                           `json:"week_start"`
	View      models.ViewFilter                   `json:"view"`
	Stats     map[models.SDRID]models.WeeklyStats `json:"stats"`
	Total     models.WeeklyStats                  `json:"total"`
	Calendar  calendar.Week                       `json:"calendar"`
}

// FormatText returns the week grid followed by the weekly summary.
func FormatText(week calendar.Week, weekly map[models.SDRID]models.WeeklyStats, roster models.Roster) string {
	var sb strings.Builder
	loc := week.Start.Location()

	for _, day := range week.Days {
		sb.WriteString(dayStyle.Render(fmt.Sprintf("%s %s", day.Name, day.Label)))
		sb.WriteString("\n")

		empty := true
		for _, slot := range day.Slots {
			for _, entry := range slot.Entries {
				empty = false
				sb.WriteString(formatEntry(slot.Hour, entry, loc))
				sb.WriteString("\n")
			}
		}
		if empty {
			sb.WriteString(mutedStyle.Render("  aucun bloc"))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(FormatSummary(week.Start, weekly, roster))
	return sb.String()
}

// FormatSummary returns the per-SDR totals for the week starting at weekStart.
func FormatSummary(weekStart time.Time, weekly map[models.SDRID]models.WeeklyStats, roster models.Roster) string {
	var sb strings.Builder

	weekEnd := weekStart.AddDate(0, 0, stats.WorkWeekDays-1)
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Récapitulatif - Semaine du %s au %s",
		weekStart.Format(segmenter.DateLabel), weekEnd.Format(segmenter.DateLabel))))
	sb.WriteString("\n")

	if len(weekly) == 0 {
		sb.WriteString("Aucune donnée disponible pour cette semaine\n")
		return sb.String()
	}

	for _, sdr := range roster.Order(sdrKeys(weekly)) {
		sb.WriteString(formatStatsLine(roster.Label(sdr), weekly[sdr]))
	}
	if len(weekly) > 1 {
		sb.WriteString(formatStatsLine("Total", stats.Totals(weekly)))
	}

	return sb.String()
}

// FormatBlockDetail lists the calls of one block.
func FormatBlockDetail(block models.CallBlock, roster models.Roster) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Détails du bloc - %s", block.Date)))
	sb.WriteString("\n")
	perCall := 0.0
	if block.Calls > 0 {
		perCall = block.Duration / float64(block.Calls)
	}
	sb.WriteString(fmt.Sprintf("%s • %s-%s • %d appels • %dmin • %dmin/appel\n",
		roster.Label(block.SDR), block.Start.Format(clock), block.End.Format(clock),
		block.Calls, minutes(block.Duration), minutes(perCall)))

	for _, call := range block.Details {
		sb.WriteString(fmt.Sprintf("  %s  %s", call.Timestamp.Format(clock), orDash(call.Contact)))
		if call.Outcome != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", call.Outcome))
		}
		sb.WriteString("\n")
		if call.Note != "" {
			sb.WriteString(mutedStyle.Render("      " + call.Note))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// FormatJSON returns the JSON representation of the week
func FormatJSON(week calendar.Week, view models.ViewFilter, weekly map[models.SDRID]models.WeeklyStats) string {
	report := Report{
		WeekStart: week.Start,
		View:      view,
		Stats:     weekly,
		Total:     stats.Totals(weekly),
		Calendar:  week,
	}
	jsonBytes, _ := json.MarshalIndent(report, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns one CSV row per block
func FormatCSV(blocks []models.CallBlock, roster models.Roster) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{
		"SDR", "Label", "Date", "Start", "End", "Duration (min)", "Calls", "Color",
	})

	for _, block := range blocks {
		writer.Write([]string{
			string(block.SDR),
			roster.Label(block.SDR),
			block.Start.Format("2006-01-02"),
			block.Start.Format(clock),
			block.End.Format(clock),
			fmt.Sprintf("%d", minutes(block.Duration)),
			fmt.Sprintf("%d", block.Calls),
			string(segmenter.Color(block.Calls)),
		})
	}

	writer.Flush()
	return sb.String()
}

// formatEntry formats one block placed in an hour slot
func formatEntry(hour int, entry calendar.Entry, loc *time.Location) string {
	block := entry.Block
	text := fmt.Sprintf("%s: %d appels • %dmin", entry.Label, block.Calls, minutes(block.Duration))
	style, ok := colorStyles[entry.Color]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return fmt.Sprintf("  %02d:00  %s  %s", hour, style.Render(text),
		mutedStyle.Render(fmt.Sprintf("(%s-%s)", block.Start.In(loc).Format(clock), block.End.In(loc).Format(clock))))
}

func formatStatsLine(label string, s models.WeeklyStats) string {
	return fmt.Sprintf("  %s: %d appels • %dmin • %.1fmin/appel\n",
		label, s.TotalCalls, minutes(s.TotalDuration), s.AverageDuration)
}

// minutes rounds a duration in minutes for display
func minutes(d float64) int {
	return int(math.Round(d))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sdrKeys(m map[models.SDRID]models.WeeklyStats) []models.SDRID {
	ids := make([]models.SDRID, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	return ids
}

package main

import (
	"call-blocks/formatter"
	"call-blocks/models"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var validFormats = map[string]bool{"text": true, "json": true, "csv": true}

func newWeekCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the call-block calendar and summary for a work week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyWeekFlags(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch a.format {
			case "json":
				fmt.Fprintln(out, formatter.FormatJSON(a.store.Grid(), a.store.View(), a.store.Stats()))
			case "csv":
				fmt.Fprint(out, formatter.FormatCSV(a.store.WeekBlocks(), a.cfg.Roster))
			default:
				fmt.Fprint(out, formatter.FormatText(a.store.Grid(), a.store.Stats(), a.cfg.Roster))
			}
			return nil
		},
	}
	addWeekFlags(cmd, a)
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show weekly call totals per SDR",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyWeekFlags(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(a.store.Week(), a.store.Stats(), a.cfg.Roster))
			return nil
		},
	}
	addWeekFlags(cmd, a)
	return cmd
}

func newBlocksCmd(a *app) *cobra.Command {
	var (
		sdr     string
		blockID string
	)

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the call blocks of an SDR, or the calls of one block",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if blockID != "" {
				id, err := uuid.Parse(blockID)
				if err != nil {
					return fmt.Errorf("invalid --block: %w", err)
				}
				block, err := a.store.Select(id)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatBlockDetail(block, a.cfg.Roster))
				return nil
			}

			id := models.SDRID(strings.ToLower(sdr))
			if !a.cfg.Roster.Has(id) {
				return fmt.Errorf("unknown sdr %q", sdr)
			}
			for _, block := range a.store.Blocks(id) {
				fmt.Fprintf(out, "%s  %s %s-%s  %d appels • %.0fmin\n",
					block.ID, block.Start.Format("2006-01-02"), block.Start.Format("15:04"),
					block.End.Format("15:04"), block.Calls, block.Duration)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sdr, "sdr", "", "SDR whose blocks to list")
	cmd.Flags().StringVar(&blockID, "block", "", "show the calls of the block with this ID")
	return cmd
}

func newRosterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List the configured SDRs",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			loaded := make(map[models.SDRID]bool)
			for _, id := range a.store.SDRs() {
				loaded[id] = true
			}
			for _, s := range a.cfg.Roster {
				marker := " "
				if loaded[s.ID] {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-12s %s\n", marker, s.ID, s.Label)
			}
			return nil
		},
	}
}

func addWeekFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVarP(&a.week, "week", "w", "", "any date of the week to show, YYYY-MM-DD (default: current week)")
	cmd.Flags().StringVar(&a.view, "view", string(models.ViewAll), "all, or a single SDR id")
	cmd.Flags().StringVarP(&a.format, "format", "f", "text", "Output format: text|json|csv")
}

// applyWeekFlags validates the week-scoped flags and pushes them into the store.
func (a *app) applyWeekFlags() error {
	if !validFormats[a.format] {
		return fmt.Errorf("format must be one of: text, json, csv (got: %s)", a.format)
	}
	if a.week != "" {
		t, err := time.ParseInLocation("2006-01-02", a.week, a.cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --week: %w", err)
		}
		a.store.SetWeek(t)
	}
	return a.store.SetView(models.ViewFilter(strings.ToLower(a.view)))
}

// importFile replaces the dataset of sdr with the CSV file at path.
func (a *app) importFile(sdr models.SDRID, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err := a.store.Import(sdr, file); err != nil {
		return fmt.Errorf("import %s for %s: %w", path, sdr, err)
	}
	return nil
}

// parseInput splits an --input value of the form sdr=path.
func parseInput(value string) (models.SDRID, string, error) {
	sdr, path, ok := strings.Cut(value, "=")
	sdr = strings.ToLower(strings.TrimSpace(sdr))
	path = strings.TrimSpace(path)
	if !ok || sdr == "" || path == "" {
		return "", "", fmt.Errorf("invalid --input %q: expected sdr=path", value)
	}
	return models.SDRID(sdr), path, nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/shift-points/engine"
	"github.com/warp/shift-points/rules"
)

func newEntriesCmd(app *App) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List logged shifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.resolve(app.Now())
			if err != nil {
				return err
			}
			entries, err := app.Store.ListEntries(context.Background(), p.Start, p.End)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No entries between %s and %s.\n", p.Start, p.End)
				return nil
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				category := e.CategoryText()
				if !e.Category.Valid() {
					category = strings.TrimSpace(category + " (unknown)")
				}
				rows[i] = []string{
					string(e.ID), e.Date.String(), category, e.Start, e.End,
					fmt.Sprint(e.ExamCount), yesNo(e.Holiday), e.Notes,
				}
			}
			renderTable(out, []string{"ID", "Date", "Category", "Start", "End", "Exams", "Holiday", "Notes"}, rows, nil)
			return nil
		},
	}

	period.register(cmd)
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var (
		date, category, start, end, notes string
		exams                             int
		productivity, extra               string
		holiday                           bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a shift",
		Example: `  pointsctl add --date 2025-03-10 --category assigned --start 7am --end 5pm
  pointsctl add --date 2025-03-07 --category restricted_in_house --start 22:00 --end 02:00 --exams 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := engine.ParseDate(strings.TrimSpace(date))
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			c, err := engine.ParseCategory(category)
			if err != nil {
				return err
			}
			prod, err := optionalDecimal("--productivity", productivity)
			if err != nil {
				return err
			}
			ext, err := optionalDecimal("--extra", extra)
			if err != nil {
				return err
			}

			entry := engine.ShiftEntry{
				ID:           engine.EntryID(uuid.NewString()),
				Date:         d,
				Category:     c,
				Start:        strings.TrimSpace(start),
				End:          strings.TrimSpace(end),
				ExamCount:    exams,
				Productivity: prod,
				Extra:        ext,
				Holiday:      holiday,
				Notes:        notes,
			}
			if err := engine.Check(app.Rules, entry); err != nil {
				return err
			}
			if err := app.Store.SaveEntry(context.Background(), entry); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s on %s\n",
				successColor.Sprint("Added"), entry.ID, c.Label(), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Shift date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "Category label or id (e.g. assigned)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (e.g. 07:00, 730, 5pm)")
	cmd.Flags().StringVar(&end, "end", "", "End time; earlier than start means next day")
	cmd.Flags().IntVar(&exams, "exams", 0, "Number of TEE exams")
	cmd.Flags().StringVar(&productivity, "productivity", "", "Productivity points")
	cmd.Flags().StringVar(&extra, "extra", "", "Extra points")
	cmd.Flags().BoolVar(&holiday, "holiday", false, "Treat the date as a holiday")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a shift entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteEntry(context.Background(), engine.EntryID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successColor.Sprint("Deleted"), args[0])
			return nil
		},
	}
}

func newRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule set as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rules.ToJSON(app.Rules))
		},
	}
}

func optionalDecimal(flag, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", flag, err)
	}
	return d, nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/warp/shift-points/engine"
)

func newDaysCmd(app *App) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "days",
		Short: "Show daily totals with the running monthly total",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.resolve(app.Now())
			if err != nil {
				return err
			}
			result, err := app.compute(context.Background(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Days) == 0 {
				fmt.Fprintf(out, "No entries between %s and %s.\n", p.Start, p.End)
				writeIssues(out, result.Issues)
				return nil
			}

			summary := result.Summary()
			running := make(map[engine.Date]string, len(result.Days))
			for _, m := range summary.Months {
				for _, d := range m.Days {
					running[d.Date] = points(d.Running)
				}
			}

			headers := []string{"Date", "Off", "Hours", "Day", "Evening", "Night", "Time", "Floor", "Adders", "Total", "Running"}
			rows := make([][]string, len(result.Days))
			for i, d := range result.Days {
				adders := d.FlatPoints.Add(d.ExamPoints).Add(d.ProductivityPoints).Add(d.ExtraPoints)
				floor := ""
				if d.FloorApplied {
					floor = "+" + points(d.FloorTopUp)
				}
				rows[i] = []string{
					d.Date.String() + " " + d.Date.Weekday().String()[:3],
					yesNo(d.OffDay),
					engine.FormatMinutes(d.Minutes()),
					engine.FormatMinutes(d.Band(engine.BandDay).Minutes),
					engine.FormatMinutes(d.Band(engine.BandEvening).Minutes),
					engine.FormatMinutes(d.Band(engine.BandNight).Minutes),
					points(d.TimePoints),
					floor,
					points(adders),
					points(d.Total),
					running[d.Date],
				}
			}

			renderTable(out, headers, rows, func(r, col int) *color.Color {
				switch {
				case col == 1 && result.Days[r].OffDay:
					return offDayColor
				case col == 7:
					return floorColor
				case col == 9:
					return totalColor
				}
				return nil
			})

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Total %s .. %s: %s\n", p.Start, p.End, totalColor.Sprint(points(summary.GrandTotal)))
			writeIssues(out, result.Issues)
			return nil
		},
	}

	period.register(cmd)
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show monthly totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.resolve(app.Now())
			if err != nil {
				return err
			}
			result, err := app.compute(context.Background(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			summary := result.Summary()
			rows := make([][]string, len(summary.Months))
			for i, m := range summary.Months {
				rows[i] = []string{m.Month.String(), fmt.Sprint(len(m.Days)), points(m.Total)}
			}
			renderTable(out, []string{"Month", "Days", "Total"}, rows, func(_, col int) *color.Color {
				if col == 2 {
					return totalColor
				}
				return nil
			})

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Grand total: %s (rule set %s)\n", totalColor.Sprint(points(summary.GrandTotal)), app.Rules.Version)
			writeIssues(out, result.Issues)
			return nil
		},
	}

	period.register(cmd)
	return cmd
}

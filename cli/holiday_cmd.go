package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/warp/shift-points/engine"
)

func newHolidayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage the holiday calendar",
	}
	cmd.AddCommand(
		newHolidayAddCmd(app),
		newHolidayListCmd(app),
		newHolidayRmCmd(app),
	)
	return cmd
}

func newHolidayAddCmd(app *App) *cobra.Command {
	var date, name string
	var recurring bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a holiday",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := engine.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			h := engine.Holiday{
				ID:        "hol-" + uuid.NewString(),
				Date:      d,
				Name:      strings.TrimSpace(name),
				Recurring: recurring,
			}
			if err := app.Store.SaveHoliday(context.Background(), h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", successColor.Sprint("Added"), h.ID, h.Name, h.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Holiday date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&name, "name", "", "Holiday name")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Repeat every year on the same month and day")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newHolidayListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List holidays",
		RunE: func(cmd *cobra.Command, args []string) error {
			holidays, err := app.Store.ListHolidays(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(holidays) == 0 {
				fmt.Fprintln(out, "No holidays.")
				return nil
			}
			rows := make([][]string, len(holidays))
			for i, h := range holidays {
				rows[i] = []string{h.ID, h.Date.String(), h.Name, yesNo(h.Recurring)}
			}
			renderTable(out, []string{"ID", "Date", "Name", "Recurring"}, rows, nil)
			return nil
		},
	}
}

func newHolidayRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteHoliday(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successColor.Sprint("Deleted"), args[0])
			return nil
		},
	}
}

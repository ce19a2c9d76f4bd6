/*
Package cli implements pointsctl, the command-line front end of the
points engine.

PURPOSE:
  Logs shifts and prints computed daily and monthly totals straight from
  the SQLite database, without the HTTP server. Every command that
  prints totals runs the same calculator as the API.

COMMANDS:
  entries / add / rm     Manage shift entries
  days                   Daily totals with running monthly total
  summary                Monthly rollup
  holiday add|list|rm    Holiday calendar
  export entries|daily   CSV sheets
  import FILE            Load an entry sheet
  rules                  Active rule set as JSON

PERIODS:
  --month YYYY-MM, or --from/--to (inclusive). Default: current month.

SEE ALSO:
  - cmd/pointsctl/main.go: wiring
  - api/handlers.go: the same operations over HTTP
*/
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/warp/shift-points/engine"
)

// App holds the dependencies shared by every command.
type App struct {
	Store engine.Store
	Rules engine.RuleSet
	Now   func() time.Time
}

// NewRootCmd creates the top-level "pointsctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Now == nil {
		app.Now = time.Now
	}

	var noColor bool
	root := &cobra.Command{
		Use:           "pointsctl",
		Short:         "Shift compensation points calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newEntriesCmd(app),
		newAddCmd(app),
		newRmCmd(app),
		newDaysCmd(app),
		newSummaryCmd(app),
		newHolidayCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newRulesCmd(app),
	)

	return root
}

// =============================================================================
// PERIOD FLAGS
// =============================================================================

type periodFlags struct {
	month string
	from  string
	to    string
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.month, "month", "", "Calendar month (YYYY-MM)")
	cmd.Flags().StringVar(&f.from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last date (YYYY-MM-DD)")
}

func (f *periodFlags) resolve(now time.Time) (engine.Period, error) {
	month := engine.DateOf(now).MonthKey()
	if f.month != "" {
		t, err := time.Parse("2006-01", f.month)
		if err != nil {
			return engine.Period{}, fmt.Errorf("invalid --month %q: want YYYY-MM", f.month)
		}
		month = engine.MonthKey{Year: t.Year(), Month: t.Month()}
	}
	p := engine.MonthPeriod(month)

	if f.from != "" {
		d, err := engine.ParseDate(f.from)
		if err != nil {
			return p, fmt.Errorf("invalid --from: %w", err)
		}
		p.Start = d
	}
	if f.to != "" {
		d, err := engine.ParseDate(f.to)
		if err != nil {
			return p, fmt.Errorf("invalid --to: %w", err)
		}
		p.End = d
	}
	if !p.Valid() {
		return p, fmt.Errorf("--to %s precedes --from %s", p.End, p.Start)
	}
	return p, nil
}

func (app *App) compute(ctx context.Context, p engine.Period) (engine.Result, error) {
	entries, calendar, err := engine.LoadPeriod(ctx, app.Store, p)
	if err != nil {
		return engine.Result{}, err
	}
	return engine.NewCalculator(app.Rules, calendar).Compute(entries).Within(p), nil
}

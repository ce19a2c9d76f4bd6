package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/shift-points/export"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV sheets",
	}
	cmd.AddCommand(
		newExportSheetCmd(app, "entries", "Entry sheet, one row per logged shift"),
		newExportSheetCmd(app, "daily", "Daily summary sheet with running monthly total"),
	)
	return cmd
}

func newExportSheetCmd(app *App, sheet, short string) *cobra.Command {
	var period periodFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   sheet,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := period.resolve(app.Now())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, ferr := os.Create(outPath)
				if ferr != nil {
					return ferr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			ctx := context.Background()
			switch sheet {
			case "entries":
				entries, err := app.Store.ListEntries(ctx, p.Start, p.End)
				if err != nil {
					return err
				}
				return export.WriteEntries(w, entries)
			default:
				result, err := app.compute(ctx, p)
				if err != nil {
					return err
				}
				return export.WriteDaily(w, result.Days)
			}
		},
	}

	period.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load an entry sheet (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			entries, err := export.ReadEntries(r)
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, e := range entries {
				if err := app.Store.SaveEntry(ctx, e); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries\n", successColor.Sprint("Imported"), len(entries))
			return nil
		},
	}
}

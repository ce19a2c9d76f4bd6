package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

var (
	headerColor  = color.New(color.Bold, color.Underline)
	offDayColor  = color.New(color.FgYellow)
	totalColor   = color.New(color.FgGreen, color.Bold)
	floorColor   = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	rejectColor  = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen)
)

const colGap = 2

// cellStyle picks a color for a cell, or nil for plain text.
type cellStyle func(row, col int) *color.Color

// renderTable writes rows aligned under headers. Cells are padded before
// coloring so escape codes never skew the column widths.
func renderTable(w io.Writer, headers []string, rows [][]string, style cellStyle) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeRow := func(cells []string, colorFor func(col int) *color.Color) {
		var b strings.Builder
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			padded := cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
			if c := colorFor(i); c != nil {
				padded = c.Sprint(padded)
			}
			b.WriteString(padded)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	writeRow(headers, func(int) *color.Color { return headerColor })
	for r, row := range rows {
		writeRow(row, func(col int) *color.Color {
			if style == nil {
				return nil
			}
			return style(r, col)
		})
	}
}

func points(d decimal.Decimal) string { return d.StringFixed(2) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func writeIssues(w io.Writer, issues []*engine.EntryError) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d issue(s):\n", len(issues))
	for _, issue := range issues {
		c := warnColor
		if issue.Severity() == engine.SeverityRejected {
			c = rejectColor
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			c.Sprintf("%-8s", issue.Severity()),
			dimColor.Sprintf("%-26s", issue.Kind()),
			issue.Error(),
		)
	}
}

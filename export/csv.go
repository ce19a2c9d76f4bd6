/*
Package export writes entries and computed days as CSV.

PURPOSE:
  Produces the two sheets payroll reviewers work from: the raw entry
  log and the daily summary with per-band hours and the running monthly
  total. ReadEntries accepts the entry sheet back, so a log can be
  moved between databases or prepared in a spreadsheet.

FORMATS:
  entries.csv: Date, Category, Start, End, TEE Exams, Productivity Points,
               Extra Points, Holiday, Notes
  daily.csv:   Date, Hours, Day, Evening, Night, Time Points,
               Floor Applied, Total, Running Monthly Total

  Durations render as H:MM. Categories use their exact label; an unknown category's original
  text is written back as it was read.

SEE ALSO:
  - engine/rollup.go: running monthly totals
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

var (
	EntryHeader = []string{
		"Date", "Category", "Start", "End", "TEE Exams",
		"Productivity Points", "Extra Points", "Holiday", "Notes",
	}
	DailyHeader = []string{
		"Date", "Hours", "Day", "Evening", "Night",
		"Time Points", "Floor Applied", "Total", "Running Monthly Total",
	}
)

// =============================================================================
// WRITERS
// =============================================================================

// WriteEntries writes entries in the order given.
func WriteEntries(w io.Writer, entries []engine.ShiftEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EntryHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Date.String(),
			e.CategoryText(),
			e.Start,
			e.End,
			strconv.Itoa(e.ExamCount),
			e.Productivity.String(),
			e.Extra.String(),
			yesNo(e.Holiday),
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDaily writes one row per day, sorted by date, with the running
// total reset at each month boundary.
func WriteDaily(w io.Writer, days []engine.DailyTotal) error {
	summary := engine.Rollup(days)
	byDate := make(map[engine.Date]engine.DailyTotal, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(DailyHeader); err != nil {
		return err
	}
	for _, month := range summary.Months {
		for _, rd := range month.Days {
			d := byDate[rd.Date]
			record := []string{
				d.Date.String(),
				engine.FormatMinutes(d.Minutes()),
				engine.FormatMinutes(d.Band(engine.BandDay).Minutes),
				engine.FormatMinutes(d.Band(engine.BandEvening).Minutes),
				engine.FormatMinutes(d.Band(engine.BandNight).Minutes),
				d.TimePoints.Add(d.FloorTopUp).StringFixed(2),
				yesNo(d.FloorApplied),
				d.Total.StringFixed(2),
				rd.Running.StringFixed(2),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// =============================================================================
// READER
// =============================================================================

// RowError reports a CSV row that could not be read.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// ReadEntries parses an entries.csv sheet. Every row gets a fresh ID.
//
// Clock text is kept verbatim and an unrecognized category is loaded as
// CategoryUnknown; both are judged later by the calculator. Only rows
// whose numeric or date columns cannot be read fail here.
func ReadEntries(r io.Reader) ([]engine.ShiftEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"Date", "Category", "Start", "End"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var entries []engine.ShiftEntry
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		e := engine.ShiftEntry{
			ID:      engine.EntryID(uuid.NewString()),
			Start:   get("Start"),
			End:     get("End"),
			Holiday: strings.EqualFold(get("Holiday"), "yes") || strings.EqualFold(get("Holiday"), "true"),
			Notes:   get("Notes"),
		}
		if e.Date, err = engine.ParseDate(get("Date")); err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if e.Category, err = engine.ParseCategory(get("Category")); err != nil {
			e.CategoryLabel = get("Category")
		}
		if s := get("TEE Exams"); s != "" {
			if e.ExamCount, err = strconv.Atoi(s); err != nil {
				return nil, &RowError{Line: line, Err: fmt.Errorf("TEE Exams: %w", err)}
			}
		}
		if e.Productivity, err = optionalDecimal(get("Productivity Points")); err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("Productivity Points: %w", err)}
		}
		if e.Extra, err = optionalDecimal(get("Extra Points")); err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("Extra Points: %w", err)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

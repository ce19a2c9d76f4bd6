/*
calculator.go - Batch pipeline

PURPOSE:
  Runs a whole batch of entries through normalizer, allocator,
  aggregator and rollup. Bad entries are collected as issues; the rest
  of the batch is always computed.

OFF-DAY RULE:
  A date uses weekend/holiday rates when it is a Saturday or Sunday,
  when the holiday calendar lists it, or when any accepted entry dated
  that day carries the holiday flag.

DATE ATTRIBUTION:
  Minutes belong to the date they fall on, so a 22:00-02:00 shift
  credits two dates. Adders (exams, productivity, extra, flat daily)
  belong to the entry's own date.

USAGE:
  calc := engine.NewCalculator(rules.MWA2025(), holidays)
  result := calc.Compute(entries)
  for _, issue := range result.Issues { ... }
  summary := result.Summary()

SEE ALSO:
  - allocate.go, aggregate.go, rollup.go
*/
package engine

import (
	"fmt"
	"sort"
)

// Calculator computes daily totals under one rule set. It is an
// immutable value and safe for concurrent use.
type Calculator struct {
	Rules    RuleSet
	Holidays HolidayCalendar
}

// NewCalculator creates a calculator. A nil calendar means no holidays.
func NewCalculator(rules RuleSet, holidays HolidayCalendar) Calculator {
	if holidays == nil {
		holidays = NoHolidays{}
	}
	return Calculator{Rules: rules, Holidays: holidays}
}

// Result is the outcome of one batch computation.
type Result struct {
	Days   []DailyTotal
	Issues []*EntryError
}

// Summary rolls the result's days up by month.
func (r Result) Summary() Summary { return Rollup(r.Days) }

// Day returns the total for d, if the batch touched it.
func (r Result) Day(d Date) (DailyTotal, bool) {
	for _, day := range r.Days {
		if day.Date == d {
			return day, true
		}
	}
	return DailyTotal{}, false
}

// Rejected returns the issues that dropped an entry from computation.
func (r Result) Rejected() []*EntryError {
	var out []*EntryError
	for _, i := range r.Issues {
		if i.Severity() == SeverityRejected {
			out = append(out, i)
		}
	}
	return out
}

// Within keeps the days inside p and the issues dated inside p. Issues
// without a usable date are always kept.
func (r Result) Within(p Period) Result {
	var out Result
	for _, d := range r.Days {
		if p.Contains(d.Date) {
			out.Days = append(out.Days, d)
		}
	}
	for _, issue := range r.Issues {
		if issue.Date.IsZero() || p.Contains(issue.Date) {
			out.Issues = append(out.Issues, issue)
		}
	}
	return out
}

// IsOffDay reports whether weekend/holiday rates apply to d.
func (c Calculator) IsOffDay(d Date, flagged bool) bool {
	return flagged || d.IsWeekend() || c.Holidays.IsHoliday(d)
}

// Validate checks the fields the engine relies on. Errors wrap
// ErrMalformedRecord or ErrUnknownCategory.
func Validate(e ShiftEntry) error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrMalformedRecord)
	}
	if e.ExamCount < 0 {
		return fmt.Errorf("%w: exam count %d is negative", ErrMalformedRecord, e.ExamCount)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.CategoryLabel)
	}
	return nil
}

// Check reports the first problem Compute would raise for e under rs:
// a malformed record, an unknown category, or for minute-rated
// categories unparseable clock text or an over-long span.
func Check(rs RuleSet, e ShiftEntry) error {
	if err := Validate(e); err != nil {
		return err
	}
	if rs.Claims(e.Category) {
		if _, err := NormalizeEntry(e); err != nil {
			return err
		}
	}
	return nil
}

// Compute runs the full pipeline over entries, in their given order.
// Identical input always produces identical output.
func (c Calculator) Compute(entries []ShiftEntry) Result {
	var result Result

	slicesByDate := make(map[Date][]DaySlice)
	entriesByDate := make(map[Date][]ShiftEntry)
	flagged := make(map[Date]bool)

	for i, e := range entries {
		issue := func(err error) {
			result.Issues = append(result.Issues, &EntryError{Index: i, EntryID: e.ID, Date: e.Date, Err: err})
		}

		if err := Validate(e); err != nil {
			issue(err)
			continue
		}

		if c.Rules.Claims(e.Category) {
			slices, err := NormalizeEntry(e)
			if err != nil {
				issue(err)
				continue
			}
			for _, s := range slices {
				slicesByDate[s.Date] = append(slicesByDate[s.Date], s)
			}
		}

		entriesByDate[e.Date] = append(entriesByDate[e.Date], e)
		if e.Holiday {
			flagged[e.Date] = true
		}
	}

	dates := make([]Date, 0, len(entriesByDate)+len(slicesByDate))
	seen := make(map[Date]bool)
	for d := range entriesByDate {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for d := range slicesByDate {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		result.Days = append(result.Days, c.computeDay(d, flagged[d], slicesByDate[d], entriesByDate[d]))
	}
	return result
}

func (c Calculator) computeDay(d Date, flagged bool, slices []DaySlice, entries []ShiftEntry) DailyTotal {
	offDay := c.IsOffDay(d, flagged)
	minutes := Allocate(c.Rules, d, offDay, slices)
	return Aggregate(c.Rules, minutes, entries)
}

package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no clock, no zone)
// =============================================================================

// DateLayout is the ISO-8601 layout used for every serialized date.
const DateLayout = "2006-01-02"

// Date is a calendar date. It is comparable and safe as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a normalized date (overflowing days roll into the next month).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

// At returns d at the given clock time, UTC.
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }
func (d Date) IsZero() bool       { return d == Date{} }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsWeekend() bool       { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Date) MonthKey() MonthKey    { return MonthKey{Year: d.Year, Month: d.Month} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONTH KEY - Rollup grouping key
// =============================================================================

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (m MonthKey) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m MonthKey) Before(o MonthKey) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m MonthKey) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a date on which weekend/holiday rates apply.
type Holiday struct {
	ID        string
	Date      Date
	Name      string
	Recurring bool // true = same month/day every year
}

// Matches reports whether the holiday falls on d.
func (h Holiday) Matches(d Date) bool {
	if h.Recurring {
		return h.Date.Month == d.Month && h.Date.Day == d.Day
	}
	return h.Date == d
}

// HolidayCalendar provides holiday lookup. Implementations must be safe
// for concurrent reads.
type HolidayCalendar interface {
	IsHoliday(date Date) bool
}

// NoHolidays is the calendar used when none is configured.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool { return false }

// HolidayList is an immutable in-memory calendar.
type HolidayList []Holiday

func (l HolidayList) IsHoliday(d Date) bool {
	for _, h := range l {
		if h.Matches(d) {
			return true
		}
	}
	return false
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b Date) int { return int(b.Time().Sub(a.Time()).Hours() / 24) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date   { return NewDate(year, month+1, 1).AddDays(-1) }

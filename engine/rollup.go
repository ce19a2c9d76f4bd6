package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD ROLLUP - Monthly and grand totals derived from DailyTotals
// =============================================================================

// RunningDay is one daily total with the month's cumulative sum after it.
type RunningDay struct {
	Date    Date            `json:"date"`
	Total   decimal.Decimal `json:"total"`
	Running decimal.Decimal `json:"running"`
}

// MonthlyTotal aggregates one calendar month.
type MonthlyTotal struct {
	Month MonthKey        `json:"month"`
	Total decimal.Decimal `json:"total"`
	Days  []RunningDay    `json:"days"`
}

// Summary is the full rollup over a set of daily totals.
type Summary struct {
	Months     []MonthlyTotal  `json:"months"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Month returns the rollup for key, if present.
func (s Summary) Month(key MonthKey) (MonthlyTotal, bool) {
	for _, m := range s.Months {
		if m.Month == key {
			return m, true
		}
	}
	return MonthlyTotal{}, false
}

// Rollup groups daily totals by month and computes running totals.
// It holds no state: the same input always yields the same summary.
// Days sharing a date keep their input order.
func Rollup(days []DailyTotal) Summary {
	ordered := make([]DailyTotal, len(days))
	copy(ordered, days)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	summary := Summary{GrandTotal: decimal.Zero}
	for _, d := range ordered {
		key := d.Date.MonthKey()
		if n := len(summary.Months); n == 0 || summary.Months[n-1].Month != key {
			summary.Months = append(summary.Months, MonthlyTotal{Month: key, Total: decimal.Zero})
		}
		month := &summary.Months[len(summary.Months)-1]
		month.Total = month.Total.Add(d.Total)
		month.Days = append(month.Days, RunningDay{Date: d.Date, Total: d.Total, Running: month.Total})
		summary.GrandTotal = summary.GrandTotal.Add(d.Total)
	}
	return summary
}

// =============================================================================
// PERIOD - Closed date range used for queries
// =============================================================================

// Period is the inclusive date range [Start, End].
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the period covering one calendar month.
func MonthPeriod(key MonthKey) Period {
	return Period{Start: StartOfMonth(key.Year, key.Month), End: EndOfMonth(key.Year, key.Month)}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool { return !d.Before(p.Start) && !d.After(p.End) }

// Valid returns false when End precedes Start.
func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// Days returns every date in the period.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string { return "[" + p.Start.String() + ", " + p.End.String() + "]" }

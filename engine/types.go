/*
Package engine provides the shift points computation core.

PURPOSE:
  Turns a batch of logged shifts into daily and monthly point totals.
  The engine is pure computation: no I/O, no logging, no state shared
  between calls. Persistence, HTTP and export are collaborators living
  in other packages (store/, api/, export/).

PIPELINE (leaf to root):
  1. clock.go:     free-form clock text -> Clock
  2. interval.go:  (start, end) -> day-bounded DaySlices
  3. rate.go:      (category, minute, off-day) -> points per hour
  4. allocate.go:  per-date dominance over a 1440-minute arena
  5. aggregate.go: winners + adders -> DailyTotal
  6. rollup.go:    DailyTotals -> monthly running totals

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftEntry: one logged shift as handed over by the record store
  - DaySlice: a single-date minute range produced by the normalizer
  - DailyTotal: the computed result for one calendar date
  - Points helpers over decimal.Decimal

DESIGN PRINCIPLES:
  1. Precision: points are decimal.Decimal, never float64
  2. Immutability: entries are values; every computation starts from scratch
  3. Partial results: a bad entry is reported, never fatal to the batch

SEE ALSO:
  - calculator.go: batch pipeline entry point
  - errors.go: per-entry error taxonomy
  - rules/: canonical rule set presets and JSON loading
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// POINTS - decimal helpers
// =============================================================================

// MinutesPerDay is the size of the per-date minute arena.
const MinutesPerDay = 1440

var (
	sixty = decimal.NewFromInt(60)
)

// pointsFor converts minutes at an hourly rate into points.
func pointsFor(minutes int, perHour decimal.Decimal) decimal.Decimal {
	return perHour.Mul(decimal.NewFromInt(int64(minutes))).Div(sixty)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntryID string

// =============================================================================
// SHIFT ENTRY - Input record
// =============================================================================

// ShiftEntry is one logged shift. Start and End hold the raw clock text
// exactly as entered; they are parsed on every computation.
//
// CategoryLabel keeps the text an unrecognised category arrived with, so
// stores and exports can write it back unchanged. It is ignored while
// Category is valid.
type ShiftEntry struct {
	ID            EntryID
	Date          Date
	Category      Category
	CategoryLabel string
	Start         string
	End          string
	ExamCount     int
	Productivity  decimal.Decimal
	Extra         decimal.Decimal
	Holiday       bool
	Notes         string
}

// CategoryText is the category as stored and exported: the canonical
// label, or the original text of an unknown category.
func (e ShiftEntry) CategoryText() string {
	if e.Category.Valid() {
		return e.Category.Label()
	}
	return e.CategoryLabel
}

// =============================================================================
// DAY SLICE - Normalized minute range within one date
// =============================================================================

// DaySlice is a half-open minute range [Start, End) on a single date.
type DaySlice struct {
	Date     Date
	Start    int
	End      int
	Category Category
}

// Minutes returns the elapsed minutes covered by the slice.
func (s DaySlice) Minutes() int { return s.End - s.Start }

// =============================================================================
// DAILY TOTAL - Aggregator output
// =============================================================================

// CategoryTally is the share of a day credited to one category.
type CategoryTally struct {
	Category Category        `json:"category"`
	Minutes  int             `json:"minutes"`
	Points   decimal.Decimal `json:"points"`
}

// BandTally is the share of a day's winning minutes falling in one band.
type BandTally struct {
	Band    Band            `json:"band"`
	Minutes int             `json:"minutes"`
	Points  decimal.Decimal `json:"points"`
}

// DailyTotal is the computed result for one calendar date.
type DailyTotal struct {
	Date   Date `json:"date"`
	OffDay bool `json:"off_day"`

	TimePoints         decimal.Decimal `json:"time_points"`
	FloorTopUp         decimal.Decimal `json:"floor_top_up"`
	FlatPoints         decimal.Decimal `json:"flat_points"`
	ExamPoints         decimal.Decimal `json:"exam_points"`
	ProductivityPoints decimal.Decimal `json:"productivity_points"`
	ExtraPoints        decimal.Decimal `json:"extra_points"`
	Total              decimal.Decimal `json:"total"`
	FloorApplied       bool            `json:"floor_applied"`

	Categories []CategoryTally `json:"categories"`
	Bands      []BandTally     `json:"bands"`
}

// Minutes returns the total number of credited minutes for the day.
func (d DailyTotal) Minutes() int {
	total := 0
	for _, c := range d.Categories {
		total += c.Minutes
	}
	return total
}

// Category returns the tally for c, or a zero tally.
func (d DailyTotal) Category(c Category) CategoryTally {
	for _, t := range d.Categories {
		if t.Category == c {
			return t
		}
	}
	return CategoryTally{Category: c, Points: decimal.Zero}
}

// Band returns the tally for b, or a zero tally.
func (d DailyTotal) Band(b Band) BandTally {
	for _, t := range d.Bands {
		if t.Band == b {
			return t
		}
	}
	return BandTally{Band: b, Points: decimal.Zero}
}

/*
rate.go - Categories, bands and the rate model

PURPOSE:
  Maps (category, minute of day, weekend-or-holiday) to points per hour.
  Categories form a closed enum; each one carries its CategoryRule in the
  active RuleSet, so lookups are exhaustive over the set instead of
  string matching.

BANDS:
  Day      07:00-17:00
  Evening  17:00-23:00
  Night    23:00-07:00

  Weekdays use a distinct multiplier per band. Weekends and holidays
  collapse Evening and Night into a single off-hours multiplier; the
  band classification itself stays clock-based so reports can still
  break hours down into the three tiers.

SEE ALSO:
  - rules/presets.go: canonical rule set values
  - allocate.go: consults Rate for every claimed minute
*/
package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Closed set of duty categories
// =============================================================================

type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryAssigned
	CategoryActivation
	CategoryRestrictedInHouse
	CategoryUnrestrictedCall
	CategorySubspecialtyCoverage
)

// Categories lists the closed set in canonical order.
var Categories = []Category{
	CategoryAssigned,
	CategoryActivation,
	CategoryRestrictedInHouse,
	CategoryUnrestrictedCall,
	CategorySubspecialtyCoverage,
}

var categoryIDs = map[Category]string{
	CategoryAssigned:             "assigned",
	CategoryActivation:           "activation",
	CategoryRestrictedInHouse:    "restricted_in_house",
	CategoryUnrestrictedCall:     "unrestricted_call",
	CategorySubspecialtyCoverage: "subspecialty_coverage",
}

var categoryLabels = map[Category]string{
	CategoryAssigned:             "Assigned (General AR)",
	CategoryActivation:           "Activation from Unrestricted Call",
	CategoryRestrictedInHouse:    "Restricted OB (In-house)",
	CategoryUnrestrictedCall:     "Unrestricted Call",
	CategorySubspecialtyCoverage: "Cardiac (Subspecialty) – Coverage",
}

// ID returns the snake-case identifier.
func (c Category) ID() string {
	if id, ok := categoryIDs[c]; ok {
		return id
	}
	return "unknown"
}

// Label returns the exact label used in exports and the record store.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return ""
}

func (c Category) String() string { return c.ID() }
func (c Category) Valid() bool    { _, ok := categoryIDs[c]; return ok }

// MarshalText encodes the category as its label.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownCategory
	}
	return []byte(c.Label()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts either the label or the identifier. Unrecognized
// input yields CategoryUnknown and an error wrapping ErrUnknownCategory.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if s == categoryLabels[c] || strings.EqualFold(s, categoryIDs[c]) {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// =============================================================================
// BAND - Time-of-day window
// =============================================================================

type Band uint8

const (
	BandDay Band = iota
	BandEvening
	BandNight
	bandCount
)

// Bands lists the three rate tiers in report order.
var Bands = []Band{BandDay, BandEvening, BandNight}

const (
	dayStart     = 7 * 60
	eveningStart = 17 * 60
	nightStart   = 23 * 60
)

// BandOf classifies a minute of day.
func BandOf(minute int) Band {
	switch {
	case minute >= dayStart && minute < eveningStart:
		return BandDay
	case minute >= eveningStart && minute < nightStart:
		return BandEvening
	default:
		return BandNight
	}
}

func (b Band) String() string {
	switch b {
	case BandDay:
		return "day"
	case BandEvening:
		return "evening"
	case BandNight:
		return "night"
	}
	return "unknown"
}

func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// BandTable holds one multiplier per band.
type BandTable [bandCount]decimal.Decimal

// Multiplier returns the multiplier for b.
func (t BandTable) Multiplier(b Band) decimal.Decimal { return t[b] }

// =============================================================================
// CATEGORY RULE & RULE SET
// =============================================================================

// CategoryRule describes how one category earns points.
type CategoryRule struct {
	// Base is points per hour for minute-rated categories.
	Base decimal.Decimal

	// MinuteRated categories compete for minutes in the allocator.
	// Others (flat daily adders) never claim minutes.
	MinuteRated bool

	// Banded applies the band multiplier on top of Base.
	Banded bool

	// FlatDaily is granted once per day when any entry has the category.
	FlatDaily decimal.Decimal

	// Floor is the per-day minimum for the category's time points.
	Floor decimal.NullDecimal
}

// RuleSet is one canonical, versioned set of rates. Rule sets are never
// merged: an engine computes with exactly one.
type RuleSet struct {
	Version    string
	Weekday    BandTable
	OffDay     BandTable
	Categories map[Category]CategoryRule
	ExamPoints decimal.Decimal
}

// Rule returns the rule for c and whether the rule set knows it.
func (rs RuleSet) Rule(c Category) (CategoryRule, bool) {
	r, ok := rs.Categories[c]
	return r, ok
}

// Rate returns points per hour for a category at a minute of day.
// Categories without a minute rate, or unknown to the rule set, earn zero.
func (rs RuleSet) Rate(c Category, minute int, offDay bool) decimal.Decimal {
	rule, ok := rs.Categories[c]
	if !ok || !rule.MinuteRated {
		return decimal.Zero
	}
	if !rule.Banded {
		return rule.Base
	}
	table := rs.Weekday
	if offDay {
		table = rs.OffDay
	}
	return rule.Base.Mul(table.Multiplier(BandOf(minute)))
}

// Claims reports whether entries of c compete for minutes.
func (rs RuleSet) Claims(c Category) bool {
	rule, ok := rs.Categories[c]
	return ok && rule.MinuteRated
}

// Validate checks that every category in the closed set has a rule.
func (rs RuleSet) Validate() error {
	if rs.Version == "" {
		return fmt.Errorf("rule set: version is required")
	}
	for _, c := range Categories {
		if _, ok := rs.Categories[c]; !ok {
			return fmt.Errorf("rule set %s: no rule for category %s", rs.Version, c)
		}
	}
	for _, b := range Bands {
		if rs.Weekday[b].IsNegative() || rs.OffDay[b].IsNegative() {
			return fmt.Errorf("rule set %s: negative multiplier for band %s", rs.Version, b)
		}
	}
	return nil
}

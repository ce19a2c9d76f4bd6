package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleSetJSON is the JSON representation of a rule set.
//
//	{
//	  "version": "mwa-2026.1",
//	  "weekday_bands": {"day": "1.00", "evening": "1.10", "night": "1.25"},
//	  "off_day_bands": {"day": "1.10", "evening": "1.25", "night": "1.25"},
//	  "exam_points": "22",
//	  "categories": {
//	    "assigned": {"base": "20", "banded": true, "floor": "80"},
//	    "subspecialty_coverage": {"flat_daily": "45"}
//	  }
//	}
type RuleSetJSON struct {
	Version      string                  `json:"version"`
	WeekdayBands BandsJSON               `json:"weekday_bands"`
	OffDayBands  BandsJSON               `json:"off_day_bands"`
	ExamPoints   decimal.Decimal         `json:"exam_points"`
	Categories   map[string]CategoryJSON `json:"categories"`
}

// BandsJSON holds one multiplier per band.
type BandsJSON struct {
	Day     decimal.Decimal `json:"day"`
	Evening decimal.Decimal `json:"evening"`
	Night   decimal.Decimal `json:"night"`
}

// CategoryJSON represents one category rule. A category with a base
// rate is minute-rated; one with only flat_daily is a daily adder.
type CategoryJSON struct {
	Base      *decimal.Decimal    `json:"base,omitempty"`
	Banded    bool                `json:"banded,omitempty"`
	FlatDaily *decimal.Decimal    `json:"flat_daily,omitempty"`
	Floor     decimal.NullDecimal `json:"floor"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// Parse converts a JSON document into a validated RuleSet.
func Parse(data []byte) (engine.RuleSet, error) {
	var rj RuleSetJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return engine.RuleSet{}, fmt.Errorf("failed to parse rule set JSON: %w", err)
	}
	return FromJSON(rj)
}

// LoadFile reads and parses a rule set file.
func LoadFile(path string) (engine.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.RuleSet{}, fmt.Errorf("failed to read rule set %s: %w", path, err)
	}
	return Parse(data)
}

// FromJSON converts RuleSetJSON to an engine.RuleSet.
func FromJSON(rj RuleSetJSON) (engine.RuleSet, error) {
	rs := engine.RuleSet{
		Version:    rj.Version,
		Weekday:    rj.WeekdayBands.table(),
		OffDay:     rj.OffDayBands.table(),
		ExamPoints: rj.ExamPoints,
		Categories: make(map[engine.Category]engine.CategoryRule, len(rj.Categories)),
	}

	for key, cj := range rj.Categories {
		c, err := engine.ParseCategory(key)
		if err != nil {
			return engine.RuleSet{}, fmt.Errorf("rule set %s: %w", rj.Version, err)
		}
		rs.Categories[c] = cj.rule()
	}

	if err := rs.Validate(); err != nil {
		return engine.RuleSet{}, err
	}
	return rs, nil
}

// ToJSON converts a RuleSet back to its JSON representation.
func ToJSON(rs engine.RuleSet) RuleSetJSON {
	rj := RuleSetJSON{
		Version:      rs.Version,
		WeekdayBands: bandsJSON(rs.Weekday),
		OffDayBands:  bandsJSON(rs.OffDay),
		ExamPoints:   rs.ExamPoints,
		Categories:   make(map[string]CategoryJSON, len(rs.Categories)),
	}
	for c, rule := range rs.Categories {
		cj := CategoryJSON{Banded: rule.Banded, Floor: rule.Floor}
		if rule.MinuteRated {
			base := rule.Base
			cj.Base = &base
		}
		if rule.FlatDaily.IsPositive() {
			flat := rule.FlatDaily
			cj.FlatDaily = &flat
		}
		rj.Categories[c.ID()] = cj
	}
	return rj
}

func (b BandsJSON) table() engine.BandTable {
	return engine.BandTable{
		engine.BandDay:     b.Day,
		engine.BandEvening: b.Evening,
		engine.BandNight:   b.Night,
	}
}

func bandsJSON(t engine.BandTable) BandsJSON {
	return BandsJSON{
		Day:     t.Multiplier(engine.BandDay),
		Evening: t.Multiplier(engine.BandEvening),
		Night:   t.Multiplier(engine.BandNight),
	}
}

func (cj CategoryJSON) rule() engine.CategoryRule {
	r := engine.CategoryRule{Banded: cj.Banded, Floor: cj.Floor}
	if cj.Base != nil {
		r.Base = *cj.Base
		r.MinuteRated = true
	}
	if cj.FlatDaily != nil {
		r.FlatDaily = *cj.FlatDaily
	}
	return r
}

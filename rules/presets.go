/*
Package rules provides versioned rate rule sets for the engine.

PURPOSE:
  A rule set fixes every number the engine uses: band multipliers,
  category base rates, floors, flat adders and the exam adder. Rule
  sets are versioned and never merged; a deployment selects exactly one.

AVAILABLE RULE SETS:
  MWA2025 (version "mwa-2025.1"):
    - Weekday bands: Day x1.00, Evening x1.10, Night x1.25
    - Weekend/holiday bands: Day x1.10, Evening/Night x1.25
    - Assigned, Activation: 20 pts/h banded
    - Restricted in-house: 13 pts/h banded
    - Unrestricted call: 3.5 pts/h flat
    - Subspecialty coverage: 45 pts once per day
    - Assigned daily floor: 80 pts (Activation has no floor)
    - Exams: 22 pts each

CUSTOM RULE SETS:
  Parse() builds a RuleSet from JSON (see factory.go), so a revised
  schedule can ship as data with its own version string.

SEE ALSO:
  - factory.go: JSON to RuleSet conversion
  - Resolve: version or file selection used by both binaries
  - engine/rate.go: how a RuleSet is evaluated
*/
package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

// =============================================================================
// CANONICAL RULE SET
// =============================================================================

const VersionMWA2025 = "mwa-2025.1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// MWA2025 returns the canonical rule set.
func MWA2025() engine.RuleSet {
	return engine.RuleSet{
		Version: VersionMWA2025,
		Weekday: engine.BandTable{
			engine.BandDay:     d("1.00"),
			engine.BandEvening: d("1.10"),
			engine.BandNight:   d("1.25"),
		},
		OffDay: engine.BandTable{
			engine.BandDay:     d("1.10"),
			engine.BandEvening: d("1.25"),
			engine.BandNight:   d("1.25"),
		},
		Categories: map[engine.Category]engine.CategoryRule{
			engine.CategoryAssigned: {
				Base:        d("20"),
				MinuteRated: true,
				Banded:      true,
				Floor:       decimal.NewNullDecimal(d("80")),
			},
			engine.CategoryActivation: {
				Base:        d("20"),
				MinuteRated: true,
				Banded:      true,
			},
			engine.CategoryRestrictedInHouse: {
				Base:        d("13"),
				MinuteRated: true,
				Banded:      true,
			},
			engine.CategoryUnrestrictedCall: {
				Base:        d("3.5"),
				MinuteRated: true,
				Banded:      false,
			},
			engine.CategorySubspecialtyCoverage: {
				FlatDaily: d("45"),
			},
		},
		ExamPoints: d("22"),
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

var (
	registry   = map[string]engine.RuleSet{VersionMWA2025: MWA2025()}
	registryMu sync.RWMutex
)

// Register adds a rule set under its version, replacing any previous one.
func Register(rs engine.RuleSet) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[rs.Version] = rs
	return nil
}

// Lookup finds a registered rule set by version.
func Lookup(version string) (engine.RuleSet, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	rs, ok := registry[version]
	return rs, ok
}

// Versions lists registered versions in sorted order.
func Versions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Resolve selects the active rule set. A file path wins: the file is
// parsed and registered under its own version. Otherwise version must
// already be registered.
func Resolve(version, path string) (engine.RuleSet, error) {
	if path != "" {
		rs, err := LoadFile(path)
		if err != nil {
			return engine.RuleSet{}, err
		}
		if err := Register(rs); err != nil {
			return engine.RuleSet{}, err
		}
		return rs, nil
	}
	rs, ok := Lookup(version)
	if !ok {
		return engine.RuleSet{}, fmt.Errorf("unknown rule set %q (registered: %v)", version, Versions())
	}
	return rs, nil
}

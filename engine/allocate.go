package engine

import (
	"github.com/shopspring/decimal"
)

// slot records the current winner of one minute.
type slot struct {
	rate     decimal.Decimal
	category Category
	claimed  bool
}

// MinuteMap is the per-date arena: one slot per minute of the day,
// stored contiguously and allocated fresh for every date.
type MinuteMap struct {
	Date   Date
	OffDay bool
	slots  [MinutesPerDay]slot
}

// Winner returns the category and rate that own minute, if any.
func (m *MinuteMap) Winner(minute int) (Category, decimal.Decimal, bool) {
	s := m.slots[minute]
	return s.category, s.rate, s.claimed
}

// Claimed returns the number of minutes owned by any category.
func (m *MinuteMap) Claimed() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].claimed {
			n++
		}
	}
	return n
}

// Allocate resolves all of one date's slices into a single winner per minute.
//
// Slices are processed in the given order. A slice takes a minute only
// when its rate is strictly greater than the rate already recorded there,
// so on an exact tie the category registered first keeps the minute.
// Slices dated elsewhere and categories that do not claim minutes
// (flat adders, unknown) are ignored.
func Allocate(rules RuleSet, date Date, offDay bool, slices []DaySlice) *MinuteMap {
	m := &MinuteMap{Date: date, OffDay: offDay}
	for _, s := range slices {
		if s.Date != date || !rules.Claims(s.Category) {
			continue
		}
		for minute := max(s.Start, 0); minute < min(s.End, MinutesPerDay); minute++ {
			rate := rules.Rate(s.Category, minute, offDay)
			cur := &m.slots[minute]
			if !cur.claimed || rate.GreaterThan(cur.rate) {
				*cur = slot{rate: rate, category: s.Category, claimed: true}
			}
		}
	}
	return m
}

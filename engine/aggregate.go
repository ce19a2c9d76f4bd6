package engine

import (
	"github.com/shopspring/decimal"
)

type bandAccum struct {
	minutes int
	rate    decimal.Decimal
}

// Aggregate turns a date's minute winners plus the entries dated that day
// into a DailyTotal.
//
// Time points come from the winning minutes only. A category floor is
// evaluated once per day over all of that category's minutes, not per
// entry. Flat daily adders are granted once per category regardless of
// how many entries carry it. Exam, productivity and extra points are
// summed across entries and never touched by bands or floors.
func Aggregate(rules RuleSet, m *MinuteMap, entries []ShiftEntry) DailyTotal {
	var acc [CategorySubspecialtyCoverage + 1][bandCount]bandAccum
	for minute := 0; minute < MinutesPerDay; minute++ {
		cat, rate, ok := m.Winner(minute)
		if !ok {
			continue
		}
		a := &acc[cat][BandOf(minute)]
		a.minutes++
		a.rate = rate
	}

	day := DailyTotal{
		Date:               m.Date,
		OffDay:             m.OffDay,
		TimePoints:         decimal.Zero,
		FloorTopUp:         decimal.Zero,
		FlatPoints:         decimal.Zero,
		ExamPoints:         decimal.Zero,
		ProductivityPoints: decimal.Zero,
		ExtraPoints:        decimal.Zero,
	}

	bandMinutes := [bandCount]int{}
	bandPoints := [bandCount]decimal.Decimal{}

	present := make(map[Category]bool)
	exams := 0
	for _, e := range entries {
		if e.Date != m.Date {
			continue
		}
		present[e.Category] = true
		exams += e.ExamCount
		day.ProductivityPoints = day.ProductivityPoints.Add(e.Productivity)
		day.ExtraPoints = day.ExtraPoints.Add(e.Extra)
	}

	for _, c := range Categories {
		rule, known := rules.Rule(c)
		tally := CategoryTally{Category: c, Points: decimal.Zero}

		for _, b := range Bands {
			a := acc[c][b]
			if a.minutes == 0 {
				continue
			}
			pts := pointsFor(a.minutes, a.rate)
			tally.Minutes += a.minutes
			tally.Points = tally.Points.Add(pts)
			bandMinutes[b] += a.minutes
			bandPoints[b] = bandPoints[b].Add(pts)
		}
		day.TimePoints = day.TimePoints.Add(tally.Points)

		if known && tally.Minutes > 0 && rule.Floor.Valid && tally.Points.LessThan(rule.Floor.Decimal) {
			day.FloorTopUp = day.FloorTopUp.Add(rule.Floor.Decimal.Sub(tally.Points))
			day.FloorApplied = true
		}

		if known && present[c] && rule.FlatDaily.IsPositive() {
			day.FlatPoints = day.FlatPoints.Add(rule.FlatDaily)
			tally.Points = tally.Points.Add(rule.FlatDaily)
		}

		if tally.Minutes > 0 || present[c] {
			day.Categories = append(day.Categories, tally)
		}
	}

	for _, b := range Bands {
		day.Bands = append(day.Bands, BandTally{Band: b, Minutes: bandMinutes[b], Points: bandPoints[b]})
	}

	day.ExamPoints = rules.ExamPoints.Mul(decimal.NewFromInt(int64(exams)))
	day.Total = day.TimePoints.
		Add(day.FloorTopUp).
		Add(day.FlatPoints).
		Add(day.ExamPoints).
		Add(day.ProductivityPoints).
		Add(day.ExtraPoints)
	return day
}

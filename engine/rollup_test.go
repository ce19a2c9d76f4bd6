package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
)

func daily(date engine.Date, total string) engine.DailyTotal {
	return engine.DailyTotal{Date: date, Total: pts(total)}
}

func TestRollup_RunningTotals(t *testing.T) {
	// GIVEN: daily totals 100, 50, 75 in one month
	// THEN: running totals 100, 150, 225
	days := []engine.DailyTotal{
		daily(engine.NewDate(2025, time.March, 1), "100"),
		daily(engine.NewDate(2025, time.March, 2), "50"),
		daily(engine.NewDate(2025, time.March, 3), "75"),
	}

	summary := engine.Rollup(days)

	require.Len(t, summary.Months, 1)
	month := summary.Months[0]
	assert.Equal(t, "2025-03", month.Month.String())
	require.Len(t, month.Days, 3)
	assertPoints(t, "100", month.Days[0].Running)
	assertPoints(t, "150", month.Days[1].Running)
	assertPoints(t, "225", month.Days[2].Running)
	assertPoints(t, "225", month.Total)
	assertPoints(t, "225", summary.GrandTotal)
}

func TestRollup_SortsAndResetsPerMonth(t *testing.T) {
	days := []engine.DailyTotal{
		daily(engine.NewDate(2025, time.April, 2), "10"),
		daily(engine.NewDate(2025, time.March, 31), "40"),
		daily(engine.NewDate(2025, time.April, 1), "5"),
	}

	summary := engine.Rollup(days)

	require.Len(t, summary.Months, 2)
	march, ok := summary.Month(engine.MonthKey{Year: 2025, Month: time.March})
	require.True(t, ok)
	assertPoints(t, "40", march.Total)

	april, ok := summary.Month(engine.MonthKey{Year: 2025, Month: time.April})
	require.True(t, ok)
	require.Len(t, april.Days, 2)
	assertPoints(t, "5", april.Days[0].Running)
	assertPoints(t, "15", april.Days[1].Running)

	assertPoints(t, "55", summary.GrandTotal)

	// input must not be reordered
	assert.Equal(t, time.April, days[0].Date.Month)
}

func TestRollup_Empty(t *testing.T) {
	summary := engine.Rollup(nil)

	assert.Empty(t, summary.Months)
	assertPoints(t, "0", summary.GrandTotal)
}

func TestPeriod(t *testing.T) {
	p := engine.MonthPeriod(engine.MonthKey{Year: 2024, Month: time.February})

	assert.Equal(t, engine.NewDate(2024, time.February, 1), p.Start)
	assert.Equal(t, engine.NewDate(2024, time.February, 29), p.End)
	assert.Len(t, p.Days(), 29)
	assert.True(t, p.Contains(engine.NewDate(2024, time.February, 29)))
	assert.False(t, p.Contains(engine.NewDate(2024, time.March, 1)))
	assert.True(t, p.Valid())
	assert.False(t, engine.Period{Start: p.End, End: p.Start}.Valid())
}

func TestDate_JSONAndParsing(t *testing.T) {
	d, err := engine.ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, monday, d)
	assert.Equal(t, time.Monday, d.Weekday())
	assert.True(t, saturday.IsWeekend())
	assert.Equal(t, engine.NewDate(2025, time.April, 1), engine.NewDate(2025, time.March, 31).AddDays(1))

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(b))

	var back engine.Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, d, back)

	_, err = engine.ParseDate("03/10/2025")
	assert.Error(t, err)
}

package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
)

func at(d engine.Date, clock string) time.Time {
	return d.At(engine.MustParseClock(clock))
}

func collect(t *testing.T, start, end time.Time) []engine.DaySlice {
	t.Helper()
	seq, err := engine.Normalize(start, end)
	require.NoError(t, err)
	var out []engine.DaySlice
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func TestNormalize_SameDay_SingleSlice(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)

	slices := collect(t, at(day, "08:00"), at(day, "12:00"))

	require.Len(t, slices, 1)
	assert.Equal(t, engine.DaySlice{Date: day, Start: 480, End: 720}, slices[0])
}

func TestNormalize_CrossesMidnight_SplitsInTwo(t *testing.T) {
	// GIVEN: 22:00-02:00 entered on one date
	// THEN: [22:00,24:00) on day 1 and [00:00,02:00) on day 2, 240 minutes total
	day := engine.NewDate(2025, time.March, 10)

	slices := collect(t, at(day, "22:00"), at(day, "02:00"))

	require.Len(t, slices, 2)
	assert.Equal(t, engine.DaySlice{Date: day, Start: 22 * 60, End: engine.MinutesPerDay}, slices[0])
	assert.Equal(t, engine.DaySlice{Date: day.AddDays(1), Start: 0, End: 120}, slices[1])
	assert.Equal(t, 240, slices[0].Minutes()+slices[1].Minutes())
}

func TestNormalize_EqualStartEnd_IsFullDay(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)

	slices := collect(t, at(day, "08:00"), at(day, "08:00"))
	require.Len(t, slices, 2)
	assert.Equal(t, engine.MinutesPerDay, slices[0].Minutes()+slices[1].Minutes())

	// Midnight to midnight never yields an empty trailing slice
	slices = collect(t, at(day, "00:00"), at(day, "00:00"))
	require.Len(t, slices, 1)
	assert.Equal(t, engine.DaySlice{Date: day, Start: 0, End: engine.MinutesPerDay}, slices[0])
}

func TestNormalize_ExplicitMultiDate(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)

	slices := collect(t, at(day, "10:00"), at(day.AddDays(1), "10:00"))

	require.Len(t, slices, 2)
	assert.Equal(t, 840, slices[0].Minutes())
	assert.Equal(t, 600, slices[1].Minutes())
}

func TestNormalize_ExceedsMaxSpan(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)

	_, err := engine.Normalize(at(day, "08:00"), at(day.AddDays(1), "08:01"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrIntervalExceedsMaxSpan))
}

func TestNormalize_IsLazy(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)
	seq, err := engine.Normalize(at(day, "22:00"), at(day, "02:00"))
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestNormalizeEntry_CopiesCategoryAndParsesText(t *testing.T) {
	entry := engine.ShiftEntry{
		Date:     engine.NewDate(2025, time.March, 10),
		Category: engine.CategoryRestrictedInHouse,
		Start:    "10pm",
		End:      "2am",
	}

	slices, err := engine.NormalizeEntry(entry)

	require.NoError(t, err)
	require.Len(t, slices, 2)
	for _, s := range slices {
		assert.Equal(t, engine.CategoryRestrictedInHouse, s.Category)
		assert.Greater(t, s.End, s.Start)
	}
}

func TestNormalizeEntry_BadClock(t *testing.T) {
	entry := engine.ShiftEntry{
		Date:     engine.NewDate(2025, time.March, 10),
		Category: engine.CategoryAssigned,
		Start:    "8:00",
		End:      "25:00",
	}

	_, err := engine.NormalizeEntry(entry)

	assert.True(t, errors.Is(err, engine.ErrInvalidTimeFormat))
}

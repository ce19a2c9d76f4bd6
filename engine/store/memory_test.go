package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
)

func TestMemory_ListEntriesOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	mar10 := engine.NewDate(2025, time.March, 10)
	mar9 := engine.NewDate(2025, time.March, 9)

	require.NoError(t, m.SaveEntry(ctx, engine.ShiftEntry{ID: "b", Date: mar10}))
	require.NoError(t, m.SaveEntry(ctx, engine.ShiftEntry{ID: "a", Date: mar10}))
	require.NoError(t, m.SaveEntry(ctx, engine.ShiftEntry{ID: "c", Date: mar9}))

	// Replacing keeps the original insertion position
	require.NoError(t, m.SaveEntry(ctx, engine.ShiftEntry{ID: "b", Date: mar10, Notes: "edited"}))

	got, err := m.ListEntries(ctx, mar9, mar10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, engine.EntryID("c"), got[0].ID)
	assert.Equal(t, engine.EntryID("b"), got[1].ID)
	assert.Equal(t, "edited", got[1].Notes)
	assert.Equal(t, engine.EntryID("a"), got[2].ID)

	got, err = m.ListEntries(ctx, mar10, mar10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetEntry(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrEntryNotFound)
	assert.ErrorIs(t, m.DeleteEntry(ctx, "missing"), engine.ErrEntryNotFound)
	assert.ErrorIs(t, m.DeleteHoliday(ctx, "missing"), engine.ErrHolidayNotFound)
	assert.True(t, engine.IsNotFound(err))
}

func TestMemory_Holidays(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveHoliday(ctx, engine.Holiday{
		ID: "xmas", Date: engine.NewDate(2024, time.December, 25), Name: "Christmas", Recurring: true,
	}))
	require.NoError(t, m.SaveHoliday(ctx, engine.Holiday{
		ID: "once", Date: engine.NewDate(2025, time.March, 10), Name: "Local",
	}))

	assert.True(t, m.IsHoliday(engine.NewDate(2030, time.December, 25)))
	assert.True(t, m.IsHoliday(engine.NewDate(2025, time.March, 10)))
	assert.False(t, m.IsHoliday(engine.NewDate(2026, time.March, 10)))

	cal, err := engine.LoadCalendar(ctx, m)
	require.NoError(t, err)
	require.Len(t, cal, 2)
	assert.Equal(t, "xmas", cal[0].ID)

	err = m.SaveHoliday(ctx, engine.Holiday{ID: "once-2", Date: engine.NewDate(2025, time.March, 10), Name: "Local"})
	assert.ErrorIs(t, err, engine.ErrHolidayExists)

	require.NoError(t, m.DeleteHoliday(ctx, "xmas"))
	assert.False(t, m.IsHoliday(engine.NewDate(2030, time.December, 25)))
}

func TestLoadPeriod_IncludesDayBefore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, e := range []engine.ShiftEntry{
		{ID: "early", Date: engine.NewDate(2025, time.February, 27), Category: engine.CategoryAssigned},
		{ID: "eve", Date: engine.NewDate(2025, time.February, 28), Category: engine.CategoryAssigned},
		{ID: "in", Date: engine.NewDate(2025, time.March, 31), Category: engine.CategoryAssigned},
		{ID: "after", Date: engine.NewDate(2025, time.April, 1), Category: engine.CategoryAssigned},
	} {
		require.NoError(t, m.SaveEntry(ctx, e))
	}
	require.NoError(t, m.SaveHoliday(ctx, engine.Holiday{ID: "h", Date: engine.NewDate(2025, time.March, 17), Name: "Founders"}))

	entries, calendar, err := engine.LoadPeriod(ctx, m, engine.MonthPeriod(engine.MonthKey{Year: 2025, Month: time.March}))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, engine.EntryID("eve"), entries[0].ID)
	assert.Equal(t, engine.EntryID("in"), entries[1].ID)
	assert.True(t, calendar.IsHoliday(engine.NewDate(2025, time.March, 17)))
}

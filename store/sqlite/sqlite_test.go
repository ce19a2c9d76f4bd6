package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_EntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: an entry with raw clock text and decimal adders
	entry := engine.ShiftEntry{
		ID:           "e1",
		Date:         engine.NewDate(2025, time.March, 10),
		Category:     engine.CategorySubspecialtyCoverage,
		Start:        "730",
		End:          "5pm",
		ExamCount:    2,
		Productivity: decimal.RequireFromString("12.75"),
		Extra:        decimal.RequireFromString("3"),
		Holiday:      true,
		Notes:        "covering",
	}

	// WHEN: saved and read back
	require.NoError(t, store.SaveEntry(ctx, entry))
	got, err := store.GetEntry(ctx, "e1")

	// THEN: every field survives unchanged
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Date, got.Date)
	assert.Equal(t, entry.Category, got.Category)
	assert.Equal(t, "730", got.Start)
	assert.Equal(t, "5pm", got.End)
	assert.Equal(t, 2, got.ExamCount)
	assert.True(t, entry.Productivity.Equal(got.Productivity))
	assert.True(t, entry.Extra.Equal(got.Extra))
	assert.True(t, got.Holiday)
	assert.Equal(t, "covering", got.Notes)
}

func TestStore_ListEntriesKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	mar10 := engine.NewDate(2025, time.March, 10)
	mar11 := engine.NewDate(2025, time.March, 11)

	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "late", Date: mar11, Category: engine.CategoryAssigned}))
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "first", Date: mar10, Category: engine.CategoryActivation}))
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "second", Date: mar10, Category: engine.CategoryAssigned}))

	// Editing "first" must not move it behind "second"
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "first", Date: mar10, Category: engine.CategoryActivation, Start: "8"}))

	entries, err := store.ListEntries(ctx, mar10, mar11)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, engine.EntryID("first"), entries[0].ID)
	assert.Equal(t, "8", entries[0].Start)
	assert.Equal(t, engine.EntryID("second"), entries[1].ID)
	assert.Equal(t, engine.EntryID("late"), entries[2].ID)

	entries, err = store.ListEntries(ctx, mar11, mar11)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_UnknownCategoryLoadsAsUnknown(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{
		ID:       "odd",
		Date:     engine.NewDate(2025, time.March, 10),
		Category: engine.CategoryUnknown,
	}))

	got, err := store.GetEntry(ctx, "odd")
	require.NoError(t, err)
	assert.Equal(t, engine.CategoryUnknown, got.Category)
}

func TestStore_UnknownCategoryKeepsItsText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	day := engine.NewDate(2025, time.March, 10)

	// GIVEN: an entry whose category text matched nothing on import
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{
		ID: "odd", Date: day, CategoryLabel: "Cardiology Night", Start: "0700", End: "1700",
	}))

	// WHEN: read back and saved again unchanged
	got, err := store.GetEntry(ctx, "odd")
	require.NoError(t, err)
	require.NoError(t, store.SaveEntry(ctx, got))
	again, err := store.GetEntry(ctx, "odd")

	// THEN: the original text survives both trips
	require.NoError(t, err)
	assert.Equal(t, engine.CategoryUnknown, again.Category)
	assert.Equal(t, "Cardiology Night", again.CategoryLabel)
	assert.Equal(t, "Cardiology Night", again.CategoryText())

	var stored string
	require.NoError(t, store.db.QueryRow("SELECT category FROM entries WHERE id = 'odd'").Scan(&stored))
	assert.Equal(t, "Cardiology Night", stored)
}

func TestStore_CorruptPointsFailTheRead(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	day := engine.NewDate(2025, time.March, 10)
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{
		ID: "p", Date: day, Category: engine.CategoryAssigned, Productivity: decimal.Zero, Extra: decimal.Zero,
	}))
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{
		ID: "x", Date: day, Category: engine.CategoryAssigned, Productivity: decimal.Zero, Extra: decimal.Zero,
	}))

	_, err := store.db.Exec("UPDATE entries SET productivity = 'lots' WHERE id = 'p'")
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE entries SET extra = '' WHERE id = 'x'")
	require.NoError(t, err)

	_, err = store.GetEntry(ctx, "p")
	assert.ErrorContains(t, err, "entry p: productivity")

	_, err = store.GetEntry(ctx, "x")
	assert.ErrorContains(t, err, "entry x: extra")

	_, err = store.ListEntries(ctx, day, day)
	assert.Error(t, err)
}

func TestStore_EntryNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetEntry(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrEntryNotFound)

	err = store.DeleteEntry(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrEntryNotFound)
}

func TestStore_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "x", Date: engine.NewDate(2025, time.March, 10), Category: engine.CategoryAssigned}))

	require.NoError(t, store.DeleteEntry(ctx, "x"))

	_, err := store.GetEntry(ctx, "x")
	assert.True(t, engine.IsNotFound(err))
}

func TestStore_Holidays(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveHoliday(ctx, engine.Holiday{
		ID: "xmas", Date: engine.NewDate(2024, time.December, 25), Name: "Christmas", Recurring: true,
	}))
	require.NoError(t, store.SaveHoliday(ctx, engine.Holiday{
		ID: "audit", Date: engine.NewDate(2025, time.March, 10), Name: "Audit day",
	}))

	// Recurring matches every year, one-off only its own date
	assert.True(t, store.IsHoliday(engine.NewDate(2031, time.December, 25)))
	assert.True(t, store.IsHoliday(engine.NewDate(2025, time.March, 10)))
	assert.False(t, store.IsHoliday(engine.NewDate(2026, time.March, 10)))
	assert.False(t, store.IsHoliday(engine.NewDate(2025, time.March, 11)))

	holidays, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "xmas", holidays[0].ID)
	assert.True(t, holidays[0].Recurring)

	// Same date and name under a new ID collides
	err = store.SaveHoliday(ctx, engine.Holiday{ID: "audit-2", Date: engine.NewDate(2025, time.March, 10), Name: "Audit day"})
	assert.ErrorIs(t, err, engine.ErrHolidayExists)
	// Re-saving the same ID updates in place
	require.NoError(t, store.SaveHoliday(ctx, engine.Holiday{ID: "audit", Date: engine.NewDate(2025, time.March, 10), Name: "Audit day", Recurring: true}))

	require.NoError(t, store.DeleteHoliday(ctx, "audit"))
	assert.False(t, store.IsHoliday(engine.NewDate(2025, time.March, 10)))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "audit"), engine.ErrHolidayNotFound)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	day := engine.NewDate(2025, time.March, 10)
	require.NoError(t, store.SaveEntry(ctx, engine.ShiftEntry{ID: "x", Date: day, Category: engine.CategoryAssigned}))

	require.NoError(t, store.Reset(ctx))

	entries, err := store.ListEntries(ctx, day, day)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

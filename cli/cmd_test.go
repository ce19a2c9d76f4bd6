package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
	memstore "github.com/warp/shift-points/engine/store"
	"github.com/warp/shift-points/rules"
)

func init() {
	color.NoColor = true
}

// testApp wires an App backed by the in-memory store, fixed at 2025-03-15.
func testApp(t *testing.T) *App {
	t.Helper()
	return &App{
		Store: memstore.NewMemory(),
		Rules: rules.MWA2025(),
		Now:   func() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC) },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

func listAll(t *testing.T, app *App) []engine.ShiftEntry {
	t.Helper()
	entries, err := app.Store.ListEntries(context.Background(), engine.NewDate(2025, 1, 1), engine.NewDate(2025, 12, 31))
	require.NoError(t, err)
	return entries
}

// --- Entries ---

func TestAddCmd_ThenEntries(t *testing.T) {
	app := testApp(t)

	out := mustExecute(t, app, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "7am", "--end", "5pm", "--notes", "OR 4")
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "Assigned (General AR) on 2025-03-10")

	out = mustExecute(t, app, "entries")
	assert.Contains(t, out, "Assigned (General AR)")
	assert.Contains(t, out, "7am")
	assert.Contains(t, out, "OR 4")
}

func TestAddCmd_RejectsInvalid(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "7h", "--end", "5pm")
	assert.ErrorIs(t, err, engine.ErrInvalidTimeFormat)

	_, err = executeCmd(t, app, "add", "--date", "2025-03-10", "--category", "General AR", "--start", "7", "--end", "8")
	assert.ErrorIs(t, err, engine.ErrUnknownCategory)

	_, err = executeCmd(t, app, "add", "--category", "assigned")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "7", "--end", "8", "--extra", "lots")
	assert.Error(t, err)

	assert.Empty(t, listAll(t, app))
}

func TestRmCmd(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "add", "--date", "2025-03-10", "--category", "activation", "--start", "19:00", "--end", "21:00")
	entries := listAll(t, app)
	require.Len(t, entries, 1)

	out := mustExecute(t, app, "rm", string(entries[0].ID))
	assert.Contains(t, out, "Deleted")
	assert.Empty(t, listAll(t, app))

	_, err := executeCmd(t, app, "rm", string(entries[0].ID))
	assert.ErrorIs(t, err, engine.ErrEntryNotFound)
}

// --- Totals ---

func TestDaysCmd_FloorAndRunningTotal(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "0700", "--end", "1700")
	mustExecute(t, app, "add", "--date", "2025-03-12", "--category", "assigned", "--start", "0000", "--end", "0030")

	out := mustExecute(t, app, "days")

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "Date"))
	assert.Contains(t, lines[1], "2025-03-10 Mon")
	assert.Contains(t, lines[1], "200.00")
	assert.Contains(t, lines[2], "2025-03-12 Wed")
	assert.Contains(t, lines[2], "+67.50")
	assert.Contains(t, lines[2], "280.00")
	assert.Contains(t, out, "Total 2025-03-01 .. 2025-03-31: 280.00")
}

func TestDaysCmd_SpilloverIntoPeriod(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "add", "--date", "2025-02-28", "--category", "restricted_in_house", "--start", "22:00", "--end", "02:00")

	out := mustExecute(t, app, "days", "--from", "2025-03-01", "--to", "2025-03-01")

	assert.Contains(t, out, "2025-03-01 Sat")
	assert.Contains(t, out, "32.50")
	assert.NotContains(t, out, "2025-02-28")
}

func TestDaysCmd_ShowsIssues(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Store.SaveEntry(context.Background(), engine.ShiftEntry{
		ID: "bad", Date: engine.NewDate(2025, 3, 10), Category: engine.CategoryAssigned, Start: "7h", End: "5pm",
	}))

	out := mustExecute(t, app, "days")

	assert.Contains(t, out, "No entries between 2025-03-01 and 2025-03-31.")
	assert.Contains(t, out, "1 issue(s):")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "invalid_time_format")
}

func TestDaysCmd_InvalidPeriod(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "days", "--month", "March")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "days", "--from", "2025-03-10", "--to", "2025-03-01")
	assert.Error(t, err)
}

func TestSummaryCmd(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "7", "--end", "17")
	mustExecute(t, app, "add", "--date", "2025-03-11", "--category", "assigned", "--start", "7", "--end", "17")
	mustExecute(t, app, "add", "--date", "2025-04-01", "--category", "assigned", "--start", "7", "--end", "17", "--exams", "2")

	out := mustExecute(t, app, "summary", "--from", "2025-03-01", "--to", "2025-04-30")

	assert.Contains(t, out, "2025-03  2     400.00")
	assert.Contains(t, out, "2025-04  1     244.00")
	assert.Contains(t, out, "Grand total: 644.00 (rule set mwa-2025.1)")
}

// --- Holidays ---

func TestHolidayCmd(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "add", "--date", "2025-03-12", "--category", "assigned", "--start", "7", "--end", "17")

	out := mustExecute(t, app, "holiday", "add", "--date", "2025-03-12", "--name", "Clinic Closure")
	assert.Contains(t, out, "Clinic Closure (2025-03-12)")

	out = mustExecute(t, app, "days", "--month", "2025-03")
	assert.Contains(t, out, "220.00")

	holidays, err := app.Store.ListHolidays(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	out = mustExecute(t, app, "holiday", "list")
	assert.Contains(t, out, holidays[0].ID)

	mustExecute(t, app, "holiday", "rm", holidays[0].ID)
	out = mustExecute(t, app, "holiday", "list")
	assert.Contains(t, out, "No holidays.")

	_, err = executeCmd(t, app, "holiday", "add", "--date", "2025-03-12", "--name", " ")
	assert.Error(t, err)
}

// --- Export / Import ---

func TestExportImportRoundTrip(t *testing.T) {
	src := testApp(t)
	mustExecute(t, src, "add", "--date", "2025-03-10", "--category", "assigned", "--start", "7", "--end", "17", "--exams", "1")
	mustExecute(t, src, "add", "--date", "2025-03-11", "--category", "unrestricted_call", "--start", "0", "--end", "0", "--notes", "home")

	path := filepath.Join(t.TempDir(), "entries.csv")
	mustExecute(t, src, "export", "entries", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Category,Start,End"))

	dst := testApp(t)
	out := mustExecute(t, dst, "import", path)
	assert.Contains(t, out, "Imported 2 entries")

	imported := listAll(t, dst)
	require.Len(t, imported, 2)
	assert.Equal(t, engine.CategoryUnrestrictedCall, imported[1].Category)
	assert.Equal(t, "home", imported[1].Notes)

	daily := mustExecute(t, dst, "export", "daily")
	assert.Contains(t, daily, "2025-03-10,10:00")
	assert.Contains(t, daily, "222.00")
}

func TestImportCmd_Stdin(t *testing.T) {
	app := testApp(t)
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetIn(strings.NewReader("Date,Category,Start,End\n2025-03-10,activation,19:00,21:00\n"))
	root.SetArgs([]string{"import", "-"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Imported 1 entries")
	assert.Len(t, listAll(t, app), 1)
}

func TestEntriesCmd_ShowsUnknownCategoryText(t *testing.T) {
	app := testApp(t)
	root := NewRootCmd(app)
	root.SetOut(new(bytes.Buffer))
	root.SetIn(strings.NewReader("Date,Category,Start,End\n2025-03-10,Cardiology Night,7,17\n"))
	root.SetArgs([]string{"import", "-"})
	require.NoError(t, root.Execute())

	out := mustExecute(t, app, "entries")
	assert.Contains(t, out, "Cardiology Night (unknown)")

	out = mustExecute(t, app, "days")
	assert.Contains(t, out, `unknown category: "Cardiology Night"`)
}

func TestRulesCmd(t *testing.T) {
	out := mustExecute(t, testApp(t), "rules")
	assert.Contains(t, out, `"version": "mwa-2025.1"`)
	assert.Contains(t, out, `"subspecialty_coverage"`)
}

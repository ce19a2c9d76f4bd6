/*
store.go - Persistence interfaces for entries and holidays

PURPOSE:
  Defines the boundary between the engine and the record store. The
  engine never calls these itself; collaborators (api/, cmd/) load a
  batch through them and hand it to Calculator.Compute.

KEY INTERFACES:
  EntryStore:   CRUD over shift entries, ordered reads by date range
  HolidayStore: holiday calendar maintenance + HolidayCalendar lookup
  Store:        both, as every implementation provides

PERIOD LOADING:
  A period's computation needs the entries of the day before it too,
  since an overnight shift spills its minutes into the next date.
  LoadPeriod reads that range plus a calendar snapshot; callers compute
  and trim back with Result.Within.

ORDERING CONTRACT:
  ListEntries returns entries by date, then by insertion order. The
  allocator's tie policy depends on that order, so implementations
  must keep it stable across calls.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - engine/store/memory.go: In-memory for testing

SEE ALSO:
  - calculator.go: consumes the loaded batch
*/
package engine

import (
	"context"
	"fmt"
)

// EntryStore persists shift entries.
type EntryStore interface {
	// SaveEntry inserts or replaces an entry. Replacing keeps the
	// entry's original position in the insertion order.
	SaveEntry(ctx context.Context, e ShiftEntry) error

	// GetEntry returns ErrEntryNotFound when id is unknown.
	GetEntry(ctx context.Context, id EntryID) (ShiftEntry, error)

	// DeleteEntry returns ErrEntryNotFound when id is unknown.
	DeleteEntry(ctx context.Context, id EntryID) error

	// ListEntries returns entries dated within [from, to].
	ListEntries(ctx context.Context, from, to Date) ([]ShiftEntry, error)
}

// HolidayStore persists the holiday calendar.
type HolidayStore interface {
	HolidayCalendar

	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]Holiday, error)
}

// Store is a record store holding both entries and the holiday calendar.
type Store interface {
	EntryStore
	HolidayStore
}

// LoadPeriod reads everything needed to compute p: entries dated from the
// day before p.Start through p.End, and a snapshot of the calendar.
func LoadPeriod(ctx context.Context, s Store, p Period) ([]ShiftEntry, HolidayList, error) {
	entries, err := s.ListEntries(ctx, p.Start.AddDays(-1), p.End)
	if err != nil {
		return nil, nil, fmt.Errorf("loading entries: %w", err)
	}
	calendar, err := LoadCalendar(ctx, s)
	if err != nil {
		return nil, nil, fmt.Errorf("loading holidays: %w", err)
	}
	return entries, calendar, nil
}

// LoadCalendar snapshots a HolidayStore into an immutable HolidayList,
// so one computation sees a consistent calendar.
func LoadCalendar(ctx context.Context, s HolidayStore) (HolidayList, error) {
	holidays, err := s.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return HolidayList(holidays), nil
}

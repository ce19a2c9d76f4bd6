/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements engine.EntryStore and engine.HolidayStore using SQLite, so a
  month of shift entries survives restarts and can be recomputed at any
  time under the active rule set.

INTERFACES IMPLEMENTED:
  engine.EntryStore:   Shift entry persistence
  engine.HolidayStore: Holiday calendar (one-off and recurring)

STORAGE FORMAT:
  Entries keep their raw clock text exactly as typed ("730", "5pm"), so
  a later parser fix applies retroactively. Points are stored as decimal
  strings, categories as their exact label.

  A row with an unreadable category label still loads (as
  CategoryUnknown, text kept in CategoryLabel) so the calculator can
  report it instead of the store silently dropping it. Unreadable
  point values fail the read like a bad date does.

KEY TABLES:
  entries:  One row per shift entry; seq records insertion order
  holidays: Calendar dates with weekend/holiday rates

INDEXES:
  - idx_entries_date_seq: Period queries in allocator order (hot path)
  - idx_holidays_unique:  One holiday per date and name

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/points.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  entries, _ := store.ListEntries(ctx, from, to)
  result := calc.Compute(entries)

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Shift entries
	CREATE TABLE IF NOT EXISTS entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		exam_count INTEGER NOT NULL DEFAULT 0,
		productivity TEXT NOT NULL DEFAULT '0',
		extra TEXT NOT NULL DEFAULT '0',
		holiday BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Period reads must come back by date, then insertion order
	CREATE INDEX IF NOT EXISTS idx_entries_date_seq
		ON entries(date, seq);

	-- Holidays
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE (engine.EntryStore interface)
// =============================================================================

// SaveEntry inserts or replaces an entry. An update keeps the row's seq,
// so an edited entry does not move in the tie-break order.
func (s *Store) SaveEntry(ctx context.Context, e engine.ShiftEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO entries
		(id, date, category, start_time, end_time, exam_count, productivity, extra,
		 holiday, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			category = excluded.category,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			exam_count = excluded.exam_count,
			productivity = excluded.productivity,
			extra = excluded.extra,
			holiday = excluded.holiday,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(e.ID),
		e.Date.String(),
		e.CategoryText(),
		e.Start,
		e.End,
		e.ExamCount,
		e.Productivity.String(),
		e.Extra.String(),
		e.Holiday,
		nullString(e.Notes),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, id engine.EntryID) (engine.ShiftEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE id = ?
	`, string(id))

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return engine.ShiftEntry{}, engine.ErrEntryNotFound
	}
	return e, err
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, id engine.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrEntryNotFound
	}
	return nil
}

// ListEntries returns entries dated within [from, to], by date then seq.
// ISO dates compare correctly as text.
func (s *Store) ListEntries(ctx context.Context, from, to engine.Date) ([]engine.ShiftEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, seq ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.ShiftEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const entryColumns = `id, date, category, start_time, end_time, exam_count,
		productivity, extra, holiday, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (engine.ShiftEntry, error) {
	var (
		e                   engine.ShiftEntry
		id, date, category  string
		productivity, extra string
		notes               sql.NullString
	)
	err := row.Scan(&id, &date, &category, &e.Start, &e.End, &e.ExamCount,
		&productivity, &extra, &e.Holiday, &notes)
	if err != nil {
		return engine.ShiftEntry{}, err
	}

	e.ID = engine.EntryID(id)
	if date != "" {
		if e.Date, err = engine.ParseDate(date); err != nil {
			return engine.ShiftEntry{}, fmt.Errorf("entry %s: %w", id, err)
		}
	}
	// An unreadable label loads as CategoryUnknown; the calculator reports it.
	if e.Category, err = engine.ParseCategory(category); err != nil {
		e.CategoryLabel = category
	}
	if e.Productivity, err = decimal.NewFromString(productivity); err != nil {
		return engine.ShiftEntry{}, fmt.Errorf("entry %s: productivity: %w", id, err)
	}
	if e.Extra, err = decimal.NewFromString(extra); err != nil {
		return engine.ShiftEntry{}, fmt.Errorf("entry %s: extra: %w", id, err)
	}
	e.Notes = notes.String
	return e, nil
}

// =============================================================================
// HOLIDAY STORE (engine.HolidayStore interface)
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h engine.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.String(),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %q on %s", engine.ErrHolidayExists, h.Name, h.Date)
	}
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrHolidayNotFound
	}
	return nil
}

// ListHolidays returns all holidays ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]engine.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, recurring
		FROM holidays
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []engine.Holiday
	for rows.Next() {
		var h engine.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = engine.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// IsHoliday checks if a date is a holiday. Lookup failures count as
// "not a holiday".
func (s *Store) IsHoliday(date engine.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (recurring = FALSE AND date = ?)
		   OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
	`

	var count int
	monthDay := fmt.Sprintf("%02d-%02d", int(date.Month), date.Day)
	if err := s.db.QueryRow(query, date.String(), monthDay).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"entries", "holidays"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

var (
	_ engine.EntryStore   = (*Store)(nil)
	_ engine.HolidayStore = (*Store)(nil)
)

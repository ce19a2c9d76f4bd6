// Package store provides in-memory engine.EntryStore and engine.HolidayStore
// implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/shift-points/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type record struct {
	seq   int
	entry engine.ShiftEntry
}

type Memory struct {
	mu       sync.RWMutex
	entries  map[engine.EntryID]record
	holidays map[string]engine.Holiday
	nextSeq  int
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[engine.EntryID]record),
		holidays: make(map[string]engine.Holiday),
	}
}

// SaveEntry inserts or replaces an entry, keeping its original sequence.
func (m *Memory) SaveEntry(_ context.Context, e engine.ShiftEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.entries[e.ID]
	if !ok {
		m.nextSeq++
		rec.seq = m.nextSeq
	}
	rec.entry = e
	m.entries[e.ID] = rec
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id engine.EntryID) (engine.ShiftEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.entries[id]
	if !ok {
		return engine.ShiftEntry{}, engine.ErrEntryNotFound
	}
	return rec.entry, nil
}

func (m *Memory) DeleteEntry(_ context.Context, id engine.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return engine.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

// ListEntries returns entries in [from, to], by date then insertion order.
func (m *Memory) ListEntries(_ context.Context, from, to engine.Date) ([]engine.ShiftEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := engine.Period{Start: from, End: to}
	var recs []record
	for _, rec := range m.entries {
		if period.Contains(rec.entry.Date) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].entry.Date != recs[j].entry.Date {
			return recs[i].entry.Date.Before(recs[j].entry.Date)
		}
		return recs[i].seq < recs[j].seq
	})

	result := make([]engine.ShiftEntry, len(recs))
	for i, rec := range recs {
		result[i] = rec.entry
	}
	return result, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts or replaces a holiday. Date and name are unique
// across the calendar.
func (m *Memory) SaveHoliday(_ context.Context, h engine.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, other := range m.holidays {
		if id != h.ID && other.Date == h.Date && other.Name == h.Name {
			return fmt.Errorf("%w: %q on %s", engine.ErrHolidayExists, h.Name, h.Date)
		}
	}
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return engine.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]engine.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) IsHoliday(d engine.Date) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.holidays {
		if h.Matches(d) {
			return true
		}
	}
	return false
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[engine.EntryID]record)
	m.holidays = make(map[string]engine.Holiday)
	return nil
}

var (
	_ engine.EntryStore   = (*Memory)(nil)
	_ engine.HolidayStore = (*Memory)(nil)
)

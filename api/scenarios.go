/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built months of shift entries that exercise specific
	rules of the engine, so the UI and API can be explored without
	typing a roster by hand.

AVAILABLE SCENARIOS (all in March 2025):
	typical-month:   Weekday Assigned shifts, a few in-house nights, exams
	overlaps:        Overlapping categories, a tie, and a floored short shift
	holiday-week:    Calendar holiday, flagged holiday, weekend and a
	                 Friday night spilling into Saturday
	data-quality:    Entries the engine reports as issues

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save holidays
 3. Save entries in order (order decides ties)

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "overlaps"}

NOTE:
	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: entry and computation handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
	"github.com/warp/shift-points/logger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	holidays func() []engine.Holiday
	entries  func() []engine.ShiftEntry
}

var scenarioMonth = engine.MonthKey{Year: 2025, Month: time.March}

func march(day int) engine.Date { return engine.NewDate(2025, time.March, day) }

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "typical-month",
			Name:        "Typical Month",
			Description: "Weekday Assigned shifts, restricted in-house nights and TEE exams",
		},
		entries: typicalMonthEntries,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overlaps",
			Name:        "Overlaps and Floors",
			Description: "Highest rate wins each minute, first entry wins ties, short Assigned days are floored",
		},
		entries: overlapEntries,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "holiday-week",
			Name:        "Holiday Week",
			Description: "Calendar and flagged holidays, weekend rates and a shift crossing midnight",
		},
		holidays: func() []engine.Holiday {
			return []engine.Holiday{{ID: "hol-founders", Date: march(17), Name: "Founders Day"}}
		},
		entries: holidayWeekEntries,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "data-quality",
			Name:        "Data Quality",
			Description: "Unparseable times, an unknown category and a negative exam count next to good entries",
		},
		entries: dataQualityEntries,
	},
}

func init() {
	for i := range scenarios {
		scenarios[i].Month = scenarioMonth.String()
	}
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	h.currentScenario = ""
	if err := h.loadScenario(r.Context(), s); err != nil {
		h.internalError(w, r, fmt.Sprintf("Failed to load scenario %s", s.ID), err)
		return
	}
	h.currentScenario = s.ID

	h.Log.Info(r.Context(), "scenario loaded", logger.String("scenario", s.ID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetDatabase clears all entries and holidays.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.internalError(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if s.holidays != nil {
		for _, hol := range s.holidays() {
			if err := h.Store.SaveHoliday(ctx, hol); err != nil {
				return fmt.Errorf("holiday %s: %w", hol.ID, err)
			}
		}
	}
	for _, e := range s.entries() {
		if err := h.Store.SaveEntry(ctx, e); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type entryBuilder struct {
	prefix string
	n      int
	out    []engine.ShiftEntry
}

func (b *entryBuilder) add(date engine.Date, cat engine.Category, start, end string) *engine.ShiftEntry {
	b.n++
	b.out = append(b.out, engine.ShiftEntry{
		ID:           engine.EntryID(fmt.Sprintf("%s-%02d", b.prefix, b.n)),
		Date:         date,
		Category:     cat,
		Start:        start,
		End:          end,
		Productivity: decimal.Zero,
		Extra:        decimal.Zero,
	})
	return &b.out[len(b.out)-1]
}

func typicalMonthEntries() []engine.ShiftEntry {
	b := &entryBuilder{prefix: "typ"}
	for day := 3; day <= 14; day++ {
		if march(day).IsWeekend() {
			continue
		}
		e := b.add(march(day), engine.CategoryAssigned, "0700", "1700")
		if day%3 == 0 {
			e.ExamCount = 1
		}
	}
	b.add(march(5), engine.CategoryRestrictedInHouse, "17:00", "23:00")
	b.add(march(12), engine.CategoryRestrictedInHouse, "5pm", "11pm")
	b.add(march(8), engine.CategoryUnrestrictedCall, "0", "0")
	b.add(march(10), engine.CategorySubspecialtyCoverage, "", "").Notes = "cardiac coverage"
	b.add(march(14), engine.CategoryActivation, "19:00", "22:30").Productivity = decimal.RequireFromString("4.5")
	return b.out
}

func overlapEntries() []engine.ShiftEntry {
	b := &entryBuilder{prefix: "ovl"}
	// Assigned keeps every minute: 20/h beats restricted 13/h
	b.add(march(10), engine.CategoryAssigned, "08:00", "12:00")
	b.add(march(10), engine.CategoryRestrictedInHouse, "09:00", "10:00")
	// Equal rates: the first entry keeps the minutes
	b.add(march(11), engine.CategoryActivation, "08:00", "10:00")
	b.add(march(11), engine.CategoryAssigned, "08:00", "10:00")
	// 30 minutes of Assigned is raised to the daily floor
	b.add(march(12), engine.CategoryAssigned, "00:00", "00:30")
	// Covered twice, paid once
	b.add(march(13), engine.CategorySubspecialtyCoverage, "", "")
	b.add(march(13), engine.CategorySubspecialtyCoverage, "", "")
	return b.out
}

func holidayWeekEntries() []engine.ShiftEntry {
	b := &entryBuilder{prefix: "hol"}
	b.add(march(17), engine.CategoryAssigned, "07:00", "17:00")
	b.add(march(18), engine.CategoryAssigned, "07:00", "17:00").Holiday = true
	b.add(march(19), engine.CategoryAssigned, "07:00", "17:00")
	b.add(march(21), engine.CategoryRestrictedInHouse, "22:00", "02:00")
	b.add(march(22), engine.CategoryAssigned, "07:00", "17:00")
	b.add(march(23), engine.CategoryUnrestrictedCall, "12pm", "12am")
	return b.out
}

func dataQualityEntries() []engine.ShiftEntry {
	b := &entryBuilder{prefix: "dq"}
	b.add(march(24), engine.CategoryAssigned, "07:00", "17:00")
	b.add(march(24), engine.CategoryAssigned, "7h", "5pm")
	b.add(march(25), engine.CategoryUnknown, "08:00", "12:00").Notes = "category lost in import"
	b.add(march(26), engine.CategoryActivation, "08:00", "09:00").ExamCount = -1
	b.add(march(26), engine.CategoryRestrictedInHouse, "25:00", "03:00")
	return b.out
}

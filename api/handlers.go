/*
handlers.go - HTTP API handlers for the points engine

PURPOSE:
  Exposes entry logging and point computation via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Entries:
    GET    /api/entries?from=&to=    List entries in a period
    POST   /api/entries              Create entry
    GET    /api/entries/{id}         Get entry
    PUT    /api/entries/{id}         Replace entry (keeps its tie-break order)
    DELETE /api/entries/{id}         Delete entry

  Computation:
    GET    /api/days?from=&to=       Daily totals + issues + rollup
    GET    /api/days/{date}          One date's total
    GET    /api/summary?from=&to=    Monthly rollup only
    POST   /api/preview              Compute a draft batch, nothing stored

  Holidays:
    GET    /api/holidays             List holiday calendar
    POST   /api/holidays             Add holiday
    DELETE /api/holidays/{id}        Remove holiday

  Rules / Export:
    GET    /api/rules                Active rule set as JSON
    GET    /api/export/entries.csv   Entry sheet
    GET    /api/export/daily.csv     Daily summary sheet
    POST   /api/import/entries.csv   Load an entry sheet

PERIODS:
  from/to are inclusive ISO dates and default to the current month.
  Entries from the day before `from` are loaded too, so a shift that
  crosses midnight into the period still credits its minutes; days
  outside the period are dropped from the response.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

  Engine issues (bad clock text, unknown category) are NOT HTTP errors:
  they are returned next to the totals in the "issues" array.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/shift-points/engine"
	"github.com/warp/shift-points/export"
	"github.com/warp/shift-points/logger"
	"github.com/warp/shift-points/metrics"
	"github.com/warp/shift-points/rules"
)

// maxPeriodDays bounds a single query.
const maxPeriodDays = 366

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API needs from persistence.
type Store interface {
	engine.Store
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Rules   engine.RuleSet
	Log     logger.Logger
	Metrics *metrics.Manager

	// Now is the clock used for default periods.
	Now func() time.Time

	// Track currently loaded scenario
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. A nil logger discards output; a nil
// metrics manager records nothing.
func NewHandler(store Store, rs engine.RuleSet, log logger.Logger, m *metrics.Manager) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Store:   store,
		Rules:   rs,
		Log:     log.Named("api"),
		Metrics: m,
		Now:     time.Now,
	}
}

// compute loads a period (plus the spillover day before it), runs the
// calculator and trims the result back to the period.
func (h *Handler) compute(ctx context.Context, p engine.Period) (engine.Result, error) {
	entries, calendar, err := engine.LoadPeriod(ctx, h.Store, p)
	if err != nil {
		return engine.Result{}, err
	}
	return h.run(ctx, calendar, entries).Within(p), nil
}

func (h *Handler) run(ctx context.Context, calendar engine.HolidayCalendar, entries []engine.ShiftEntry) engine.Result {
	start := time.Now()
	result := engine.NewCalculator(h.Rules, calendar).Compute(entries)
	took := time.Since(start)

	h.Metrics.RecordComputation(len(entries), result, took)
	h.Log.Debug(ctx, "batch computed",
		logger.Int("entries", len(entries)),
		logger.Int("days", len(result.Days)),
		logger.Int("issues", len(result.Issues)),
		logger.Duration("took", took),
	)
	for _, issue := range result.Issues {
		h.Log.Warn(ctx, "entry issue",
			logger.String("entry_id", string(issue.EntryID)),
			logger.Int("index", issue.Index),
			logger.String("kind", issue.Kind()),
			logger.String("severity", string(issue.Severity())),
			logger.Error(issue.Err),
		)
	}
	return result
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries in a period.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), period.Start, period.End)
	if err != nil {
		h.internalError(w, r, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry validates and stores a new entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.entryFromRequest(engine.EntryID(uuid.NewString()), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	if err := h.Store.SaveEntry(r.Context(), entry); err != nil {
		h.internalError(w, r, "Failed to save entry", err)
		return
	}

	h.Log.Info(r.Context(), "entry created",
		logger.String("entry_id", string(entry.ID)),
		logger.Stringer("date", entry.Date),
		logger.String("category", entry.Category.ID()),
	)
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// GetEntry returns one entry.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	entry, err := h.Store.GetEntry(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "Entry not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// UpdateEntry replaces an existing entry.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEntry(r.Context(), id); err != nil {
		h.storeError(w, r, "Entry not found", err)
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.entryFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	if err := h.Store.SaveEntry(r.Context(), entry); err != nil {
		h.internalError(w, r, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteEntry(r.Context(), id); err != nil {
		h.storeError(w, r, "Entry not found", err)
		return
	}
	h.Log.Info(r.Context(), "entry deleted", logger.String("entry_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// entryFromRequest builds a stored entry. Stored entries are held to a
// stricter standard than the calculator: anything it would reject or
// warn about is refused here with 400.
func (h *Handler) entryFromRequest(id engine.EntryID, req EntryRequest) (engine.ShiftEntry, error) {
	entry := draftEntry(id, req)
	if _, err := engine.ParseDate(strings.TrimSpace(req.Date)); err != nil {
		return entry, fmt.Errorf("%w: date: %v", engine.ErrMalformedRecord, err)
	}
	if _, err := engine.ParseCategory(req.Category); err != nil {
		return entry, err
	}
	return entry, engine.Check(h.Rules, entry)
}

// draftEntry converts a request leniently: unparseable dates and
// categories become zero values for the calculator to report.
func draftEntry(id engine.EntryID, req EntryRequest) engine.ShiftEntry {
	date, _ := engine.ParseDate(strings.TrimSpace(req.Date))
	entry := engine.ShiftEntry{
		ID:           id,
		Date:         date,
		Start:        strings.TrimSpace(req.Start),
		End:          strings.TrimSpace(req.End),
		ExamCount:    req.ExamCount,
		Productivity: req.Productivity,
		Extra:        req.Extra,
		Holiday:      req.Holiday,
		Notes:        req.Notes,
	}
	var err error
	if entry.Category, err = engine.ParseCategory(req.Category); err != nil {
		entry.CategoryLabel = strings.TrimSpace(req.Category)
	}
	return entry
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// GetDays returns daily totals, issues and the rollup for a period.
func (h *Handler) GetDays(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	result, err := h.compute(r.Context(), period)
	if err != nil {
		h.internalError(w, r, "Failed to compute days", err)
		return
	}
	writeJSON(w, http.StatusOK, h.daysResponse(period, result))
}

// GetDay returns a single date's total.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := engine.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	result, err := h.compute(r.Context(), engine.Period{Start: date, End: date})
	if err != nil {
		h.internalError(w, r, "Failed to compute day", err)
		return
	}
	day, ok := result.Day(date)
	if !ok {
		writeError(w, http.StatusNotFound, "No entries for date", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// GetSummary returns the monthly rollup for a period.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	result, err := h.compute(r.Context(), period)
	if err != nil {
		h.internalError(w, r, "Failed to compute summary", err)
		return
	}

	summary := result.Summary()
	writeJSON(w, http.StatusOK, SummaryResponse{
		From:       period.Start,
		To:         period.End,
		RuleSet:    h.Rules.Version,
		Months:     summary.Months,
		GrandTotal: summary.GrandTotal,
		Issues:     toIssueDTOs(result.Issues),
	})
}

// Preview computes a draft batch without storing anything. Unlike
// CreateEntry it accepts bad entries and reports them as issues.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]engine.ShiftEntry, len(req.Entries))
	for i, er := range req.Entries {
		entries[i] = draftEntry(engine.EntryID(fmt.Sprintf("draft-%d", i+1)), er)
	}

	calendar, err := engine.LoadCalendar(r.Context(), h.Store)
	if err != nil {
		h.internalError(w, r, "Failed to load holidays", err)
		return
	}
	result := h.run(r.Context(), calendar, entries)

	var period engine.Period
	if n := len(result.Days); n > 0 {
		period = engine.Period{Start: result.Days[0].Date, End: result.Days[n-1].Date}
	}
	writeJSON(w, http.StatusOK, h.daysResponse(period, result))
}

// GetRules returns the active rule set.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rules.ToJSON(h.Rules))
}

func (h *Handler) daysResponse(p engine.Period, result engine.Result) DaysResponse {
	days := make([]DayDTO, len(result.Days))
	for i, d := range result.Days {
		days[i] = toDayDTO(d)
	}
	return DaysResponse{
		From:    p.Start,
		To:      p.End,
		RuleSet: h.Rules.Version,
		Days:    days,
		Issues:  toIssueDTOs(result.Issues),
		Summary: result.Summary(),
	}
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holiday calendar.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	holiday := engine.Holiday{
		ID:        "hol-" + uuid.NewString(),
		Date:      date,
		Name:      strings.TrimSpace(req.Name),
		Recurring: req.Recurring,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		if errors.Is(err, engine.ErrHolidayExists) {
			writeError(w, http.StatusConflict, "Holiday already exists", err)
			return
		}
		h.internalError(w, r, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.storeError(w, r, "Holiday not found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EXPORT / IMPORT HANDLERS
// =============================================================================

// ExportEntries streams the entry sheet for a period.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	entries, err := h.Store.ListEntries(r.Context(), period.Start, period.End)
	if err != nil {
		h.internalError(w, r, "Failed to list entries", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEntries(&buf, entries); err != nil {
		h.internalError(w, r, "Failed to write CSV", err)
		return
	}
	writeCSV(w, fmt.Sprintf("entries_%s_%s.csv", period.Start, period.End), buf.Bytes())
}

// ExportDaily streams the daily summary sheet for a period.
func (h *Handler) ExportDaily(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	result, err := h.compute(r.Context(), period)
	if err != nil {
		h.internalError(w, r, "Failed to compute days", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDaily(&buf, result.Days); err != nil {
		h.internalError(w, r, "Failed to write CSV", err)
		return
	}
	writeCSV(w, fmt.Sprintf("daily_%s_%s.csv", period.Start, period.End), buf.Bytes())
}

// ImportEntries stores every row of an uploaded entry sheet. Rows are
// saved as read; the calculator reports any bad ones on the next query.
func (h *Handler) ImportEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := export.ReadEntries(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid CSV", err)
		return
	}

	resp := ImportResponse{IDs: make([]string, 0, len(entries))}
	for _, e := range entries {
		if err := h.Store.SaveEntry(r.Context(), e); err != nil {
			h.internalError(w, r, "Failed to save entry", err)
			return
		}
		resp.IDs = append(resp.IDs, string(e.ID))
	}
	resp.Imported = len(resp.IDs)

	h.Log.Info(r.Context(), "entries imported", logger.Int("count", resp.Imported))
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// periodFromQuery reads ?from=&to=, defaulting to the current month.
func (h *Handler) periodFromQuery(r *http.Request) (engine.Period, error) {
	month := engine.MonthPeriod(engine.DateOf(h.Now()).MonthKey())
	period := month

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			return period, fmt.Errorf("from: %w", err)
		}
		period.Start = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			return period, fmt.Errorf("to: %w", err)
		}
		period.End = d
	}

	if !period.Valid() {
		return period, errors.New("to must not precede from")
	}
	if engine.DaysBetween(period.Start, period.End) >= maxPeriodDays {
		return period, fmt.Errorf("period longer than %d days", maxPeriodDays)
	}
	return period, nil
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, notFound string, err error) {
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, notFound, err)
		return
	}
	h.internalError(w, r, "Storage error", err)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Log.Error(r.Context(), message, logger.String("path", r.URL.Path), logger.Error(err))
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

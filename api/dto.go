/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

POINTS:
  All point values are decimals serialized as JSON strings ("80",
  "12.5") so clients never see float rounding. Requests accept either
  strings or numbers.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - rules/factory.go: RuleSetJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
)

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a shift entry in API responses.
type EntryDTO struct {
	ID           string          `json:"id"`
	Date         engine.Date     `json:"date"`
	Category     string          `json:"category"`
	CategoryID   string          `json:"category_id"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	ExamCount    int             `json:"exam_count"`
	Productivity decimal.Decimal `json:"productivity"`
	Extra        decimal.Decimal `json:"extra"`
	Holiday      bool            `json:"holiday"`
	Notes        string          `json:"notes,omitempty"`
}

// EntryRequest is the body for creating or updating an entry. Category
// accepts the exact label or the snake-case identifier.
type EntryRequest struct {
	Date         string          `json:"date"`
	Category     string          `json:"category"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	ExamCount    int             `json:"exam_count"`
	Productivity decimal.Decimal `json:"productivity"`
	Extra        decimal.Decimal `json:"extra"`
	Holiday      bool            `json:"holiday"`
	Notes        string          `json:"notes"`
}

// =============================================================================
// COMPUTED RESULTS
// =============================================================================

// DayDTO is one computed date with display-ready durations.
type DayDTO struct {
	engine.DailyTotal
	Hours    string            `json:"hours"`
	BandTime map[string]string `json:"band_hours"`
}

// IssueDTO reports one entry the engine could not fully use.
type IssueDTO struct {
	Index    int    `json:"index"`
	EntryID  string `json:"entry_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DaysResponse is returned by GET /api/days and POST /api/preview.
type DaysResponse struct {
	From    engine.Date    `json:"from"`
	To      engine.Date    `json:"to"`
	RuleSet string         `json:"rule_set"`
	Days    []DayDTO       `json:"days"`
	Issues  []IssueDTO     `json:"issues"`
	Summary engine.Summary `json:"summary"`
}

// SummaryResponse is returned by GET /api/summary.
type SummaryResponse struct {
	From       engine.Date           `json:"from"`
	To         engine.Date           `json:"to"`
	RuleSet    string                `json:"rule_set"`
	Months     []engine.MonthlyTotal `json:"months"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Issues     []IssueDTO            `json:"issues"`
}

// PreviewRequest holds a draft batch computed without persisting it.
type PreviewRequest struct {
	Entries []EntryRequest `json:"entries"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID        string      `json:"id"`
	Date      engine.Date `json:"date"`
	Name      string      `json:"name"`
	Recurring bool        `json:"recurring"`
}

// CreateHolidayRequest is the body for POST /api/holidays.
type CreateHolidayRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// MISC
// =============================================================================

// ImportResponse reports the outcome of a CSV import.
type ImportResponse struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Month       string `json:"month"`
}

// LoadScenarioRequest is the body for POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEntryDTO(e engine.ShiftEntry) EntryDTO {
	return EntryDTO{
		ID:           string(e.ID),
		Date:         e.Date,
		Category:     e.CategoryText(),
		CategoryID:   e.Category.ID(),
		Start:        e.Start,
		End:          e.End,
		ExamCount:    e.ExamCount,
		Productivity: e.Productivity,
		Extra:        e.Extra,
		Holiday:      e.Holiday,
		Notes:        e.Notes,
	}
}

func toDayDTO(d engine.DailyTotal) DayDTO {
	dto := DayDTO{
		DailyTotal: d,
		Hours:      engine.FormatMinutes(d.Minutes()),
		BandTime:   make(map[string]string, len(engine.Bands)),
	}
	for _, b := range engine.Bands {
		dto.BandTime[b.String()] = engine.FormatMinutes(d.Band(b).Minutes)
	}
	return dto
}

func toIssueDTOs(issues []*engine.EntryError) []IssueDTO {
	out := make([]IssueDTO, len(issues))
	for i, issue := range issues {
		out[i] = IssueDTO{
			Index:    issue.Index,
			EntryID:  string(issue.EntryID),
			Date:     issue.Date.String(),
			Kind:     issue.Kind(),
			Severity: string(issue.Severity()),
			Message:  issue.Err.Error(),
		}
	}
	return out
}

func toHolidayDTO(h engine.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date, Name: h.Name, Recurring: h.Recurring}
}

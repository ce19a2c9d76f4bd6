/*
errors.go - Per-entry error taxonomy

PURPOSE:
  Every error the engine can report concerns a single entry. None of
  them aborts a batch: the calculator collects them as Issues next to
  the partial results.

ERROR KINDS:
  ErrInvalidTimeFormat:      start/end clock text could not be parsed (rejected)
  ErrIntervalExceedsMaxSpan: interval longer than 24 hours (rejected)
  ErrUnknownCategory:        category outside the closed set (warning, no-op)
  ErrMalformedRecord:        required field missing or out of range (warning, skipped)

USAGE:
  if errors.Is(err, engine.ErrInvalidTimeFormat) { ... }

  var entryErr *engine.EntryError
  if errors.As(err, &entryErr) {
      fmt.Println(entryErr.Index, entryErr.EntryID)
  }

SEE ALSO:
  - calculator.go: collects EntryErrors into Result.Issues
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when clock text cannot be parsed.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrIntervalExceedsMaxSpan is returned when an interval spans more than 24 hours.
	ErrIntervalExceedsMaxSpan = errors.New("interval exceeds maximum span of 24 hours")

	// ErrUnknownCategory is returned when a category label is outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrMalformedRecord is returned when a required field is missing or invalid.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEntryNotFound is returned by stores when an entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrHolidayNotFound is returned by stores when a holiday does not exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrHolidayExists is returned by stores when a holiday with the same
	// date and name is already on the calendar.
	ErrHolidayExists = errors.New("holiday already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ClockError reports the offending clock text.
type ClockError struct {
	Input  string
	Reason string
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("invalid time format %q: %s", e.Input, e.Reason)
}

func (e *ClockError) Unwrap() error { return ErrInvalidTimeFormat }

// SpanError reports an interval that is too long.
type SpanError struct {
	Start, End string
	Hours      float64
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("interval %s -> %s spans %.2f hours (max 24)", e.Start, e.End, e.Hours)
}

func (e *SpanError) Unwrap() error { return ErrIntervalExceedsMaxSpan }

// Severity classifies how an issue affected the entry.
type Severity string

const (
	SeverityRejected Severity = "rejected" // entry dropped from computation
	SeverityWarning  Severity = "warning"  // data-quality defect, entry contributes nothing
)

// EntryError ties an error to the entry that caused it.
type EntryError struct {
	Index   int // position in the input batch
	EntryID EntryID
	Date    Date
	Err     error
}

func (e *EntryError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("entry %s (#%d): %v", e.EntryID, e.Index, e.Err)
	}
	return fmt.Sprintf("entry #%d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Severity returns how the entry was treated.
func (e *EntryError) Severity() Severity {
	if IsWarning(e.Err) {
		return SeverityWarning
	}
	return SeverityRejected
}

// Kind returns a stable snake-case name for the underlying error, used
// as a metrics label and in API responses.
func (e *EntryError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrInvalidTimeFormat):
		return "invalid_time_format"
	case errors.Is(e.Err, ErrIntervalExceedsMaxSpan):
		return "interval_exceeds_max_span"
	case errors.Is(e.Err, ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(e.Err, ErrMalformedRecord):
		return "malformed_record"
	}
	return "other"
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRejection returns true if the entry was dropped because its interval is unusable.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrIntervalExceedsMaxSpan)
}

// IsWarning returns true if the error is a data-quality warning.
func IsWarning(err error) bool {
	return errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrMalformedRecord)
}

// IsNotFound returns true if the error indicates a missing stored record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsRejection(err) || IsWarning(err)
}

package engine

import (
	"iter"
	"time"
)

// MaxSpan is the longest interval a single entry may cover.
const MaxSpan = 24 * time.Hour

// Normalize splits [start, end) into day-bounded minute ranges.
//
// When end is not after start on the same calendar date the interval is
// taken to cross midnight and end moves one day forward. Spans longer
// than MaxSpan fail with a *SpanError. The returned sequence is lazy and
// never yields an empty slice; Category is left as CategoryUnknown for
// the caller to fill.
func Normalize(start, end time.Time) (iter.Seq[DaySlice], error) {
	start, end = start.Truncate(time.Minute), end.Truncate(time.Minute)
	if !end.After(start) && DateOf(start) == DateOf(end) {
		end = end.AddDate(0, 0, 1)
	}

	span := end.Sub(start)
	if span > MaxSpan {
		return nil, &SpanError{
			Start: start.Format(DateLayout + " 15:04"),
			End:   end.Format(DateLayout + " 15:04"),
			Hours: span.Hours(),
		}
	}
	if span <= 0 {
		// end precedes start on an earlier date: nothing to cover
		return func(func(DaySlice) bool) {}, nil
	}

	first, last := DateOf(start), DateOf(end)
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	return func(yield func(DaySlice) bool) {
		for d := first; !d.After(last); d = d.AddDays(1) {
			lo, hi := 0, MinutesPerDay
			if d == first {
				lo = startMin
			}
			if d == last {
				hi = endMin
			}
			if hi <= lo {
				continue
			}
			if !yield(DaySlice{Date: d, Start: lo, End: hi}) {
				return
			}
		}
	}, nil
}

// NormalizeEntry parses the entry's clock text and normalizes it against
// the entry's date. The category is copied onto every slice.
func NormalizeEntry(e ShiftEntry) ([]DaySlice, error) {
	start, err := ParseClock(e.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(e.End)
	if err != nil {
		return nil, err
	}

	seq, err := Normalize(e.Date.At(start), e.Date.At(end))
	if err != nil {
		return nil, err
	}

	var slices []DaySlice
	for s := range seq {
		s.Category = e.Category
		slices = append(slices, s)
	}
	return slices, nil
}

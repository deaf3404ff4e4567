package entity

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateRange is a calendar date range, inclusive on both ends.
// A rental ending on day D and another starting on day D conflict.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY-MM-DD strings into a DateRange.
// It does not enforce ordering; callers validate Start < End.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// Valid reports whether the range is strictly ordered.
func (r DateRange) Valid() bool {
	return r.Start.Before(r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day:
// a1 <= b2 AND b1 <= a2. Symmetric; adjacency counts as overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// TotalDays is the whole-day count between Start and End, rounded up.
// For date-only values this is simply the calendar day difference.
func (r DateRange) TotalDays() int {
	hours := r.End.Sub(r.Start).Hours()
	days := int(hours / 24)
	if float64(days*24) < hours {
		days++
	}
	return days
}

// Days expands the range into every calendar day it covers, inclusive.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String renders the range in the form shown to callers on conflicts,
// e.g. "2026-03-01 to 2026-03-05".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

// Package recurrence expands a recurrence rule and an anchor date into
// the concrete occurrence dates falling inside a queried window.  The
// expansion is a pure function: no I/O, no clock, same inputs always
// yield the same output.  Malformed rules expand to an empty sequence
// rather than an error, because the results feed calendar and listing
// pages where an empty calendar beats a crash.
package recurrence

import (
	"strings"
	"time"
)

// Frequency names the unit a rule steps by.  BIWEEKLY is a distinct
// frequency rather than WEEKLY with interval 2 for compatibility with
// the stored representation; its effective interval is always 2.
type Frequency string

const (
	Daily    Frequency = "DAILY"
	Weekly   Frequency = "WEEKLY"
	Biweekly Frequency = "BIWEEKLY"
	Monthly  Frequency = "MONTHLY"
	Yearly   Frequency = "YEARLY"
)

// ParseFrequency maps a stored frequency string to a Frequency.  The
// second return value is false for unknown values.
func ParseFrequency(s string) (Frequency, bool) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case Daily:
		return Daily, true
	case Weekly:
		return Weekly, true
	case Biweekly:
		return Biweekly, true
	case Monthly:
		return Monthly, true
	case Yearly:
		return Yearly, true
	}
	return "", false
}

// WeekdaySet is a 7-bit set of weekdays with bit i representing
// time.Weekday(i), so bit 0 is Sunday.  The bit layout matches the
// stored days_of_week column exactly; this type exists so the rest of
// the code never manipulates raw masks.  The zero value is the empty
// set, which WEEKLY and BIWEEKLY rules treat as "the anchor's weekday".
type WeekdaySet uint8

const weekdayMask = 0x7F

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// WeekdaySetFromBits wraps a stored mask, discarding the unused high bit.
func WeekdaySetFromBits(bits uint8) WeekdaySet {
	return WeekdaySet(bits) & weekdayMask
}

// With returns the set with d added.
func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return (s | 1<<uint(d)) & weekdayMask
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether no weekday is set.
func (s WeekdaySet) IsEmpty() bool { return s&weekdayMask == 0 }

// Bits returns the raw stored representation.
func (s WeekdaySet) Bits() uint8 { return uint8(s & weekdayMask) }

// LastDayOfMonth is the DayOfMonth sentinel meaning "the last calendar
// day of each month", whatever its length.
const LastDayOfMonth = -1

// Rule describes how an anchor date repeats.
//
//	Frequency  – step unit; required.
//	Interval   – every N units; 0 means 1.  Ignored for BIWEEKLY,
//	             whose effective interval is always 2.
//	Days       – weekday set for WEEKLY/BIWEEKLY; empty means the
//	             anchor's weekday.  Ignored for other frequencies.
//	DayOfMonth – 1..31, LastDayOfMonth, or 0 meaning the anchor's day.
//	             Days beyond a month's length clamp to its last day
//	             (nominal 31 in February yields Feb 29 or 28).
//	             Only meaningful for MONTHLY.
//	EndDate    – optional last date an occurrence may fall on.
//	Count      – optional total number of occurrences from the anchor.
//
// EndDate and Count may both be set; generation stops at whichever is
// hit first.
type Rule struct {
	Frequency  Frequency
	Interval   int
	Days       WeekdaySet
	DayOfMonth int
	EndDate    *time.Time
	Count      int
}

// effectiveInterval resolves the stride in frequency units, or 0 when
// the rule is malformed.
func (r Rule) effectiveInterval() int {
	if r.Frequency == Biweekly {
		return 2
	}
	switch {
	case r.Interval == 0:
		return 1
	case r.Interval > 0:
		return r.Interval
	}
	return 0
}

// valid reports whether the rule is well formed enough to expand.
func (r Rule) valid() bool {
	switch r.Frequency {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
	default:
		return false
	}
	if r.effectiveInterval() <= 0 {
		return false
	}
	if r.Count < 0 {
		return false
	}
	if r.DayOfMonth < LastDayOfMonth || r.DayOfMonth > 31 {
		return false
	}
	return true
}

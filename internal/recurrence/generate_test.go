package recurrence

import (
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func datesEqual(t *testing.T, got []time.Time, want ...time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: got %s, want %s", i, got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestGenerateWeeklyTwoDays(t *testing.T) {
	// Anchor on a Monday, repeating Mondays and Wednesdays.
	rule := Rule{Frequency: Weekly, Days: NewWeekdaySet(time.Monday, time.Wednesday)}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 1, 14), 100)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 3), d(2024, 1, 8), d(2024, 1, 10))
}

func TestGenerateWeeklyAnchorMidWeek(t *testing.T) {
	// Anchor on a Thursday with only Monday set: the first occurrence
	// is the Monday of the following week, never before the anchor.
	rule := Rule{Frequency: Weekly, Days: NewWeekdaySet(time.Monday)}
	got := Generate(d(2024, 1, 4), rule, d(2024, 1, 1), d(2024, 1, 31), 100)
	datesEqual(t, got, d(2024, 1, 8), d(2024, 1, 15), d(2024, 1, 22), d(2024, 1, 29))
}

func TestGenerateWeeklyEmptyDaysUsesAnchorWeekday(t *testing.T) {
	rule := Rule{Frequency: Weekly}
	got := Generate(d(2024, 1, 2), rule, d(2024, 1, 1), d(2024, 1, 31), 100)
	datesEqual(t, got, d(2024, 1, 2), d(2024, 1, 9), d(2024, 1, 16), d(2024, 1, 23), d(2024, 1, 30))
}

func TestGenerateBiweeklyStride(t *testing.T) {
	// BIWEEKLY ignores Interval; the stride is always two weeks.
	rule := Rule{Frequency: Biweekly, Interval: 5}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 2, 29), 100)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 15), d(2024, 1, 29), d(2024, 2, 12), d(2024, 2, 26))
}

func TestGenerateMonthlyDay31Clamps(t *testing.T) {
	rule := Rule{Frequency: Monthly, DayOfMonth: 31}
	got := Generate(d(2024, 1, 31), rule, d(2024, 1, 1), d(2024, 4, 30), 100)
	datesEqual(t, got, d(2024, 1, 31), d(2024, 2, 29), d(2024, 3, 31), d(2024, 4, 30))
}

func TestGenerateMonthlyLastDaySentinel(t *testing.T) {
	rule := Rule{Frequency: Monthly, DayOfMonth: LastDayOfMonth}
	got := Generate(d(2024, 1, 15), rule, d(2024, 1, 1), d(2024, 3, 31), 100)
	datesEqual(t, got, d(2024, 1, 31), d(2024, 2, 29), d(2024, 3, 31))
}

func TestGenerateMonthlyAnchorDayDefault(t *testing.T) {
	// DayOfMonth 0 follows the anchor's day.
	rule := Rule{Frequency: Monthly, Interval: 2}
	got := Generate(d(2024, 1, 10), rule, d(2024, 1, 1), d(2024, 6, 30), 100)
	datesEqual(t, got, d(2024, 1, 10), d(2024, 3, 10), d(2024, 5, 10))
}

func TestGenerateDailyInterval(t *testing.T) {
	rule := Rule{Frequency: Daily, Interval: 3}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 1, 10), 100)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 4), d(2024, 1, 7), d(2024, 1, 10))
}

func TestGenerateYearlyLeapDayClamps(t *testing.T) {
	rule := Rule{Frequency: Yearly}
	got := Generate(d(2024, 2, 29), rule, d(2024, 1, 1), d(2028, 12, 31), 100)
	datesEqual(t, got, d(2024, 2, 29), d(2025, 2, 28), d(2026, 2, 28), d(2027, 2, 28), d(2028, 2, 29))
}

func TestGenerateCountCountsPreRangeOccurrences(t *testing.T) {
	// Occurrences before the window still consume the count.
	rule := Rule{Frequency: Daily, Count: 5}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 4), d(2024, 1, 31), 100)
	datesEqual(t, got, d(2024, 1, 4), d(2024, 1, 5))
}

func TestGenerateEndDateStopsSeries(t *testing.T) {
	end := d(2024, 1, 15)
	rule := Rule{Frequency: Weekly, EndDate: &end}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 3, 31), 100)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 15))
}

func TestGenerateEndDateBeforeCountExhausted(t *testing.T) {
	// Both limits set: whichever hits first wins.
	end := d(2024, 1, 3)
	rule := Rule{Frequency: Daily, Count: 10, EndDate: &end}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 1, 31), 100)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 2), d(2024, 1, 3))
}

func TestGenerateMaxOccurrencesCap(t *testing.T) {
	rule := Rule{Frequency: Daily}
	got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 12, 31), 5)
	datesEqual(t, got, d(2024, 1, 1), d(2024, 1, 2), d(2024, 1, 3), d(2024, 1, 4), d(2024, 1, 5))
}

func TestGenerateMalformedRules(t *testing.T) {
	cases := map[string]Rule{
		"unknown frequency": {Frequency: "HOURLY"},
		"negative interval": {Frequency: Weekly, Interval: -1},
		"negative count":    {Frequency: Daily, Count: -2},
		"bad day of month":  {Frequency: Monthly, DayOfMonth: 32},
	}
	for name, rule := range cases {
		if got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 12, 31), 100); len(got) != 0 {
			t.Errorf("%s: got %v, want empty", name, got)
		}
	}
}

func TestGenerateInvertedRange(t *testing.T) {
	rule := Rule{Frequency: Daily}
	if got := Generate(d(2024, 1, 1), rule, d(2024, 2, 1), d(2024, 1, 1), 100); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestGenerateEndDateBeforeAnchor(t *testing.T) {
	end := d(2023, 12, 1)
	rule := Rule{Frequency: Daily, EndDate: &end}
	if got := Generate(d(2024, 1, 1), rule, d(2024, 1, 1), d(2024, 1, 31), 100); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

// TestGenerateSkipMatchesFullWalk checks that querying a far window
// directly (which engages the coarse skip) yields the same dates as
// walking the whole series from the anchor and filtering.
func TestGenerateSkipMatchesFullWalk(t *testing.T) {
	rules := []Rule{
		{Frequency: Daily, Interval: 3},
		{Frequency: Weekly, Days: NewWeekdaySet(time.Tuesday, time.Friday)},
		{Frequency: Biweekly, Days: NewWeekdaySet(time.Monday)},
		{Frequency: Monthly, DayOfMonth: 31},
		{Frequency: Monthly, Interval: 2, DayOfMonth: LastDayOfMonth},
		{Frequency: Yearly},
	}
	anchor := d(2024, 1, 31)
	from, to := d(2027, 3, 1), d(2027, 6, 30)
	for _, rule := range rules {
		direct := Generate(anchor, rule, from, to, 1000)

		var filtered []time.Time
		for _, occ := range Generate(anchor, rule, anchor, to, 10000) {
			if !occ.Before(from) {
				filtered = append(filtered, occ)
			}
		}
		if len(direct) != len(filtered) {
			t.Fatalf("%s: direct %v != filtered %v", rule.Frequency, direct, filtered)
		}
		for i := range direct {
			if !direct[i].Equal(filtered[i]) {
				t.Fatalf("%s: occurrence %d: %s != %s", rule.Frequency, i,
					direct[i].Format("2006-01-02"), filtered[i].Format("2006-01-02"))
			}
		}
	}
}

func TestParseFrequency(t *testing.T) {
	if f, ok := ParseFrequency(" biweekly "); !ok || f != Biweekly {
		t.Fatalf("got %q ok=%v", f, ok)
	}
	if _, ok := ParseFrequency("FORTNIGHTLY"); ok {
		t.Fatal("expected unknown frequency to be rejected")
	}
}

func TestWeekdaySetBits(t *testing.T) {
	s := NewWeekdaySet(time.Sunday, time.Saturday)
	if s.Bits() != 0b1000001 {
		t.Fatalf("bits = %07b", s.Bits())
	}
	if !s.Has(time.Sunday) || !s.Has(time.Saturday) || s.Has(time.Wednesday) {
		t.Fatal("membership mismatch")
	}
	if WeekdaySetFromBits(0xFF).Bits() != 0x7F {
		t.Fatal("high bit should be discarded")
	}
}

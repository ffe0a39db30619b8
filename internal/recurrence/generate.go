package recurrence

import "time"

// Generate expands rule from its anchor date into the ordered list of
// occurrence dates inside [rangeStart, rangeEnd], emitting at most
// maxOccurrences results.  All dates are normalized to midnight UTC.
//
// Occurrences falling before rangeStart are still walked (they count
// toward rule.Count) but are excluded from the output.  When the range
// begins far after the anchor and no count limits the rule, a
// frequency-specific coarse skip fast-forwards the cursor; the skip
// only ever under-shoots, so no occurrence inside the range can be
// jumped over.
//
// A malformed rule, an inverted range, or a non-positive
// maxOccurrences yields an empty sequence, never an error.
func Generate(anchor time.Time, rule Rule, rangeStart, rangeEnd time.Time, maxOccurrences int) []time.Time {
	if !rule.valid() || maxOccurrences <= 0 {
		return nil
	}
	anchor = dateOnly(anchor)
	rangeStart = dateOnly(rangeStart)
	rangeEnd = dateOnly(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	iv := rule.effectiveInterval()
	days := rule.Days
	if (rule.Frequency == Weekly || rule.Frequency == Biweekly) && days.IsEmpty() {
		days = NewWeekdaySet(anchor.Weekday())
	}
	var until *time.Time
	if rule.EndDate != nil {
		u := dateOnly(*rule.EndDate)
		if u.Before(anchor) {
			return nil
		}
		until = &u
	}

	cur := firstOccurrence(anchor, rule, days, iv)

	// Coarse skip toward the window.  Disabled when a count terminates
	// the rule: every skipped occurrence would still have to be counted.
	if rule.Count == 0 && cur.Before(rangeStart) {
		cur = skipToward(cur, rangeStart, anchor, rule, days, iv)
	}

	var out []time.Time
	produced := 0
	for !cur.After(rangeEnd) {
		if until != nil && cur.After(*until) {
			break
		}
		if rule.Count > 0 && produced >= rule.Count {
			break
		}
		produced++
		if !cur.Before(rangeStart) {
			out = append(out, cur)
			if len(out) >= maxOccurrences {
				break
			}
		}
		cur = next(cur, anchor, rule, days, iv)
	}
	return out
}

// firstOccurrence returns the earliest date >= anchor matching the rule.
func firstOccurrence(anchor time.Time, rule Rule, days WeekdaySet, iv int) time.Time {
	switch rule.Frequency {
	case Weekly, Biweekly:
		if days.Has(anchor.Weekday()) {
			return anchor
		}
		// Later weekday in the anchor's own week, else the first set
		// weekday of the next pattern week.
		for d := anchor.AddDate(0, 0, 1); d.Weekday() != time.Sunday; d = d.AddDate(0, 0, 1) {
			if days.Has(d.Weekday()) {
				return d
			}
		}
		return firstSetDayIn(weekStart(anchor).AddDate(0, 0, iv*7), days)
	case Monthly:
		d := monthlyDate(anchor.Year(), anchor.Month(), rule.DayOfMonth, anchor.Day())
		if !d.Before(anchor) {
			return d
		}
		return addMonthBlocks(anchor.Year(), anchor.Month(), iv, rule.DayOfMonth, anchor.Day())
	default: // Daily, Yearly: the anchor itself opens the series.
		return anchor
	}
}

// next advances cur to the following occurrence.
func next(cur, anchor time.Time, rule Rule, days WeekdaySet, iv int) time.Time {
	switch rule.Frequency {
	case Daily:
		return cur.AddDate(0, 0, iv)
	case Weekly, Biweekly:
		for d := cur.AddDate(0, 0, 1); d.Weekday() != time.Sunday; d = d.AddDate(0, 0, 1) {
			if days.Has(d.Weekday()) {
				return d
			}
		}
		return firstSetDayIn(weekStart(cur).AddDate(0, 0, iv*7), days)
	case Monthly:
		return addMonthBlocks(cur.Year(), cur.Month(), iv, rule.DayOfMonth, anchor.Day())
	default: // Yearly
		y := cur.Year() + iv
		return time.Date(y, anchor.Month(), clampDay(anchor.Day(), y, anchor.Month()), 0, 0, 0, 0, time.UTC)
	}
}

// skipToward fast-forwards cur by whole intervals without passing any
// occurrence at or after rangeStart.  Under-shooting is fine; the main
// loop steps the rest of the way.
func skipToward(cur, rangeStart, anchor time.Time, rule Rule, days WeekdaySet, iv int) time.Time {
	switch rule.Frequency {
	case Daily:
		steps := daysBetween(cur, rangeStart) / iv
		if steps > 0 {
			return cur.AddDate(0, 0, steps*iv)
		}
	case Weekly, Biweekly:
		weeks := daysBetween(weekStart(cur), weekStart(rangeStart)) / 7
		if steps := weeks / iv; steps > 0 {
			return firstSetDayIn(weekStart(cur).AddDate(0, 0, steps*iv*7), days)
		}
	case Monthly:
		months := monthIndex(rangeStart) - monthIndex(cur)
		if steps := months / iv; steps > 0 {
			return addMonthBlocks(cur.Year(), cur.Month(), steps*iv, rule.DayOfMonth, anchor.Day())
		}
	case Yearly:
		years := rangeStart.Year() - cur.Year()
		if steps := years / iv; steps > 0 {
			y := cur.Year() + steps*iv
			return time.Date(y, anchor.Month(), clampDay(anchor.Day(), y, anchor.Month()), 0, 0, 0, 0, time.UTC)
		}
	}
	return cur
}

// monthlyDate resolves the occurrence date within one month.  nominal
// follows the rule's DayOfMonth: 0 falls back to the anchor's day and
// LastDayOfMonth selects the final day.  Days beyond the month's length
// clamp to its last day.
func monthlyDate(year int, month time.Month, dayOfMonth, anchorDay int) time.Time {
	last := daysInMonth(year, month)
	day := dayOfMonth
	switch {
	case dayOfMonth == 0:
		day = anchorDay
	case dayOfMonth == LastDayOfMonth:
		day = last
	}
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// addMonthBlocks moves n months forward from (year, month) and resolves
// the day there.  Month arithmetic is done on a flat index because
// time.AddDate normalizes Jan 31 + 1 month into March.
func addMonthBlocks(year int, month time.Month, n, dayOfMonth, anchorDay int) time.Time {
	idx := year*12 + int(month) - 1 + n
	return monthlyDate(idx/12, time.Month(idx%12+1), dayOfMonth, anchorDay)
}

func monthIndex(t time.Time) int { return t.Year()*12 + int(t.Month()) - 1 }

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(day, year int, month time.Month) int {
	if last := daysInMonth(year, month); day > last {
		return last
	}
	return day
}

// firstSetDayIn returns the first set weekday in the week opened by
// sunday.  Callers pass a non-empty set.
func firstSetDayIn(sunday time.Time, days WeekdaySet) time.Time {
	for i := 0; i < 7; i++ {
		if d := sunday.AddDate(0, 0, i); days.Has(d.Weekday()) {
			return d
		}
	}
	return sunday
}

// weekStart returns the Sunday opening t's week.  Weeks run
// Sunday-first to match the weekday bitmask layout.
func weekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// daysBetween counts whole days from a to b; both must be midnight UTC.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

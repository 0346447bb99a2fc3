package recurrence

import (
	"time"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// maxIterations bounds rule expansion so a misconfigured rule can never spin
// the engine forever.
const maxIterations = 100

// maxMonthlyLookahead is how many months the ordinal strategy searches for a
// month containing the target ordinal weekday before falling back to the
// anchor's day-of-month.
const maxMonthlyLookahead = 12

// Strategy locates the dated occurrences of one recurrence cadence. All
// inputs and outputs are calendar dates at local midnight.
type Strategy interface {
	// First returns the earliest occurrence on or after from, anchored at the
	// rule's start date.
	First(anchor, from time.Time) (time.Time, bool)
	// Next returns the occurrence following current.
	Next(anchor, current time.Time) (time.Time, bool)
}

// StrategyFor selects the strategy for a recurrence type. Unknown types fall
// back to a daily increment so expansion stays total.
func StrategyFor(rec models.RecurrenceType, weekday time.Weekday) Strategy {
	switch rec {
	case models.RecurrenceWeekly:
		return weekdayStrategy{weekday: weekday, intervalWeeks: 1}
	case models.RecurrenceBiweekly:
		return weekdayStrategy{weekday: weekday, intervalWeeks: 2}
	case models.RecurrenceTriweekly:
		return weekdayStrategy{weekday: weekday, intervalWeeks: 3}
	case models.RecurrenceMonthly:
		return monthlyOrdinalStrategy{weekday: weekday}
	default:
		return dailyStrategy{}
	}
}

// Occurrences expands a rule into its concrete (start, end) windows inside
// [rangeStart, rangeEnd], ordered ascending. The function is pure: it touches
// no clock and no storage.
func Occurrences(rule models.RecurringRule, rangeStart, rangeEnd time.Time) []models.TimeRange {
	startClock, err := models.ParseWallClock(rule.StartTime)
	if err != nil {
		return nil
	}
	endClock, err := models.ParseWallClock(rule.EndTime)
	if err != nil {
		endClock = models.WallClock{Hour: startClock.Hour + 1, Minute: startClock.Minute}
	}

	anchor := DateOnly(rule.StartDate)
	from := anchor
	if rs := DateOnly(rangeStart); rs.After(from) {
		from = rs
	}

	strat := StrategyFor(rule.RecurrenceType, rule.Weekday())

	var out []models.TimeRange
	day, ok := strat.First(anchor, from)
	for i := 0; ok && i < maxIterations; i++ {
		start := startClock.On(day)
		if start.After(rangeEnd) {
			break
		}
		end := endClock.On(day)
		if !end.After(start) {
			// wraps past midnight
			end = end.AddDate(0, 0, 1)
		}
		if !start.Before(rangeStart) {
			out = append(out, models.TimeRange{Start: start, End: end})
		}
		day, ok = strat.Next(anchor, day)
	}

	return out
}

type weekdayStrategy struct {
	weekday       time.Weekday
	intervalWeeks int
}

func (s weekdayStrategy) First(anchor, from time.Time) (time.Time, bool) {
	candidate := nextWeekdayOnOrAfter(from, s.weekday)
	if s.intervalWeeks > 1 {
		// Walk forward in whole weeks until the distance from the anchor is a
		// multiple of the cadence. Rules whose anchor sits off the target
		// weekday can never align; the first weekday match stands for those.
		period := s.intervalWeeks * 7
		aligned := candidate
		for i := 0; i < s.intervalWeeks; i++ {
			if daysBetween(anchor, aligned)%period == 0 {
				candidate = aligned
				break
			}
			aligned = aligned.AddDate(0, 0, 7)
		}
	}
	return candidate, true
}

func (s weekdayStrategy) Next(anchor, current time.Time) (time.Time, bool) {
	return current.AddDate(0, 0, s.intervalWeeks*7), true
}

type monthlyOrdinalStrategy struct {
	weekday time.Weekday
}

func (s monthlyOrdinalStrategy) First(anchor, from time.Time) (time.Time, bool) {
	ordinal := weekdayOrdinal(anchor)
	for i := 0; i <= maxMonthlyLookahead; i++ {
		year, month := addMonths(from.Year(), from.Month(), i)
		candidate, ok := nthWeekdayOfMonth(year, month, s.weekday, ordinal, from.Location())
		if ok && !candidate.Before(from) && !candidate.Before(anchor) {
			return candidate, true
		}
	}
	return s.fallbackDayOfMonth(anchor, from)
}

func (s monthlyOrdinalStrategy) Next(anchor, current time.Time) (time.Time, bool) {
	ordinal := weekdayOrdinal(anchor)
	for i := 1; i <= maxMonthlyLookahead; i++ {
		year, month := addMonths(current.Year(), current.Month(), i)
		candidate, ok := nthWeekdayOfMonth(year, month, s.weekday, ordinal, current.Location())
		if ok {
			// Months missing the ordinal (a "5th Friday") are skipped outright,
			// never clamped to the last occurrence.
			return candidate, true
		}
	}
	return s.fallbackDayOfMonth(anchor, current.AddDate(0, 0, 1))
}

// fallbackDayOfMonth is the last resort after the ordinal search gives up:
// the anchor's plain day-of-month in the next month that has it.
func (s monthlyOrdinalStrategy) fallbackDayOfMonth(anchor, from time.Time) (time.Time, bool) {
	for i := 0; i <= maxMonthlyLookahead; i++ {
		year, month := addMonths(from.Year(), from.Month(), i)
		if anchor.Day() > daysInMonth(year, month) {
			continue
		}
		candidate := time.Date(year, month, anchor.Day(), 0, 0, 0, 0, from.Location())
		if !candidate.Before(from) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

type dailyStrategy struct{}

func (dailyStrategy) First(anchor, from time.Time) (time.Time, bool) {
	if anchor.After(from) {
		return anchor, true
	}
	return from, true
}

func (dailyStrategy) Next(anchor, current time.Time) (time.Time, bool) {
	return current.AddDate(0, 0, 1), true
}

// DateOnly truncates a time to local midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextWeekdayOnOrAfter(t time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset)
}

// daysBetween counts whole calendar days from a to b, DST-proof by comparing
// UTC midnights.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// weekdayOrdinal returns which occurrence of its weekday the date is within
// its month ("2nd Tuesday" = 2).
func weekdayOrdinal(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int, loc *time.Location) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7
	if day > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func addMonths(year int, month time.Month, delta int) (int, time.Month) {
	total := year*12 + int(month) - 1 + delta
	return total / 12, time.Month(total%12 + 1)
}

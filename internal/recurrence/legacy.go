package recurrence

import (
	"time"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// DefaultProjectionCount is how many future occurrences a legacy-tagged
// appointment projects when the caller does not say otherwise.
const DefaultProjectionCount = 8

// ProjectWindow projects a booked window forward along its recurrence tag,
// returning up to count future occurrences strictly after the base window.
// The base itself is not included. Results are conflict-detection fodder
// only, never bookable entities.
func ProjectWindow(base models.TimeRange, rec models.RecurrenceType, count int) []models.TimeRange {
	if !rec.IsRecurring() {
		return nil
	}
	if count <= 0 {
		count = DefaultProjectionCount
	}

	duration := base.Duration()
	out := make([]models.TimeRange, 0, count)
	start := base.Start
	for i := 0; i < count; i++ {
		start = nextLegacy(start, rec)
		out = append(out, models.TimeRange{Start: start, End: start.Add(duration)})
	}
	return out
}

// ProjectLegacy projects an appointment carrying a pre-migration recurrence
// tag instead of a RecurringRule row.
func ProjectLegacy(appt models.Appointment, count int) []models.TimeRange {
	return ProjectWindow(appt.Range(), appt.Recurrence, count)
}

// nextLegacy advances one legacy cadence step. The monthly step is a
// deliberate "every 4 weeks" approximation kept for compatibility with
// pre-migration rows: 28 days always re-lands on the booked weekday but
// drifts from the true calendar-month ordinal over time. New rules use the
// exact ordinal strategy instead.
func nextLegacy(start time.Time, rec models.RecurrenceType) time.Time {
	switch rec {
	case models.RecurrenceWeekly:
		return start.AddDate(0, 0, 7)
	case models.RecurrenceBiweekly:
		return start.AddDate(0, 0, 14)
	case models.RecurrenceTriweekly:
		return start.AddDate(0, 0, 21)
	case models.RecurrenceMonthly:
		return start.AddDate(0, 0, 28)
	default:
		return start.AddDate(0, 0, 7)
	}
}

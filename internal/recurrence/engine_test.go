package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

func intPtr(v int) *int { return &v }

func weeklyMondayRule() models.RecurringRule {
	return models.RecurringRule{
		ID:             "rule-1",
		ProviderID:     "prov-1",
		ClientID:       "client-1",
		RecurrenceType: models.RecurrenceWeekly,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		EndTime:        "11:00",
		DayOfWeek:      intPtr(1),
		IsActive:       true,
	}
}

func TestOccurrencesWeekly(t *testing.T) {
	rule := weeklyMondayRule()
	out := Occurrences(rule,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
	)

	require.Len(t, out, 5)
	wantDays := []int{1, 8, 15, 22, 29}
	for i, span := range out {
		assert.Equal(t, time.Monday, span.Start.Weekday())
		assert.Equal(t, wantDays[i], span.Start.Day())
		assert.Equal(t, 10, span.Start.Hour())
		assert.Equal(t, 11, span.End.Hour())
	}
}

func TestOccurrencesWeeklyWindowClipped(t *testing.T) {
	rule := weeklyMondayRule()
	out := Occurrences(rule,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	)

	require.Len(t, out, 1)
	assert.Equal(t, 15, out[0].Start.Day())
}

func TestOccurrencesBiweeklySpacing(t *testing.T) {
	rule := weeklyMondayRule()
	rule.RecurrenceType = models.RecurrenceBiweekly

	out := Occurrences(rule,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	)

	require.Greater(t, len(out), 3)
	for i := 1; i < len(out); i++ {
		diff := out[i].Start.Sub(out[i-1].Start)
		assert.Equal(t, 14*24*time.Hour, diff, "occurrence %d", i)
	}
}

func TestOccurrencesBiweeklyAlignsToAnchor(t *testing.T) {
	rule := weeklyMondayRule()
	rule.RecurrenceType = models.RecurrenceBiweekly

	// Searching from Jan 10 must land on Jan 15 (14 days after the anchor),
	// not Jan 8 or Jan 22.
	out := Occurrences(rule,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)

	require.NotEmpty(t, out)
	assert.Equal(t, 15, out[0].Start.Day())
}

func TestOccurrencesMonthlyOrdinalPreserved(t *testing.T) {
	// 2024-07-05 is the first Friday of July 2024.
	rule := models.RecurringRule{
		RecurrenceType: models.RecurrenceMonthly,
		StartDate:      time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		StartTime:      "09:00",
		EndTime:        "10:00",
		DayOfWeek:      intPtr(5),
	}

	out := Occurrences(rule,
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
	)

	require.Len(t, out, 3)
	assert.Equal(t, time.Date(2024, 7, 5, 9, 0, 0, 0, time.UTC), out[0].Start)
	assert.Equal(t, time.Date(2024, 8, 2, 9, 0, 0, 0, time.UTC), out[1].Start)
	assert.Equal(t, time.Date(2024, 9, 6, 9, 0, 0, 0, time.UTC), out[2].Start)
	for _, span := range out {
		assert.Equal(t, time.Friday, span.Start.Weekday())
	}
}

func TestOccurrencesMonthlySkipsMissingOrdinal(t *testing.T) {
	// 2024-03-29 is the fifth Friday of March 2024. April has only four
	// Fridays, so April must be skipped entirely; May 31 is the next fifth
	// Friday.
	rule := models.RecurringRule{
		RecurrenceType: models.RecurrenceMonthly,
		StartDate:      time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
		StartTime:      "14:00",
		EndTime:        "15:00",
		DayOfWeek:      intPtr(5),
	}

	out := Occurrences(rule,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	)

	require.Len(t, out, 2)
	assert.Equal(t, time.Date(2024, 3, 29, 14, 0, 0, 0, time.UTC), out[0].Start)
	assert.Equal(t, time.Date(2024, 5, 31, 14, 0, 0, 0, time.UTC), out[1].Start)
}

func TestOccurrencesUnknownTypeFallsBackToDaily(t *testing.T) {
	rule := weeklyMondayRule()
	rule.RecurrenceType = "fortnightly-ish"

	out := Occurrences(rule,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC),
	)

	require.Len(t, out, 5)
	for i := 1; i < len(out); i++ {
		assert.Equal(t, 24*time.Hour, out[i].Start.Sub(out[i-1].Start))
	}
}

func TestOccurrencesIterationCap(t *testing.T) {
	rule := weeklyMondayRule()
	rule.RecurrenceType = "bogus" // daily fallback

	out := Occurrences(rule,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
	)

	assert.LessOrEqual(t, len(out), maxIterations)
}

func TestOccurrencesStartBeforeRule(t *testing.T) {
	rule := weeklyMondayRule()
	out := Occurrences(rule,
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	)

	require.NotEmpty(t, out)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), out[0].Start)
}

func TestOccurrencesInvalidStartTime(t *testing.T) {
	rule := weeklyMondayRule()
	rule.StartTime = "not-a-time"

	assert.Empty(t, Occurrences(rule,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	))
}

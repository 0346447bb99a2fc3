package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

func legacyAppointment(rec models.RecurrenceType) models.Appointment {
	return models.Appointment{
		ID:         "appt-1",
		ProviderID: "prov-1",
		StartTime:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		Status:     models.AppointmentStatusConfirmed,
		Recurrence: rec,
	}
}

func TestProjectLegacyWeekly(t *testing.T) {
	out := ProjectLegacy(legacyAppointment(models.RecurrenceWeekly), 0)

	require.Len(t, out, DefaultProjectionCount)
	assert.Equal(t, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), out[0].Start)
	for i, span := range out {
		assert.Equal(t, time.Hour, span.Duration(), "occurrence %d", i)
		assert.Equal(t, time.Monday, span.Start.Weekday())
	}
}

func TestProjectLegacyNonRecurring(t *testing.T) {
	assert.Empty(t, ProjectLegacy(legacyAppointment(models.RecurrenceNone), 8))
	assert.Empty(t, ProjectLegacy(legacyAppointment(models.RecurrenceOnce), 8))
}

// Pins the documented four-week monthly approximation: legacy monthly rows
// step exactly 28 days and stay on the booked weekday, diverging from the
// exact ordinal engine on purpose.
func TestProjectLegacyMonthlyFourWeekApproximation(t *testing.T) {
	out := ProjectLegacy(legacyAppointment(models.RecurrenceMonthly), 3)

	require.Len(t, out, 3)
	assert.Equal(t, time.Date(2024, 1, 29, 10, 0, 0, 0, time.UTC), out[0].Start)
	assert.Equal(t, time.Date(2024, 2, 26, 10, 0, 0, 0, time.UTC), out[1].Start)
	assert.Equal(t, time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC), out[2].Start)
	for _, span := range out {
		assert.Equal(t, time.Monday, span.Start.Weekday())
	}
}

func TestProjectWindowBiweeklyCount(t *testing.T) {
	base := models.TimeRange{
		Start: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
	}
	out := ProjectWindow(base, models.RecurrenceBiweekly, 4)

	require.Len(t, out, 4)
	prev := base.Start
	for _, span := range out {
		assert.Equal(t, 14*24*time.Hour, span.Start.Sub(prev))
		assert.Equal(t, 90*time.Minute, span.Duration())
		prev = span.Start
	}
}

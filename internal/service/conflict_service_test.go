package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

type mockConflictAppointmentRepo struct {
	appointments []models.Appointment
	legacy       []models.Appointment
	listErr      error
	legacyErr    error
}

func (m *mockConflictAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.appointments, nil
}

func (m *mockConflictAppointmentRepo) ListLegacyRecurring(ctx context.Context, providerID string) ([]models.Appointment, error) {
	if m.legacyErr != nil {
		return nil, m.legacyErr
	}
	return m.legacy, nil
}

type mockConflictRuleRepo struct {
	rules   []models.RecurringRule
	listErr error
}

func (m *mockConflictRuleRepo) ListActiveByProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rules, nil
}

func confSvc(appts *mockConflictAppointmentRepo, rules *mockConflictRuleRepo) *ConflictService {
	return NewConflictService(appts, rules, nil, nil, nil, 8, time.Hour)
}

type mockConflictSlotRepo struct {
	reserved []models.ProviderTimeSlot
	err      error
}

func (m *mockConflictSlotRepo) ListReserved(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reserved, nil
}

func day(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC) // a Monday
}

func TestConflictCheckCleanWindow(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
	})

	assert.False(t, res.HasConflict)
	assert.Empty(t, res.Reason)
}

func TestConflictCheckOverlapReasons(t *testing.T) {
	cases := []struct {
		name   string
		appt   models.Appointment
		reason dto.ConflictReason
	}{
		{
			name: "external booking",
			appt: models.Appointment{
				ID: "ext-1", StartTime: day(10, 30), EndTime: day(11, 30),
				Status: models.AppointmentStatusConfirmed, ExternalBooking: true,
			},
			reason: dto.ConflictReasonExternalBooking,
		},
		{
			name: "internal booking",
			appt: models.Appointment{
				ID: "int-1", StartTime: day(9, 30), EndTime: day(10, 30),
				Status: models.AppointmentStatusPending,
			},
			reason: dto.ConflictReasonInternalBooking,
		},
		{
			name: "recurring booking",
			appt: models.Appointment{
				ID: "rec-1", StartTime: day(10, 0), EndTime: day(11, 0),
				Status: models.AppointmentStatusConfirmed, Recurrence: models.RecurrenceWeekly,
			},
			reason: dto.ConflictReasonRecurringBooking,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := confSvc(&mockConflictAppointmentRepo{appointments: []models.Appointment{tc.appt}}, &mockConflictRuleRepo{})

			res := svc.Check(context.Background(), dto.ConflictCheckRequest{
				ProviderID: "prov-1",
				Start:      day(10, 0),
				End:        day(11, 0),
			})

			require.True(t, res.HasConflict)
			assert.Equal(t, tc.reason, res.Reason)
			assert.Equal(t, tc.appt.StartTime, res.Conflicting.Start)
		})
	}
}

func TestConflictCheckTouchingWindowsDoNotConflict(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{appointments: []models.Appointment{{
		ID: "a-1", StartTime: day(9, 0), EndTime: day(10, 0),
		Status: models.AppointmentStatusConfirmed,
	}}}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
	})

	assert.False(t, res.HasConflict)
}

func TestConflictCheckAgainstActiveRule(t *testing.T) {
	dow := 1 // Monday
	svc := confSvc(&mockConflictAppointmentRepo{}, &mockConflictRuleRepo{rules: []models.RecurringRule{{
		ID:             "rule-1",
		ProviderID:     "prov-1",
		RecurrenceType: models.RecurrenceWeekly,
		StartDate:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		EndTime:        "11:00",
		DayOfWeek:      &dow,
		IsActive:       true,
	}}})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 30),
		End:        day(11, 30),
	})

	require.True(t, res.HasConflict)
	assert.Equal(t, dto.ConflictReasonRecurringBooking, res.Reason)
	assert.Contains(t, res.Details, "rule-1")
}

func TestConflictCheckRecurringCandidateProjections(t *testing.T) {
	// Busy window two weeks out: the first weekly occurrence is free but a
	// later projection of the candidate lands on it.
	busyStart := day(10, 0).AddDate(0, 0, 14)
	svc := confSvc(&mockConflictAppointmentRepo{appointments: []models.Appointment{{
		ID: "later-1", StartTime: busyStart, EndTime: busyStart.Add(time.Hour),
		Status: models.AppointmentStatusConfirmed,
	}}}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
		Recurrence: models.RecurrenceWeekly,
	})

	require.True(t, res.HasConflict)
	assert.Equal(t, busyStart, res.Conflicting.Start)

	// The same candidate without recurrence never reaches that window.
	res = svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
	})
	assert.False(t, res.HasConflict)
}

func TestConflictCheckAgainstLegacyProjection(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{legacy: []models.Appointment{{
		ID:         "legacy-1",
		StartTime:  day(10, 0).AddDate(0, 0, -7),
		EndTime:    day(11, 0).AddDate(0, 0, -7),
		Status:     models.AppointmentStatusConfirmed,
		Recurrence: models.RecurrenceWeekly,
	}}}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
	})

	require.True(t, res.HasConflict)
	assert.Equal(t, dto.ConflictReasonRecurringBooking, res.Reason)
	assert.Contains(t, res.Details, "legacy-1")
}

func TestConflictCheckBlockedSlot(t *testing.T) {
	start := day(10, 0)
	end := day(11, 0)
	slots := &mockConflictSlotRepo{reserved: []models.ProviderTimeSlot{{
		ID: "slot-1", ProviderID: "prov-1",
		SlotDatetimeStart: &start, SlotDatetimeEnd: &end,
		SlotType: models.SlotTypeReserved,
	}}}
	svc := NewConflictService(&mockConflictAppointmentRepo{}, &mockConflictRuleRepo{}, slots, nil, nil, 8, time.Hour)

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 30),
		End:        day(11, 30),
	})

	require.True(t, res.HasConflict)
	assert.Equal(t, dto.ConflictReasonBlockedSlot, res.Reason)
	assert.Contains(t, res.Details, "slot-1")
}

func TestConflictCheckReservedSlotUsesConfiguredSize(t *testing.T) {
	// date-shape row: no datetime columns, the window length comes from the
	// configured slot size
	slots := &mockConflictSlotRepo{reserved: []models.ProviderTimeSlot{{
		ID: "slot-1", ProviderID: "prov-1",
		SlotDate: day(0, 0), StartTime: "10:00",
		SlotType: models.SlotTypeReserved,
	}}}
	svc := NewConflictService(&mockConflictAppointmentRepo{}, &mockConflictRuleRepo{}, slots, nil, nil, 8, 30*time.Minute)

	// a 30-minute reserved slot ends at 10:30, so 10:30 onward is free
	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 30),
		End:        day(11, 0),
	})
	assert.False(t, res.HasConflict)

	res = svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 15),
		End:        day(10, 45),
	})
	require.True(t, res.HasConflict)
	assert.Equal(t, dto.ConflictReasonBlockedSlot, res.Reason)
}

func TestConflictCheckExcludesOwnAppointment(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{appointments: []models.Appointment{{
		ID: "self-1", StartTime: day(10, 0), EndTime: day(11, 0),
		Status: models.AppointmentStatusConfirmed,
	}}}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
		ExcludeID:  "self-1",
	})

	assert.False(t, res.HasConflict)
}

func TestConflictCheckFailsOpenOnReadError(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{listErr: errors.New("db down")}, &mockConflictRuleRepo{})

	res := svc.Check(context.Background(), dto.ConflictCheckRequest{
		ProviderID: "prov-1",
		Start:      day(10, 0),
		End:        day(11, 0),
	})

	assert.False(t, res.HasConflict)
}

func TestBusySpansPropagatesErrors(t *testing.T) {
	svc := confSvc(&mockConflictAppointmentRepo{}, &mockConflictRuleRepo{listErr: errors.New("db down")})

	_, err := svc.BusySpans(context.Background(), "prov-1", day(0, 0), day(0, 0).AddDate(0, 0, 7))
	require.Error(t, err)
}

func TestBusySpansCollectsAllSources(t *testing.T) {
	dow := 1
	appts := &mockConflictAppointmentRepo{
		appointments: []models.Appointment{{
			ID: "a-1", StartTime: day(9, 0), EndTime: day(10, 0),
			Status: models.AppointmentStatusConfirmed,
		}},
		legacy: []models.Appointment{{
			ID:         "legacy-1",
			StartTime:  day(14, 0).AddDate(0, 0, -7),
			EndTime:    day(15, 0).AddDate(0, 0, -7),
			Status:     models.AppointmentStatusConfirmed,
			Recurrence: models.RecurrenceWeekly,
		}},
	}
	rules := &mockConflictRuleRepo{rules: []models.RecurringRule{{
		ID:             "rule-1",
		ProviderID:     "prov-1",
		RecurrenceType: models.RecurrenceWeekly,
		StartDate:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		StartTime:      "16:00",
		EndTime:        "17:00",
		DayOfWeek:      &dow,
		IsActive:       true,
	}}}
	svc := confSvc(appts, rules)

	spans, err := svc.BusySpans(context.Background(), "prov-1", day(0, 0), day(0, 0).AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, day(9, 0), spans[0].Start)
}

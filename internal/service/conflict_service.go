package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	"github.com/GAMA-00/gato-app-sub001/internal/recurrence"
)

type conflictAppointmentReader interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	ListLegacyRecurring(ctx context.Context, providerID string) ([]models.Appointment, error)
}

type conflictRuleReader interface {
	ListActiveByProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error)
}

type conflictSlotReader interface {
	ListReserved(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeSlot, error)
}

// ConflictService is the advisory conflict detector. It answers fast on the
// read path and fails open on fetch errors; the database overlap constraint
// remains the authoritative gate at commit time.
type ConflictService struct {
	appointments    conflictAppointmentReader
	rules           conflictRuleReader
	slots           conflictSlotReader
	metrics         *MetricsService
	logger          *zap.Logger
	projectionWeeks int
	slotSize        time.Duration
}

// NewConflictService constructs the detector. slots may be nil when reserved
// provider time is not tracked. slotSize sizes date-shape reserved slots and
// must match the generator's configured slot size.
func NewConflictService(appointments conflictAppointmentReader, rules conflictRuleReader, slots conflictSlotReader, metrics *MetricsService, logger *zap.Logger, projectionWeeks int, slotSize time.Duration) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if projectionWeeks <= 0 {
		projectionWeeks = recurrence.DefaultProjectionCount
	}
	if slotSize <= 0 {
		slotSize = time.Hour
	}
	return &ConflictService{
		appointments:    appointments,
		rules:           rules,
		slots:           slots,
		metrics:         metrics,
		logger:          logger,
		projectionWeeks: projectionWeeks,
		slotSize:        slotSize,
	}
}

type busySpan struct {
	window models.TimeRange
	reason dto.ConflictReason
	detail string
}

// Check tests a candidate window against everything occupying the provider's
// time. For a recurring candidate, each of its own projected occurrences must
// be free as well, even when the first one is.
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) dto.ConflictResult {
	candidate := models.TimeRange{Start: req.Start, End: req.End}
	windows := []models.TimeRange{candidate}
	if req.Recurrence.IsRecurring() {
		windows = append(windows, recurrence.ProjectWindow(candidate, req.Recurrence, s.projectionWeeks)...)
	}

	horizon := req.Start.AddDate(0, 0, s.projectionWeeks*7+7)
	busy, err := s.loadBusy(ctx, req.ProviderID, req.Start, horizon, req.ExcludeID)
	if err != nil {
		// Fail open: a degraded advisory check must not block the UI. The
		// insert path still hits the store-level constraint.
		s.logger.Error("conflict check degraded, failing open", zap.String("provider_id", req.ProviderID), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordConflictFailOpen()
		}
		return dto.ConflictResult{}
	}

	for _, window := range windows {
		for _, b := range busy {
			if window.Overlaps(b.window) {
				if s.metrics != nil {
					s.metrics.RecordBookingConflict(string(b.reason))
				}
				return dto.ConflictResult{
					HasConflict: true,
					Reason:      b.reason,
					Details:     b.detail,
					Conflicting: b.window,
				}
			}
		}
	}

	return dto.ConflictResult{}
}

// BusySpans exposes the provider's occupied windows for the slot pipeline.
// Unlike Check, read errors propagate: generation is a plain read path.
func (s *ConflictService) BusySpans(ctx context.Context, providerID string, from, to time.Time) ([]models.TimeRange, error) {
	busy, err := s.loadBusy(ctx, providerID, from, to, "")
	if err != nil {
		return nil, err
	}
	spans := make([]models.TimeRange, len(busy))
	for i, b := range busy {
		spans[i] = b.window
	}
	return spans, nil
}

func (s *ConflictService) loadBusy(ctx context.Context, providerID string, from, to time.Time, excludeID string) ([]busySpan, error) {
	appointments, err := s.appointments.List(ctx, models.AppointmentFilter{
		ProviderID: providerID,
		Statuses:   models.BlockingStatuses(),
		// a long appointment starting earlier can still reach into the window
		From: from.AddDate(0, 0, -1),
		To:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	var busy []busySpan
	for _, appt := range appointments {
		if excludeID != "" && appt.ID == excludeID {
			continue
		}
		busy = append(busy, busySpan{
			window: appt.Range(),
			reason: categorize(appt),
			detail: fmt.Sprintf("appointment %s", appt.ID),
		})
	}

	rules, err := s.rules.ListActiveByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load recurring rules: %w", err)
	}
	for _, rule := range rules {
		// same one-day back-off as above: an occurrence already underway at
		// the window start still occupies the provider
		for _, span := range recurrence.Occurrences(rule, from.AddDate(0, 0, -1), to) {
			busy = append(busy, busySpan{
				window: span,
				reason: dto.ConflictReasonRecurringBooking,
				detail: fmt.Sprintf("recurring rule %s", rule.ID),
			})
		}
	}

	if s.slots != nil {
		reserved, err := s.slots.ListReserved(ctx, providerID, from.AddDate(0, 0, -1), to)
		if err != nil {
			return nil, fmt.Errorf("load reserved slots: %w", err)
		}
		for _, slot := range reserved {
			window, err := slot.Normalize(s.slotSize)
			if err != nil {
				continue
			}
			busy = append(busy, busySpan{
				window: window,
				reason: dto.ConflictReasonBlockedSlot,
				detail: fmt.Sprintf("reserved slot %s", slot.ID),
			})
		}
	}

	legacy, err := s.appointments.ListLegacyRecurring(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load legacy recurring appointments: %w", err)
	}
	for _, appt := range legacy {
		if excludeID != "" && appt.ID == excludeID {
			continue
		}
		for _, span := range recurrence.ProjectLegacy(appt, s.projectionWeeks) {
			if span.Start.After(to) {
				break
			}
			busy = append(busy, busySpan{
				window: span,
				reason: dto.ConflictReasonRecurringBooking,
				detail: fmt.Sprintf("recurring appointment %s", appt.ID),
			})
		}
	}

	return busy, nil
}

func categorize(appt models.Appointment) dto.ConflictReason {
	switch {
	case appt.ExternalBooking:
		return dto.ConflictReasonExternalBooking
	case appt.Recurrence.IsRecurring():
		return dto.ConflictReasonRecurringBooking
	default:
		return dto.ConflictReasonInternalBooking
	}
}

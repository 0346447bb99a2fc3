package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

type bookingAppointmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
}

type bookingRuleStore interface {
	ListByClient(ctx context.Context, clientID string) ([]models.RecurringRule, error)
	Create(ctx context.Context, rule *models.RecurringRule) error
	Deactivate(ctx context.Context, id string) error
}

type residenceReader interface {
	GetClientResidence(ctx context.Context, clientID string) (*models.Residence, error)
}

type conflictChecker interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) dto.ConflictResult
}

// BookingService is the write-path gate: request validation, recurrence
// legality, advisory conflict check, then the insert. The store's overlap
// constraint stays authoritative; two bookers can both pass the advisory
// check, and the loser is rejected at commit with ErrConflict.
type BookingService struct {
	appointments bookingAppointmentStore
	rules        bookingRuleStore
	residences   residenceReader
	conflicts    conflictChecker
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService constructs the booking writer.
func NewBookingService(
	appointments bookingAppointmentStore,
	rules bookingRuleStore,
	residences residenceReader,
	conflicts conflictChecker,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		appointments: appointments,
		rules:        rules,
		residences:   residences,
		conflicts:    conflicts,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

func validRecurrence(t models.RecurrenceType) bool {
	switch t {
	case "", models.RecurrenceNone, models.RecurrenceOnce,
		models.RecurrenceWeekly, models.RecurrenceBiweekly,
		models.RecurrenceTriweekly, models.RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// Create books the requested window for the claiming client. Recurring
// requests also register the declarative rule the projection engines expand.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking request")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if !validRecurrence(req.Recurrence) {
		return nil, appErrors.Clone(appErrors.ErrInvalidSchedule, "unknown recurrence type "+string(req.Recurrence))
	}

	residenceID := req.ResidenceID
	if residenceID == "" && s.residences != nil {
		if res, err := s.residences.GetClientResidence(ctx, req.ClientID); err == nil && res != nil {
			residenceID = res.ID
		}
	}

	if verdict := s.conflicts.Check(ctx, dto.ConflictCheckRequest{
		ProviderID: req.ProviderID,
		Start:      req.StartTime,
		End:        req.EndTime,
		Recurrence: req.Recurrence,
	}); verdict.HasConflict {
		s.logger.Info("booking refused by conflict check",
			zap.String("provider_id", req.ProviderID),
			zap.String("reason", string(verdict.Reason)),
		)
		return nil, appErrors.Clone(appErrors.ErrConflict, conflictMessage(verdict.Reason))
	}

	appointment := &models.Appointment{
		ClientID:        req.ClientID,
		ProviderID:      req.ProviderID,
		ListingID:       req.ListingID,
		ResidenceID:     residenceID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          models.AppointmentStatusPending,
		Recurrence:      normalizeRecurrence(req.Recurrence),
		ExternalBooking: false,
		Notes:           req.Notes,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}

	if appointment.Recurrence.IsRecurring() {
		dow := int(req.StartTime.Weekday())
		dom := req.StartTime.Day()
		rule := &models.RecurringRule{
			ClientID:       req.ClientID,
			ProviderID:     req.ProviderID,
			ListingID:      req.ListingID,
			RecurrenceType: appointment.Recurrence,
			StartDate:      req.StartTime,
			StartTime:      req.StartTime.Format("15:04"),
			EndTime:        req.EndTime.Format("15:04"),
			DayOfWeek:      &dow,
			DayOfMonth:     &dom,
			IsActive:       true,
		}
		if err := s.rules.Create(ctx, rule); err != nil {
			// the booking itself stands; the rule can be re-registered
			s.logger.Error("recurring rule creation failed", zap.String("appointment_id", appointment.ID), zap.Error(err))
		}
	}

	s.cache.InvalidateProvider(ctx, req.ProviderID)
	return appointment, nil
}

// Cancel sets the appointment cancelled and soft-disables the matching
// recurring rule. Rules are never hard-deleted; history stays queryable.
func (s *BookingService) Cancel(ctx context.Context, appointmentID, callerID string) error {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if callerID != "" && callerID != appointment.ClientID && callerID != appointment.ProviderID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the booking's client or provider may cancel it")
	}
	if appointment.Status == models.AppointmentStatusCancelled {
		return nil
	}

	if err := s.appointments.UpdateStatus(ctx, appointmentID, models.AppointmentStatusCancelled); err != nil {
		return err
	}

	if appointment.Recurrence.IsRecurring() {
		s.deactivateMatchingRule(ctx, appointment)
	}

	s.cache.InvalidateProvider(ctx, appointment.ProviderID)
	return nil
}

// deactivateMatchingRule finds the client's active rule behind a recurring
// appointment. Appointments carry no rule id, so the match is on the
// (provider, listing, cadence, wall-clock start) tuple.
func (s *BookingService) deactivateMatchingRule(ctx context.Context, appointment *models.Appointment) {
	rules, err := s.rules.ListByClient(ctx, appointment.ClientID)
	if err != nil {
		s.logger.Error("rule lookup for cancellation failed", zap.String("appointment_id", appointment.ID), zap.Error(err))
		return
	}
	wallClock := appointment.StartTime.Format("15:04")
	for _, rule := range rules {
		if !rule.IsActive ||
			rule.ProviderID != appointment.ProviderID ||
			rule.ListingID != appointment.ListingID ||
			rule.RecurrenceType != appointment.Recurrence ||
			rule.StartTime != wallClock {
			continue
		}
		if err := s.rules.Deactivate(ctx, rule.ID); err != nil {
			s.logger.Error("rule deactivation failed", zap.String("rule_id", rule.ID), zap.Error(err))
		}
		return
	}
}

func normalizeRecurrence(t models.RecurrenceType) models.RecurrenceType {
	if t == "" {
		return models.RecurrenceNone
	}
	return t
}

func conflictMessage(reason dto.ConflictReason) string {
	switch reason {
	case dto.ConflictReasonExternalBooking:
		return "the provider already has an external booking at this time"
	case dto.ConflictReasonRecurringBooking:
		return "a recurring booking occupies this time"
	case dto.ConflictReasonBlockedSlot:
		return "the provider has blocked this time"
	default:
		return "the provider already has a booking at this time"
	}
}

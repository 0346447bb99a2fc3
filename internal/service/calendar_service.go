package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

type calendarAppointmentReader interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}

type calendarInstanceReader interface {
	ListForProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.RecurringInstance, error)
}

// CalendarService assembles the reconciled provider calendar: committed
// appointments, materialized recurring instances and virtual projections of
// rules nothing has materialized yet.
type CalendarService struct {
	appointments calendarAppointmentReader
	instances    calendarInstanceReader
	rules        conflictRuleReader
	reconciler   *ReconcilerService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewCalendarService constructs the calendar reader.
func NewCalendarService(
	appointments calendarAppointmentReader,
	instances calendarInstanceReader,
	rules conflictRuleReader,
	reconciler *ReconcilerService,
	validate *validator.Validate,
	logger *zap.Logger,
) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reconciler == nil {
		reconciler = NewReconcilerService(logger)
	}
	return &CalendarService{
		appointments: appointments,
		instances:    instances,
		rules:        rules,
		reconciler:   reconciler,
		validator:    validate,
		logger:       logger,
	}
}

// Occurrences returns the deduplicated calendar for the requested range,
// ordered by start time. The three source reads fan out concurrently.
func (s *CalendarService) Occurrences(ctx context.Context, req dto.CalendarRequest) ([]models.Occurrence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar request")
	}

	var (
		wg           sync.WaitGroup
		appointments []models.Appointment
		instances    []models.RecurringInstance
		rules        []models.RecurringRule
		apptErr      error
		instErr      error
		ruleErr      error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		appointments, apptErr = s.appointments.List(ctx, models.AppointmentFilter{
			ProviderID: req.ProviderID,
			Statuses:   models.BlockingStatuses(),
			From:       req.From,
			To:         req.To,
		})
	}()
	go func() {
		defer wg.Done()
		instances, instErr = s.instances.ListForProvider(ctx, req.ProviderID, req.From, req.To)
	}()
	go func() {
		defer wg.Done()
		rules, ruleErr = s.rules.ListActiveByProvider(ctx, req.ProviderID)
	}()
	wg.Wait()

	for _, err := range []error{apptErr, instErr, ruleErr} {
		if err != nil {
			return nil, fmt.Errorf("load calendar sources: %w", err)
		}
	}

	virtual := s.reconciler.BuildVirtual(rules, instances, req.From, req.To)
	merged := s.reconciler.Merge(appointments, instances, virtual)

	s.logger.Debug("calendar reconciled",
		zap.String("provider_id", req.ProviderID),
		zap.Int("appointments", len(appointments)),
		zap.Int("instances", len(instances)),
		zap.Int("virtual", len(virtual)),
		zap.Int("merged", len(merged)),
	)
	return merged, nil
}

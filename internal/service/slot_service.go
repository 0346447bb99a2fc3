package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/coalesce"
	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	"github.com/GAMA-00/gato-app-sub001/pkg/config"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

type slotReader interface {
	ListForRange(ctx context.Context, filter models.SlotFilter) ([]models.ProviderTimeSlot, error)
	GetPreferences(ctx context.Context, listingID string) (*models.SlotPreferences, error)
}

type listingReader interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
}

type busySpanProvider interface {
	BusySpans(ctx context.Context, providerID string, from, to time.Time) ([]models.TimeRange, error)
}

// SlotService turns a provider's offered time slots into the bookable
// availability view: busy-overlap marking, minimum-notice filtering,
// contiguity for multi-slot services and residence-adjacency recommendation.
type SlotService struct {
	slots        slotReader
	appointments calendarAppointmentReader
	busy         busySpanProvider
	listings     listingReader
	cache        *CacheService
	coalescer    *coalesce.Group
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger

	slotSize         time.Duration
	defaultMinNotice time.Duration
	historyWeeks     int

	now func() time.Time
}

// NewSlotService constructs the availability generator.
func NewSlotService(
	slots slotReader,
	appointments calendarAppointmentReader,
	busy busySpanProvider,
	listings listingReader,
	cache *CacheService,
	coalescer *coalesce.Group,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.BookingConfig,
) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	slotSize := time.Duration(cfg.SlotSizeMinutes) * time.Minute
	if slotSize <= 0 {
		slotSize = time.Hour
	}
	historyWeeks := cfg.HistoryWeeks
	if historyWeeks <= 0 {
		historyWeeks = 4
	}
	return &SlotService{
		slots:            slots,
		appointments:     appointments,
		busy:             busy,
		listings:         listings,
		cache:            cache,
		coalescer:        coalescer,
		metrics:          metrics,
		validator:        validate,
		logger:           logger,
		slotSize:         slotSize,
		defaultMinNotice: time.Duration(cfg.DefaultMinNoticeHours) * time.Hour,
		historyWeeks:     historyWeeks,
		now:              time.Now,
	}
}

// GenerateSlots computes the ordered availability view for one provider
// listing and week. Identical requests landing inside the coalescing window
// share a single computation; a newer request for the same signature cancels
// the stale in-flight one.
func (s *SlotService) GenerateSlots(ctx context.Context, req dto.AvailabilityRequest) ([]dto.Slot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability request")
	}

	started := s.now()
	if s.coalescer == nil {
		slots, err := s.generate(ctx, req)
		s.observe(started, false)
		return slots, err
	}

	result, shared, err := s.coalescer.Do(ctx, req.Signature(), func(ctx context.Context) (interface{}, error) {
		return s.generate(ctx, req)
	})
	s.observe(started, shared)
	if err != nil {
		return nil, err
	}
	slots, _ := result.([]dto.Slot)
	return slots, nil
}

func (s *SlotService) observe(started time.Time, coalesced bool) {
	if s.metrics != nil {
		s.metrics.ObserveSlotGeneration(s.now().Sub(started), coalesced)
	}
}

func (s *SlotService) generate(ctx context.Context, req dto.AvailabilityRequest) ([]dto.Slot, error) {
	cacheKey := fmt.Sprintf("slots:%s:%s", req.ProviderID, req.Signature())
	var cached []dto.Slot
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	now := s.now()
	weekStart := dateOnly(now).AddDate(0, 0, 7*req.WeekIndex)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var (
		wg        sync.WaitGroup
		rawSlots  []models.ProviderTimeSlot
		busySpans []models.TimeRange
		prefs     *models.SlotPreferences
		listing   *models.Listing
		adjacency []models.Appointment

		slotErr, busyErr, prefErr, adjErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		rawSlots, slotErr = s.slots.ListForRange(ctx, models.SlotFilter{
			ProviderID: req.ProviderID,
			ListingID:  req.ListingID,
			From:       weekStart,
			To:         weekEnd,
		})
	}()
	go func() {
		defer wg.Done()
		busySpans, busyErr = s.busy.BusySpans(ctx, req.ProviderID, weekStart, weekEnd)
	}()
	go func() {
		defer wg.Done()
		prefs, prefErr = s.slots.GetPreferences(ctx, req.ListingID)
		if errors.Is(prefErr, sql.ErrNoRows) {
			// unconfigured listing falls back to the engine default
			prefs, prefErr = nil, nil
		}
	}()
	go func() {
		defer wg.Done()
		// listing metadata is labelling only: a failed lookup degrades to a
		// placeholder instead of failing the computation
		l, err := s.listings.GetByID(ctx, req.ListingID)
		if err != nil || l == nil {
			s.logger.Warn("listing lookup failed, using placeholder", zap.String("listing_id", req.ListingID), zap.Error(err))
			placeholder := models.PlaceholderListing(req.ListingID, int(s.slotSize.Minutes()))
			l = &placeholder
		}
		listing = l
	}()
	if req.ResidenceID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adjacency, adjErr = s.appointments.List(ctx, models.AppointmentFilter{
				ProviderID:  req.ProviderID,
				ResidenceID: req.ResidenceID,
				Statuses: []models.AppointmentStatus{
					models.AppointmentStatusConfirmed,
					models.AppointmentStatusPending,
					models.AppointmentStatusCompleted,
				},
				From: weekStart.AddDate(0, 0, -7*s.historyWeeks),
				To:   weekEnd,
			})
		}()
	}
	wg.Wait()

	for _, err := range []error{slotErr, busyErr, prefErr, adjErr} {
		if err != nil {
			return nil, fmt.Errorf("load availability sources: %w", err)
		}
	}

	minNotice := s.defaultMinNotice
	if prefs != nil && prefs.MinNoticeHours > 0 {
		minNotice = time.Duration(prefs.MinNoticeHours) * time.Hour
	}
	duration := time.Duration(req.ServiceDurationMinutes) * time.Minute
	if duration <= 0 {
		duration = time.Duration(listing.DurationMinutes) * time.Minute
	}
	if duration <= 0 {
		duration = s.slotSize
	}

	slots := s.buildSlots(rawSlots, busySpans, now.Add(minNotice))
	s.applyContiguity(slots, duration)
	s.applyRecommendations(slots, adjacency)

	s.cache.Set(ctx, cacheKey, slots, 0)
	return slots, nil
}

// buildSlots normalizes the persisted rows, drops manually disabled slots
// (reserved ones still render), applies the minimum-notice cutoff and marks
// busy overlaps. Output is ordered by start time.
func (s *SlotService) buildSlots(raw []models.ProviderTimeSlot, busy []models.TimeRange, earliest time.Time) []dto.Slot {
	slots := make([]dto.Slot, 0, len(raw))
	for _, row := range raw {
		if !row.IsAvailable && row.SlotType != models.SlotTypeReserved {
			continue
		}
		window, err := row.Normalize(s.slotSize)
		if err != nil {
			s.logger.Warn("skipping malformed slot", zap.String("slot_id", row.ID), zap.Error(err))
			continue
		}
		if window.Start.Before(earliest) {
			continue
		}

		slot := dto.NewSlot(window, row.SlotType)
		slot.IsAvailable = row.SlotType != models.SlotTypeReserved
		for _, b := range busy {
			if window.Overlaps(b) {
				slot.IsAvailable = false
				break
			}
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

// applyContiguity clears availability for slots that cannot host the full
// service duration: a run of ceil(duration/slotSize) same-day slots, each
// available and starting exactly one slot size after the previous.
func (s *SlotService) applyContiguity(slots []dto.Slot, duration time.Duration) {
	needed := int((duration + s.slotSize - 1) / s.slotSize)
	if needed <= 1 {
		return
	}

	available := make([]bool, len(slots))
	for i, slot := range slots {
		available[i] = slot.IsAvailable
	}

	for i := range slots {
		if !available[i] {
			continue
		}
		ok := true
		prev := i
		for step := 1; step < needed; step++ {
			next := prev + 1
			if next >= len(slots) ||
				slots[next].Date != slots[i].Date ||
				!available[next] ||
				!slots[next].Start.Equal(slots[prev].Start.Add(s.slotSize)) {
				ok = false
				break
			}
			prev = next
		}
		if !ok {
			slots[i].IsAvailable = false
		}
	}
}

// applyRecommendations flags available slots that sit back-to-back with an
// existing appointment at the requester's residence.
func (s *SlotService) applyRecommendations(slots []dto.Slot, adjacency []models.Appointment) {
	if len(adjacency) == 0 {
		return
	}
	for i, slot := range slots {
		if !slot.IsAvailable {
			continue
		}
		for _, appt := range adjacency {
			if slot.Start.Equal(appt.EndTime) || slot.End.Equal(appt.StartTime) {
				slots[i].IsRecommended = true
				break
			}
		}
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

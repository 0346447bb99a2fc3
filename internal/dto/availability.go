package dto

import (
	"fmt"
	"time"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// AvailabilityRequest asks for the bookable slots of one provider listing in
// one week. The struct is immutable once built; its Signature keys request
// coalescing.
type AvailabilityRequest struct {
	ProviderID             string `json:"provider_id" validate:"required"`
	ListingID              string `json:"listing_id" validate:"required"`
	ServiceDurationMinutes int    `json:"service_duration_minutes" validate:"omitempty,min=1"`
	WeekIndex              int    `json:"week_index" validate:"min=0"`
	ResidenceID            string `json:"residencia_id,omitempty"`
}

// Signature is the coalescing key: identical signatures within the dedup
// window share one computation.
func (r AvailabilityRequest) Signature() string {
	return fmt.Sprintf("%s|%s|%d|%d|%s",
		r.ProviderID, r.ListingID, r.ServiceDurationMinutes, r.WeekIndex, r.ResidenceID)
}

// Slot is one bookable unit of provider time as presented to callers.
type Slot struct {
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	SlotType      models.SlotType `json:"slot_type"`
	IsAvailable   bool            `json:"is_available"`
	IsRecommended bool            `json:"is_recommended"`
}

// NewSlot builds a Slot view from a canonical range.
func NewSlot(r models.TimeRange, slotType models.SlotType) Slot {
	return Slot{
		Date:     r.Start.Format("2006-01-02"),
		Time:     r.Start.Format("15:04"),
		Start:    r.Start,
		End:      r.End,
		SlotType: slotType,
	}
}

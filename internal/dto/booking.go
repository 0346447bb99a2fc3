package dto

import (
	"time"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// ConflictReason categorizes why a candidate window was refused, so the UI
// can present an actionable message instead of a generic failure.
type ConflictReason string

const (
	ConflictReasonNone             ConflictReason = ""
	ConflictReasonExternalBooking  ConflictReason = "external_booking"
	ConflictReasonInternalBooking  ConflictReason = "internal_booking"
	ConflictReasonRecurringBooking ConflictReason = "recurring_booking"
	ConflictReasonBlockedSlot      ConflictReason = "blocked_slot"
)

// ConflictResult is the advisory verdict on a candidate window. It is a
// UX-layer answer; the database overlap constraint remains the authoritative
// gate at commit time.
type ConflictResult struct {
	HasConflict bool             `json:"has_conflict"`
	Reason      ConflictReason   `json:"reason,omitempty"`
	Details     string           `json:"details,omitempty"`
	Conflicting models.TimeRange `json:"conflicting,omitempty"`
}

// ConflictCheckRequest describes the candidate window to test.
type ConflictCheckRequest struct {
	ProviderID string                `json:"provider_id" validate:"required"`
	Start      time.Time             `json:"start" validate:"required"`
	End        time.Time             `json:"end" validate:"required"`
	Recurrence models.RecurrenceType `json:"recurrence,omitempty"`
	ExcludeID  string                `json:"exclude_id,omitempty"`
}

// CreateBookingRequest is the write-path payload. ClientID and ResidenceID
// come from the caller's claims, never from the body.
type CreateBookingRequest struct {
	ClientID    string                `json:"-"`
	ResidenceID string                `json:"-"`
	ProviderID  string                `json:"provider_id" validate:"required"`
	ListingID   string                `json:"listing_id" validate:"required"`
	StartTime   time.Time             `json:"start_time" validate:"required"`
	EndTime     time.Time             `json:"end_time" validate:"required"`
	Recurrence  models.RecurrenceType `json:"recurrence,omitempty"`
	Notes       string                `json:"notes,omitempty"`
}

package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SlotType distinguishes ordinary offered slots from special ones.
type SlotType string

const (
	SlotTypeRegular SlotType = "regular"
	// SlotTypeReserved marks provider-held time that must still render in the
	// availability view (unavailable) so callers can see why it is taken.
	SlotTypeReserved SlotType = "reserved"
)

// ProviderTimeSlot is the provider's offer of a bookable unit of time.
// Two historical storage shapes coexist: explicit datetime columns and
// separate date+time columns. Normalize resolves either into a TimeRange.
type ProviderTimeSlot struct {
	ID                string     `db:"id" json:"id"`
	ProviderID        string     `db:"provider_id" json:"provider_id"`
	ListingID         string     `db:"listing_id" json:"listing_id"`
	SlotDate          time.Time  `db:"slot_date" json:"slot_date"`
	StartTime         string     `db:"start_time" json:"start_time"`
	SlotDatetimeStart *time.Time `db:"slot_datetime_start" json:"slot_datetime_start,omitempty"`
	SlotDatetimeEnd   *time.Time `db:"slot_datetime_end" json:"slot_datetime_end,omitempty"`
	IsAvailable       bool       `db:"is_available" json:"is_available"`
	SlotType          SlotType   `db:"slot_type" json:"slot_type"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// Normalize resolves the slot into a canonical TimeRange. Datetime columns
// take priority; otherwise the range is composed from slot_date + start_time
// with the configured slot size.
func (s ProviderTimeSlot) Normalize(slotSize time.Duration) (TimeRange, error) {
	if s.SlotDatetimeStart != nil && s.SlotDatetimeEnd != nil {
		return TimeRange{Start: *s.SlotDatetimeStart, End: *s.SlotDatetimeEnd}, nil
	}

	clock, err := ParseWallClock(s.StartTime)
	if err != nil {
		return TimeRange{}, fmt.Errorf("slot %s: %w", s.ID, err)
	}
	start := time.Date(s.SlotDate.Year(), s.SlotDate.Month(), s.SlotDate.Day(),
		clock.Hour, clock.Minute, 0, 0, s.SlotDate.Location())
	return TimeRange{Start: start, End: start.Add(slotSize)}, nil
}

// WallClock is a local HH:MM time of day.
type WallClock struct {
	Hour   int
	Minute int
}

// ParseWallClock parses "HH:MM" (seconds tolerated and ignored).
func ParseWallClock(raw string) (WallClock, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(raw, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
			return WallClock{}, fmt.Errorf("invalid wall-clock time %q", raw)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return WallClock{}, fmt.Errorf("invalid wall-clock time %q", raw)
	}
	return WallClock{Hour: h, Minute: m}, nil
}

// On applies the wall-clock time to a calendar date.
func (w WallClock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), w.Hour, w.Minute, 0, 0, date.Location())
}

// SlotPreferences is the per-listing availability configuration.
type SlotPreferences struct {
	ListingID      string         `db:"listing_id" json:"listing_id"`
	MinNoticeHours int            `db:"min_notice_hours" json:"min_notice_hours"`
	Settings       types.JSONText `db:"settings" json:"settings,omitempty"`
}

// SlotFilter scopes persisted slot reads.
type SlotFilter struct {
	ProviderID string
	ListingID  string
	From       time.Time
	To         time.Time
}

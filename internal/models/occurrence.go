package models

import (
	"fmt"
	"time"
)

// OccurrenceSource tags where a calendar occurrence came from. The numeric
// order is the merge priority: lower wins on a key collision.
type OccurrenceSource int

const (
	SourceRegular OccurrenceSource = iota
	SourcePersisted
	SourceVirtual
)

// String returns the wire label for the source.
func (s OccurrenceSource) String() string {
	switch s {
	case SourceRegular:
		return "regular"
	case SourcePersisted:
		return "instance"
	case SourceVirtual:
		return "virtual"
	default:
		return "unknown"
	}
}

// MarshalText serialises the source label.
func (s OccurrenceSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Occurrence is one dated realization on a provider calendar, regardless of
// whether it originated as an ad-hoc appointment, a persisted recurring
// instance or a virtually projected one. Virtual occurrences carry no id
// stability guarantee beyond the current request.
type Occurrence struct {
	ID         string           `json:"id"`
	ProviderID string           `json:"provider_id"`
	ClientID   string           `json:"client_id"`
	ListingID  string           `json:"listing_id"`
	RuleID     string           `json:"rule_id,omitempty"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	Status     string           `json:"status"`
	Source     OccurrenceSource `json:"source"`
}

// Key is the composite identity (provider, start, end) under which at most
// one logical appointment may exist after a merge.
func (o Occurrence) Key() string {
	return fmt.Sprintf("%s|%s|%s",
		o.ProviderID,
		o.StartTime.UTC().Format(time.RFC3339),
		o.EndTime.UTC().Format(time.RFC3339),
	)
}

// Range returns the occurrence window as a canonical TimeRange.
func (o Occurrence) Range() TimeRange {
	return TimeRange{Start: o.StartTime, End: o.EndTime}
}

package models

import "time"

// RecurringRule is the declarative repeat pattern owned by a provider+client
// pair. Cancellation soft-disables the rule; history is never hard-deleted.
type RecurringRule struct {
	ID             string         `db:"id" json:"id"`
	ClientID       string         `db:"client_id" json:"client_id"`
	ProviderID     string         `db:"provider_id" json:"provider_id"`
	ListingID      string         `db:"listing_id" json:"listing_id"`
	RecurrenceType RecurrenceType `db:"recurrence_type" json:"recurrence_type"`
	StartDate      time.Time      `db:"start_date" json:"start_date"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time" json:"end_time"`
	DayOfWeek      *int           `db:"day_of_week" json:"day_of_week,omitempty"`
	DayOfMonth     *int           `db:"day_of_month" json:"day_of_month,omitempty"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Weekday resolves the rule's target weekday, defaulting to the anchor date's
// weekday when day_of_week is null.
func (r RecurringRule) Weekday() time.Weekday {
	if r.DayOfWeek != nil && *r.DayOfWeek >= 0 && *r.DayOfWeek <= 6 {
		return time.Weekday(*r.DayOfWeek)
	}
	return r.StartDate.Weekday()
}

// RecurringInstanceStatus enumerates materialized occurrence states.
type RecurringInstanceStatus string

const (
	RecurringInstanceStatusScheduled RecurringInstanceStatus = "scheduled"
	RecurringInstanceStatusConfirmed RecurringInstanceStatus = "confirmed"
	RecurringInstanceStatusCancelled RecurringInstanceStatus = "cancelled"
	RecurringInstanceStatusSkipped   RecurringInstanceStatus = "skipped"
)

// RecurringInstance is one materialized occurrence of a rule, written by an
// external scheduler. When absent for a range, occurrences are synthesized
// virtually on read and never persisted.
type RecurringInstance struct {
	ID              string                  `db:"id" json:"id"`
	RecurringRuleID string                  `db:"recurring_rule_id" json:"recurring_rule_id"`
	ProviderID      string                  `db:"provider_id" json:"provider_id"`
	ClientID        string                  `db:"client_id" json:"client_id"`
	ListingID       string                  `db:"listing_id" json:"listing_id"`
	StartTime       time.Time               `db:"start_time" json:"start_time"`
	EndTime         time.Time               `db:"end_time" json:"end_time"`
	Status          RecurringInstanceStatus `db:"status" json:"status"`
	Notes           string                  `db:"notes" json:"notes"`
	CreatedAt       time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time               `db:"updated_at" json:"updated_at"`
}

// Range returns the instance window as a canonical TimeRange.
func (i RecurringInstance) Range() TimeRange {
	return TimeRange{Start: i.StartTime, End: i.EndTime}
}

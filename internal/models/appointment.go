package models

import "time"

// AppointmentStatus enumerates the lifecycle of a booking.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
)

// RecurrenceType tags an appointment or rule with its repeat cadence.
type RecurrenceType string

const (
	RecurrenceNone      RecurrenceType = "none"
	RecurrenceOnce      RecurrenceType = "once"
	RecurrenceWeekly    RecurrenceType = "weekly"
	RecurrenceBiweekly  RecurrenceType = "biweekly"
	RecurrenceTriweekly RecurrenceType = "triweekly"
	RecurrenceMonthly   RecurrenceType = "monthly"
)

// IsRecurring reports whether the tag describes a repeating cadence.
func (t RecurrenceType) IsRecurring() bool {
	switch t {
	case RecurrenceWeekly, RecurrenceBiweekly, RecurrenceTriweekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// BlockingStatuses are the appointment statuses that occupy provider time.
// Cancelled and rejected bookings never block.
func BlockingStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusScheduled,
	}
}

// Appointment is a single committed booking, ad-hoc or the head of a legacy
// recurring series (pre-migration rows carry a non-"none" Recurrence tag).
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	ProviderID      string            `db:"provider_id" json:"provider_id"`
	ClientID        string            `db:"client_id" json:"client_id"`
	ListingID       string            `db:"listing_id" json:"listing_id"`
	ResidenceID     string            `db:"residencia_id" json:"residencia_id"`
	StartTime       time.Time         `db:"start_time" json:"start_time"`
	EndTime         time.Time         `db:"end_time" json:"end_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Recurrence      RecurrenceType    `db:"recurrence" json:"recurrence"`
	ExternalBooking bool              `db:"external_booking" json:"external_booking"`
	Notes           string            `db:"notes" json:"notes"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Range returns the appointment window as a canonical TimeRange.
func (a Appointment) Range() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

// AppointmentFilter describes query params for listing appointments.
type AppointmentFilter struct {
	ProviderID  string
	ClientID    string
	ResidenceID string
	Statuses    []AppointmentStatus
	From        time.Time
	To          time.Time
	Page        int
	PageSize    int
}

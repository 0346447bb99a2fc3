package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

const appointmentColumns = `id, provider_id, client_id, listing_id, residencia_id, start_time, end_time, status, recurrence, external_booking, notes, created_at, updated_at`

// AppointmentRepository persists bookings.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments matching the filter, ordered by start time.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.ProviderID != "" {
		where = append(where, fmt.Sprintf("provider_id = $%d", len(args)+1))
		args = append(args, filter.ProviderID)
	}
	if filter.ClientID != "" {
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.ResidenceID != "" {
		where = append(where, fmt.Sprintf("residencia_id = $%d", len(args)+1))
		args = append(args, filter.ResidenceID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}
	if !filter.From.IsZero() {
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)+1))
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)+1))
		args = append(args, filter.To)
	}

	query := fmt.Sprintf("SELECT %s FROM appointments WHERE %s ORDER BY start_time ASC",
		appointmentColumns, strings.Join(where, " AND "))

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// ListLegacyRecurring returns active appointments still carrying a
// pre-migration recurrence tag for the provider.
func (r *AppointmentRepository) ListLegacyRecurring(ctx context.Context, providerID string) ([]models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments
WHERE provider_id = $1 AND recurrence NOT IN ('none', 'once', '') AND status = ANY($2)
ORDER BY start_time ASC`, appointmentColumns)

	statuses := make([]string, 0, 4)
	for _, s := range models.BlockingStatuses() {
		statuses = append(statuses, string(s))
	}

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, pq.Array(statuses)); err != nil {
		return nil, fmt.Errorf("list legacy recurring appointments: %w", err)
	}
	return appointments, nil
}

// GetByID fetches a single appointment.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Create inserts an appointment. The partial unique index on
// (provider_id, start_time) for non-terminal statuses is the transactional
// backstop behind the advisory conflict check; violations surface as
// ErrConflict.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now

	query := `INSERT INTO appointments (id, provider_id, client_id, listing_id, residencia_id, start_time, end_time, status, recurrence, external_booking, notes, created_at, updated_at)
VALUES (:id, :provider_id, :client_id, :listing_id, :residencia_id, :start_time, :end_time, :status, :recurrence, :external_booking, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "the time slot was booked by someone else")
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// UpdateStatus transitions an appointment's lifecycle state.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1",
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	}
	return nil
}

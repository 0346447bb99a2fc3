package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// RecurringInstanceRepository reads materialized rule occurrences. Instances
// are written by an external scheduler, never by this service.
type RecurringInstanceRepository struct {
	db *sqlx.DB
}

// NewRecurringInstanceRepository constructs an instance repository.
func NewRecurringInstanceRepository(db *sqlx.DB) *RecurringInstanceRepository {
	return &RecurringInstanceRepository{db: db}
}

const instanceSelect = `SELECT i.id, i.recurring_rule_id, r.provider_id, r.client_id, r.listing_id, i.start_time, i.end_time, i.status, i.notes, i.created_at, i.updated_at
FROM recurring_instances i
JOIN recurring_rules r ON r.id = i.recurring_rule_id`

// ListForProvider returns live instances for the provider inside the window.
func (r *RecurringInstanceRepository) ListForProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.RecurringInstance, error) {
	query := instanceSelect + `
WHERE r.provider_id = $1 AND i.status = ANY($2) AND i.start_time >= $3 AND i.start_time <= $4
ORDER BY i.start_time ASC`

	var instances []models.RecurringInstance
	err := r.db.SelectContext(ctx, &instances, query, providerID, pq.Array(liveInstanceStatuses()), from, to)
	if err != nil {
		return nil, fmt.Errorf("list recurring instances: %w", err)
	}
	return instances, nil
}

// ListByRule returns live instances of one rule inside the window.
func (r *RecurringInstanceRepository) ListByRule(ctx context.Context, ruleID string, from, to time.Time) ([]models.RecurringInstance, error) {
	query := instanceSelect + `
WHERE i.recurring_rule_id = $1 AND i.status = ANY($2) AND i.start_time >= $3 AND i.start_time <= $4
ORDER BY i.start_time ASC`

	var instances []models.RecurringInstance
	err := r.db.SelectContext(ctx, &instances, query, ruleID, pq.Array(liveInstanceStatuses()), from, to)
	if err != nil {
		return nil, fmt.Errorf("list rule instances: %w", err)
	}
	return instances, nil
}

func liveInstanceStatuses() []string {
	return []string{
		string(models.RecurringInstanceStatusScheduled),
		string(models.RecurringInstanceStatusConfirmed),
	}
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

const ruleColumns = `id, client_id, provider_id, listing_id, recurrence_type, start_date, start_time, end_time, day_of_week, day_of_month, is_active, created_at, updated_at`

// RecurringRuleRepository persists recurrence rules.
type RecurringRuleRepository struct {
	db *sqlx.DB
}

// NewRecurringRuleRepository constructs a rule repository.
func NewRecurringRuleRepository(db *sqlx.DB) *RecurringRuleRepository {
	return &RecurringRuleRepository{db: db}
}

// ListActiveByProvider returns the provider's active rules.
func (r *RecurringRuleRepository) ListActiveByProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_rules WHERE provider_id = $1 AND is_active = TRUE ORDER BY start_date ASC", ruleColumns)
	var rules []models.RecurringRule
	if err := r.db.SelectContext(ctx, &rules, query, providerID); err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	return rules, nil
}

// ListByClient returns all rules owned by a client, active first.
func (r *RecurringRuleRepository) ListByClient(ctx context.Context, clientID string) ([]models.RecurringRule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_rules WHERE client_id = $1 ORDER BY is_active DESC, start_date ASC", ruleColumns)
	var rules []models.RecurringRule
	if err := r.db.SelectContext(ctx, &rules, query, clientID); err != nil {
		return nil, fmt.Errorf("list client rules: %w", err)
	}
	return rules, nil
}

// GetByID fetches a single rule.
func (r *RecurringRuleRepository) GetByID(ctx context.Context, id string) (*models.RecurringRule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_rules WHERE id = $1", ruleColumns)
	var rule models.RecurringRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create inserts a rule.
func (r *RecurringRuleRepository) Create(ctx context.Context, rule *models.RecurringRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	query := `INSERT INTO recurring_rules (id, client_id, provider_id, listing_id, recurrence_type, start_date, start_time, end_time, day_of_week, day_of_month, is_active, created_at, updated_at)
VALUES (:id, :client_id, :provider_id, :listing_id, :recurrence_type, :start_date, :start_time, :end_time, :day_of_week, :day_of_month, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create recurring rule: %w", err)
	}
	return nil
}

// Deactivate soft-disables a rule. Rules are never hard-deleted while
// booking history must be retained.
func (r *RecurringRuleRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE recurring_rules SET is_active = FALSE, updated_at = $2 WHERE id = $1",
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate recurring rule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "recurring rule not found")
	}
	return nil
}

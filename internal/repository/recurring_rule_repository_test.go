package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

func ruleRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "client_id", "provider_id", "listing_id", "recurrence_type",
		"start_date", "start_time", "end_time", "day_of_week", "day_of_month",
		"is_active", "created_at", "updated_at",
	}).AddRow("rule-1", "client-1", "prov-1", "listing-1", "weekly",
		now, "10:00", "11:00", 1, nil, true, now, now)
}

func TestRecurringRuleRepositoryListActiveByProvider(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecurringRuleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM recurring_rules WHERE provider_id = $1 AND is_active = TRUE")).
		WithArgs("prov-1").
		WillReturnRows(ruleRows())

	rules, err := repo.ListActiveByProvider(context.Background(), "prov-1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, models.RecurrenceWeekly, rules[0].RecurrenceType)
	require.NotNil(t, rules[0].DayOfWeek)
	assert.Equal(t, 1, *rules[0].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringRuleRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecurringRuleRepository(db)

	mock.ExpectExec("INSERT INTO recurring_rules").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rule := &models.RecurringRule{
		ClientID:       "client-1",
		ProviderID:     "prov-1",
		ListingID:      "listing-1",
		RecurrenceType: models.RecurrenceBiweekly,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		EndTime:        "11:00",
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), rule))
	assert.NotEmpty(t, rule.ID)
	assert.False(t, rule.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringRuleRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecurringRuleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recurring_rules SET is_active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("rule-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "rule-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recurring_rules SET is_active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

type ruleStore interface {
	ListActiveByProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error)
	ListByClient(ctx context.Context, clientID string) ([]models.RecurringRule, error)
	GetByID(ctx context.Context, id string) (*models.RecurringRule, error)
	Deactivate(ctx context.Context, id string) error
}

// RuleService exposes recurring rule reads and cancellation.
type RuleService struct {
	rules  ruleStore
	cache  *CacheService
	logger *zap.Logger
}

// NewRuleService constructs the rule service.
func NewRuleService(rules ruleStore, cache *CacheService, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{rules: rules, cache: cache, logger: logger}
}

// ListForProvider returns the provider's active rules.
func (s *RuleService) ListForProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error) {
	return s.rules.ListActiveByProvider(ctx, providerID)
}

// ListForClient returns every rule the client owns, active or not.
func (s *RuleService) ListForClient(ctx context.Context, clientID string) ([]models.RecurringRule, error) {
	return s.rules.ListByClient(ctx, clientID)
}

// Get returns one rule scoped to its owner: only the rule's client or
// provider may read it.
func (s *RuleService) Get(ctx context.Context, id, callerID string) (*models.RecurringRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != "" && callerID != rule.ClientID && callerID != rule.ProviderID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "rule belongs to another user")
	}
	return rule, nil
}

// Deactivate soft-disables a rule. Already materialized instances and past
// occurrences stay untouched; only future expansion stops.
func (s *RuleService) Deactivate(ctx context.Context, id, callerID string) error {
	rule, err := s.Get(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !rule.IsActive {
		return nil
	}
	if err := s.rules.Deactivate(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateProvider(ctx, rule.ProviderID)
	s.logger.Info("recurring rule deactivated", zap.String("rule_id", id))
	return nil
}

package service

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	"github.com/GAMA-00/gato-app-sub001/internal/recurrence"
)

// ReconcilerService merges ad-hoc appointments, persisted recurring
// instances and virtual projections into one deduplicated calendar view.
type ReconcilerService struct {
	logger *zap.Logger
}

// NewReconcilerService constructs the reconciler.
func NewReconcilerService(logger *zap.Logger) *ReconcilerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerService{logger: logger}
}

// wins decides a key collision between two occurrences of the same
// (provider, start, end): regular beats persisted beats virtual. This is the
// single place the priority rule lives.
func wins(a, b models.Occurrence) models.Occurrence {
	if b.Source < a.Source {
		return b
	}
	return a
}

// Merge deduplicates the three sources under the composite identity key.
// Output is ordered by start time.
func (s *ReconcilerService) Merge(regular []models.Appointment, persisted []models.RecurringInstance, virtual []models.Occurrence) []models.Occurrence {
	merged := make(map[string]models.Occurrence)

	consider := func(o models.Occurrence) {
		key := o.Key()
		if existing, ok := merged[key]; ok {
			merged[key] = wins(existing, o)
			return
		}
		merged[key] = o
	}

	for _, appt := range regular {
		consider(models.Occurrence{
			ID:         appt.ID,
			ProviderID: appt.ProviderID,
			ClientID:   appt.ClientID,
			ListingID:  appt.ListingID,
			StartTime:  appt.StartTime,
			EndTime:    appt.EndTime,
			Status:     string(appt.Status),
			Source:     models.SourceRegular,
		})
	}
	for _, inst := range persisted {
		consider(models.Occurrence{
			ID:         inst.ID,
			ProviderID: inst.ProviderID,
			ClientID:   inst.ClientID,
			ListingID:  inst.ListingID,
			RuleID:     inst.RecurringRuleID,
			StartTime:  inst.StartTime,
			EndTime:    inst.EndTime,
			Status:     string(inst.Status),
			Source:     models.SourcePersisted,
		})
	}
	for _, occ := range virtual {
		occ.Source = models.SourceVirtual
		consider(occ)
	}

	out := make([]models.Occurrence, 0, len(merged))
	for _, o := range merged {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// BuildVirtual expands rules with no materialized instance in the range into
// virtual occurrences. Once a scheduler has persisted instances for a rule,
// re-expanding it would only duplicate work, so those rules are skipped.
func (s *ReconcilerService) BuildVirtual(rules []models.RecurringRule, persisted []models.RecurringInstance, from, to time.Time) []models.Occurrence {
	materialized := make(map[string]bool, len(persisted))
	for _, inst := range persisted {
		materialized[inst.RecurringRuleID] = true
	}

	var out []models.Occurrence
	for _, rule := range rules {
		if materialized[rule.ID] {
			continue
		}
		for _, span := range recurrence.Occurrences(rule, from, to) {
			out = append(out, models.Occurrence{
				// ids of virtual occurrences are stable within one request only
				ID:         fmt.Sprintf("virtual-%s-%d", rule.ID, span.Start.Unix()),
				ProviderID: rule.ProviderID,
				ClientID:   rule.ClientID,
				ListingID:  rule.ListingID,
				RuleID:     rule.ID,
				StartTime:  span.Start,
				EndTime:    span.End,
				Status:     string(models.RecurringInstanceStatusScheduled),
				Source:     models.SourceVirtual,
			})
		}
	}
	return out
}

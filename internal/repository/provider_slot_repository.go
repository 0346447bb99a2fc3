package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// ProviderSlotRepository reads the provider's offered time slots and the
// per-listing slot preferences.
type ProviderSlotRepository struct {
	db *sqlx.DB
}

// NewProviderSlotRepository constructs a slot repository.
func NewProviderSlotRepository(db *sqlx.DB) *ProviderSlotRepository {
	return &ProviderSlotRepository{db: db}
}

// ListForRange returns slot rows whose window intersects the filter range.
// Both historical storage shapes match: rows carrying explicit datetime
// columns and older rows carrying only slot_date + start_time.
func (r *ProviderSlotRepository) ListForRange(ctx context.Context, filter models.SlotFilter) ([]models.ProviderTimeSlot, error) {
	query := `SELECT id, provider_id, listing_id, slot_date, start_time, slot_datetime_start, slot_datetime_end, is_available, slot_type, created_at
FROM provider_time_slots
WHERE provider_id = $1 AND listing_id = $2
  AND ((slot_datetime_start IS NOT NULL AND slot_datetime_start >= $3 AND slot_datetime_start <= $4)
    OR (slot_datetime_start IS NULL AND slot_date >= $3 AND slot_date <= $4))
ORDER BY slot_date ASC, start_time ASC`

	var slots []models.ProviderTimeSlot
	err := r.db.SelectContext(ctx, &slots, query, filter.ProviderID, filter.ListingID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("list provider time slots: %w", err)
	}
	return MergeSlotShapes(slots), nil
}

// ListReserved returns the provider's reserved slots in the range across all
// listings. Reserved time blocks bookings regardless of which listing the
// candidate targets.
func (r *ProviderSlotRepository) ListReserved(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeSlot, error) {
	query := `SELECT id, provider_id, listing_id, slot_date, start_time, slot_datetime_start, slot_datetime_end, is_available, slot_type, created_at
FROM provider_time_slots
WHERE provider_id = $1 AND slot_type = $2
  AND ((slot_datetime_start IS NOT NULL AND slot_datetime_start >= $3 AND slot_datetime_start <= $4)
    OR (slot_datetime_start IS NULL AND slot_date >= $3 AND slot_date <= $4))
ORDER BY slot_date ASC, start_time ASC`

	var slots []models.ProviderTimeSlot
	err := r.db.SelectContext(ctx, &slots, query, providerID, models.SlotTypeReserved, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reserved slots: %w", err)
	}
	return MergeSlotShapes(slots), nil
}

// GetPreferences returns the listing's slot configuration, or sql.ErrNoRows
// when none is configured.
func (r *ProviderSlotRepository) GetPreferences(ctx context.Context, listingID string) (*models.SlotPreferences, error) {
	const query = `SELECT listing_id, min_notice_hours, settings FROM slot_preferences WHERE listing_id = $1`
	var prefs models.SlotPreferences
	if err := r.db.GetContext(ctx, &prefs, query, listingID); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// MergeSlotShapes deduplicates rows from the two storage shapes by id, the
// datetime-bearing record taking priority over the date+time one.
func MergeSlotShapes(slots []models.ProviderTimeSlot) []models.ProviderTimeSlot {
	byID := make(map[string]int, len(slots))
	out := make([]models.ProviderTimeSlot, 0, len(slots))
	for _, slot := range slots {
		idx, seen := byID[slot.ID]
		if !seen {
			byID[slot.ID] = len(out)
			out = append(out, slot)
			continue
		}
		if slot.SlotDatetimeStart != nil && out[idx].SlotDatetimeStart == nil {
			out[idx] = slot
		}
	}
	return out
}

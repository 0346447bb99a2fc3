package recurrence

import (
	"sort"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// OverlapsAny reports whether candidate intersects any busy span.
// Half-open semantics: touching ends do not conflict.
func OverlapsAny(candidate models.TimeRange, busy []models.TimeRange) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// FirstOverlap returns the first busy span the candidate intersects.
func FirstOverlap(candidate models.TimeRange, busy []models.TimeRange) (models.TimeRange, bool) {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return b, true
		}
	}
	return models.TimeRange{}, false
}

// SortSpans orders spans ascending by start time, in place.
func SortSpans(spans []models.TimeRange) {
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start.Before(spans[j].Start) })
}

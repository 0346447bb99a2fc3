package models

import "time"

// Pagination describes page metadata returned alongside list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// TimeRange is the canonical half-open interval [Start, End) every scheduling
// computation operates on. Persisted rows in either historical storage shape
// are normalised into a TimeRange at the repository boundary.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (a.End == b.Start) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls inside the interval.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns the interval length.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsZero reports whether the range is unset.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

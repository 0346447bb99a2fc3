package models

import "time"

// Listing is the provider's published service offering.
type Listing struct {
	ID              string    `db:"id" json:"id"`
	ProviderID      string    `db:"provider_id" json:"provider_id"`
	Title           string    `db:"title" json:"title"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Price           float64   `db:"price" json:"price"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PlaceholderListing substitutes for missing listing metadata so a single
// broken lookup does not fail the whole availability computation.
func PlaceholderListing(id string, defaultDurationMinutes int) Listing {
	return Listing{
		ID:              id,
		Title:           "Servicio",
		DurationMinutes: defaultDurationMinutes,
	}
}

// Residence geographically scopes slot recommendations.
type Residence struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

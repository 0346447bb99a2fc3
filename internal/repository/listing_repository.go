package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

// ListingRepository provides read-only lookups of listing and residence
// metadata used to label slots and scope recommendations.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository constructs a listing repository.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// GetByID fetches a listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	const query = `SELECT id, provider_id, title, duration_minutes, price, created_at, updated_at FROM listings WHERE id = $1`
	var listing models.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetClientResidence resolves the residence a client belongs to.
func (r *ListingRepository) GetClientResidence(ctx context.Context, clientID string) (*models.Residence, error) {
	const query = `SELECT res.id, res.name
FROM residencias res
JOIN users u ON u.residencia_id = res.id
WHERE u.id = $1`
	var residence models.Residence
	if err := r.db.GetContext(ctx, &residence, query, clientID); err != nil {
		return nil, err
	}
	return &residence, nil
}

package repository

import (
	"context"
	"fmt"

	"playdate-buddy-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review; a second review of the same place by the same user is a duplicate
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, username, place_id, bathroom, changing_table, highchair, parking, other_notes, stars)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING timestamp
	`
	err := r.db.QueryRow(ctx, query,
		review.ID, review.Username, review.PlaceID,
		review.Amenities.Bathroom, review.Amenities.ChangingTable, review.Amenities.Highchair, review.Amenities.Parking,
		review.OtherNotes, review.Stars,
	).Scan(&review.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", classify(err))
	}
	return nil
}

// ListByPlace retrieves the reviews of a place, newest first
func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]models.Review, error) {
	query := `
		SELECT id, username, place_id, bathroom, changing_table, highchair, parking, other_notes, stars, timestamp
		FROM reviews
		WHERE place_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := r.db.Query(ctx, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		err := rows.Scan(
			&rv.ID, &rv.Username, &rv.PlaceID,
			&rv.Amenities.Bathroom, &rv.Amenities.ChangingTable, &rv.Amenities.Highchair, &rv.Amenities.Parking,
			&rv.OtherNotes, &rv.Stars, &rv.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a user's review of a place
func (r *ReviewRepository) Delete(ctx context.Context, username, placeID string) error {
	query := `DELETE FROM reviews WHERE username = $1 AND place_id = $2`
	result, err := r.db.Exec(ctx, query, username, placeID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review by %s for %s: %w", username, placeID, ErrNotFound)
	}
	return nil
}

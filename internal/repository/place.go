package repository

import (
	"context"
	"fmt"

	"playdate-buddy-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const placeColumns = `id, name, address, lat::text, lng::text, type`

// PlaceRepository handles database operations for places and saved places
type PlaceRepository struct {
	db *pgxpool.Pool
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *pgxpool.Pool) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func scanPlace(row pgx.Row) (*models.Place, error) {
	var (
		place    models.Place
		lat, lng string
	)
	if err := row.Scan(&place.ID, &place.Name, &place.Address, &lat, &lng, &place.Type); err != nil {
		return nil, err
	}
	var err error
	if place.Lat, err = models.Coordinate(lat); err != nil {
		return nil, err
	}
	if place.Lng, err = models.Coordinate(lng); err != nil {
		return nil, err
	}
	return &place, nil
}

// GetByID retrieves a place by its external id
func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`
	place, err := scanPlace(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", classify(err))
	}
	return place, nil
}

// Upsert inserts a place unless its id is already stored, then returns the stored row
func (r *PlaceRepository) Upsert(ctx context.Context, place *models.Place) (*models.Place, error) {
	query := `
		INSERT INTO places (id, name, address, lat, lng, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, place.ID, place.Name, place.Address, place.Lat, place.Lng, place.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to insert place: %w", err)
	}
	return r.GetByID(ctx, place.ID)
}

// Exists checks if a place is stored
func (r *PlaceRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM places WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check place existence: %w", err)
	}
	return exists, nil
}

// Save bookmarks a place for a user
func (r *PlaceRepository) Save(ctx context.Context, username, placeID string) error {
	query := `INSERT INTO users_places (username, place_id) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, username, placeID); err != nil {
		return fmt.Errorf("failed to save place: %w", classify(err))
	}
	return nil
}

// ListSaved retrieves the places a user has saved
func (r *PlaceRepository) ListSaved(ctx context.Context, username string) ([]models.Place, error) {
	query := `
		SELECT p.id, p.name, p.address, p.lat::text, p.lng::text, p.type
		FROM users_places AS up
		JOIN places AS p ON up.place_id = p.id
		WHERE up.username = $1
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved places: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved places: %w", err)
	}
	return places, nil
}

// Unsave removes a saved place
func (r *PlaceRepository) Unsave(ctx context.Context, username, placeID string) error {
	query := `DELETE FROM users_places WHERE username = $1 AND place_id = $2`
	result, err := r.db.Exec(ctx, query, username, placeID)
	if err != nil {
		return fmt.Errorf("failed to unsave place: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("saved place %s for %s: %w", placeID, username, ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"playdate-buddy-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DateRepository handles database operations for scheduled dates
type DateRepository struct {
	db *pgxpool.Pool
}

// NewDateRepository creates a new date repository
func NewDateRepository(db *pgxpool.Pool) *DateRepository {
	return &DateRepository{db: db}
}

// Create schedules a user at a place and time
func (r *DateRepository) Create(ctx context.Context, date *models.Date) error {
	query := `INSERT INTO dates (username, place_id, date) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, date.Username, date.PlaceID, date.When); err != nil {
		return fmt.Errorf("failed to create date: %w", classify(err))
	}
	return nil
}

// ListUpcomingByUser retrieves a user's dates from today onwards
func (r *DateRepository) ListUpcomingByUser(ctx context.Context, username string) ([]models.Date, error) {
	query := `
		SELECT d.username, d.place_id, p.name, d.date
		FROM dates AS d
		JOIN places AS p ON p.id = d.place_id
		WHERE d.username = $1 AND d.date >= CURRENT_DATE
		ORDER BY d.date
	`
	return r.list(ctx, query, username)
}

// ListUpcomingByPlace retrieves a place's dates from today onwards
func (r *DateRepository) ListUpcomingByPlace(ctx context.Context, placeID string) ([]models.Date, error) {
	query := `
		SELECT d.username, d.place_id, p.name, d.date
		FROM dates AS d
		JOIN places AS p ON p.id = d.place_id
		WHERE d.place_id = $1 AND d.date >= CURRENT_DATE
		ORDER BY d.date, d.username
	`
	return r.list(ctx, query, placeID)
}

// ListAttendees retrieves the usernames scheduled at a place and time
func (r *DateRepository) ListAttendees(ctx context.Context, placeID string, when time.Time) ([]string, error) {
	query := `SELECT username FROM dates WHERE place_id = $1 AND date = $2 ORDER BY username`
	rows, err := r.db.Query(ctx, query, placeID, when)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		usernames = append(usernames, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}
	return usernames, nil
}

// Delete cancels a user's date
func (r *DateRepository) Delete(ctx context.Context, date *models.Date) error {
	query := `DELETE FROM dates WHERE username = $1 AND place_id = $2 AND date = $3`
	result, err := r.db.Exec(ctx, query, date.Username, date.PlaceID, date.When)
	if err != nil {
		return fmt.Errorf("failed to delete date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("date for %s at %s: %w", date.Username, date.PlaceID, ErrNotFound)
	}
	return nil
}

func (r *DateRepository) list(ctx context.Context, query string, arg string) ([]models.Date, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get dates: %w", err)
	}
	defer rows.Close()

	dates := []models.Date{}
	for rows.Next() {
		var d models.Date
		if err := rows.Scan(&d.Username, &d.PlaceID, &d.PlaceName, &d.When); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dates: %w", err)
	}
	return dates, nil
}

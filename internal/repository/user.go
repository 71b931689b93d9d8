package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"playdate-buddy-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `username, password, first_name, last_name, email, city, country,
	COALESCE(lat::text, ''), COALESCE(lng::text, ''), avatar, token, push_token, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user     models.User
		lat, lng string
	)
	err := row.Scan(
		&user.Username, &user.Password, &user.FirstName, &user.LastName, &user.Email,
		&user.City, &user.Country, &lat, &lng, &user.Avatar, &user.ChatToken,
		&user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.Lat, err = models.Coordinate(lat); err != nil {
		return nil, err
	}
	if user.Lng, err = models.Coordinate(lng); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password, first_name, last_name, email, city, country, lat, lng, avatar, token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Password, user.FirstName, user.LastName, user.Email,
		user.City, user.Country, user.Lat, user.Lng, user.Avatar, user.ChatToken,
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", classify(err))
	}
	return user, nil
}

// Exists checks if a user exists
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Search lists users, narrowed to those with at least one child matching the filter
func (r *UserRepository) Search(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error) {
	query := `SELECT u.username, u.first_name, u.avatar FROM users AS u`

	var (
		conds []string
		args  []any
	)
	today := filter.Today
	if today.IsZero() {
		today = time.Now()
	}
	after, onOrBefore := filter.BornBetween(today)
	if onOrBefore != nil {
		args = append(args, *onOrBefore)
		conds = append(conds, fmt.Sprintf("c.dob <= $%d", len(args)))
	}
	if after != nil {
		args = append(args, *after)
		conds = append(conds, fmt.Sprintf("c.dob > $%d", len(args)))
	}
	if filter.Gender != "" {
		args = append(args, filter.Gender)
		conds = append(conds, fmt.Sprintf("c.gender = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE EXISTS (SELECT 1 FROM children AS c WHERE c.parent_username = u.username AND ` +
			strings.Join(conds, " AND ") + `)`
	}
	query += ` ORDER BY u.username`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields of upd and returns the updated user
func (r *UserRepository) Update(ctx context.Context, username string, upd models.UserUpdate) (*models.User, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Password != nil {
		set("password", *upd.Password)
	}
	if upd.FirstName != nil {
		set("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		set("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.City != nil {
		set("city", *upd.City)
	}
	if upd.Country != nil {
		set("country", *upd.Country)
	}
	if upd.Lat != nil {
		set("lat", *upd.Lat)
	}
	if upd.Lng != nil {
		set("lng", *upd.Lng)
	}
	if upd.Avatar != nil {
		set("avatar", *upd.Avatar)
	}
	if len(sets) == 0 {
		return r.GetByUsername(ctx, username)
	}

	args = append(args, username)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE username = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", classify(err))
	}
	return user, nil
}

// Delete deletes a user; dependent rows cascade
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`
	result, err := r.db.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, username string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE username = $2`
	result, err := r.db.Exec(ctx, query, pushToken, username)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}

// GetPushTokens returns the push tokens of the given users that have one
func (r *UserRepository) GetPushTokens(ctx context.Context, usernames []string) (map[string]string, error) {
	query := `SELECT username, push_token FROM users WHERE username = ANY($1) AND push_token IS NOT NULL`
	rows, err := r.db.Query(ctx, query, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to get push tokens: %w", err)
	}
	defer rows.Close()

	tokens := make(map[string]string)
	for rows.Next() {
		var username, token string
		if err := rows.Scan(&username, &token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens[username] = token
	}
	return tokens, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendRepository handles database operations for friendship edges
type FriendRepository struct {
	db *pgxpool.Pool
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

// Create records that friending has friended friended
func (r *FriendRepository) Create(ctx context.Context, friending, friended string) error {
	query := `
		INSERT INTO friends (user_friending_username, user_friended_username)
		VALUES ($1, $2)
	`
	if _, err := r.db.Exec(ctx, query, friending, friended); err != nil {
		return fmt.Errorf("failed to create friendship: %w", classify(err))
	}
	return nil
}

// ListFriended retrieves the usernames a user has friended
func (r *FriendRepository) ListFriended(ctx context.Context, username string) ([]string, error) {
	query := `
		SELECT user_friended_username
		FROM friends
		WHERE user_friending_username = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	defer rows.Close()

	friends := []string{}
	for rows.Next() {
		var friend string
		if err := rows.Scan(&friend); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return friends, nil
}

// Delete removes a friendship edge
func (r *FriendRepository) Delete(ctx context.Context, friending, friended string) error {
	query := `DELETE FROM friends WHERE user_friending_username = $1 AND user_friended_username = $2`
	result, err := r.db.Exec(ctx, query, friending, friended)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship %s -> %s: %w", friending, friended, ErrNotFound)
	}
	return nil
}

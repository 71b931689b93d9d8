package repository

import (
	"context"
	"fmt"

	"playdate-buddy-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db *pgxpool.Pool
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *pgxpool.Pool) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create creates a new child
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	query := `
		INSERT INTO children (id, parent_username, dob, gender)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, child.ID, child.ParentUsername, child.DOB, child.Gender)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", classify(err))
	}
	return nil
}

// ListByParent retrieves the children of a user, oldest first
func (r *ChildRepository) ListByParent(ctx context.Context, username string) ([]models.Child, error) {
	query := `
		SELECT id, parent_username, dob, gender
		FROM children
		WHERE parent_username = $1
		ORDER BY dob
	`
	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		var c models.Child
		if err := rows.Scan(&c.ID, &c.ParentUsername, &c.DOB, &c.Gender); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating children: %w", err)
	}
	return children, nil
}

package comments

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new comment.
func (r *PostgresRepository) Create(ctx context.Context, comment Comment) (Comment, error) {
	const query = `
		INSERT INTO place_comments (id, place_id, author_id, text, rating, created_at)
		VALUES (:id, :place_id, :author_id, :text, :rating, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// Get returns a comment by ID.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Comment, error) {
	const query = `
		SELECT id, place_id, author_id, text, rating, created_at
		FROM place_comments
		WHERE id = $1
	`

	var comment Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return comment, nil
}

// ListByPlace returns all comments for a place, newest first.
func (r *PostgresRepository) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]Comment, error) {
	const query = `
		SELECT id, place_id, author_id, text, rating, created_at
		FROM place_comments
		WHERE place_id = $1
		ORDER BY created_at DESC
	`

	out := make([]Comment, 0)
	if err := r.db.SelectContext(ctx, &out, query, placeID); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a comment by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM place_comments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

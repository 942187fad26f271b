package repository

import (
	"context"
	"errors"
	"fmt"

	"ambulance-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// List returns one page of comments, newest first, optionally filtered
// by ambulance id, along with the total count for pagination.
func (r *CommentRepository) List(ctx context.Context, ambulanceID *int, limit, offset int) ([]models.Comment, int, error) {
	countQuery := `SELECT COUNT(*) FROM comments WHERE $1::int IS NULL OR ambulance_id = $1`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, ambulanceID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	query := `
		SELECT c.id, c.user_id, c.ambulance_id, c.content, c.image_url,
		       c.emoticon_code, c.parent_id, c.created_at, u.username, u.is_admin
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE $1::int IS NULL OR c.ambulance_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, ambulanceID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID, &c.UserID, &c.AmbulanceID, &c.Content, &c.ImageURL,
			&c.EmoticonCode, &c.ParentID, &c.CreatedAt, &c.Username, &c.IsAdmin,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, total, nil
}

// Insert stores a comment and returns it joined with the author's name
func (r *CommentRepository) Insert(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO comments (user_id, ambulance_id, content, image_url, emoticon_code, parent_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id, user_id, ambulance_id, content, image_url, emoticon_code, parent_id, created_at
		)
		SELECT i.id, i.user_id, i.ambulance_id, i.content, i.image_url,
		       i.emoticon_code, i.parent_id, i.created_at, u.username, u.is_admin
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`
	var stored models.Comment
	err := r.db.QueryRow(ctx, query,
		c.UserID, c.AmbulanceID, c.Content, c.ImageURL, c.EmoticonCode, c.ParentID,
	).Scan(
		&stored.ID, &stored.UserID, &stored.AmbulanceID, &stored.Content, &stored.ImageURL,
		&stored.EmoticonCode, &stored.ParentID, &stored.CreatedAt, &stored.Username, &stored.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("comment user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &stored, nil
}

// Delete removes a single comment
func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// DeleteAll removes every comment and returns how many were deleted
func (r *CommentRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM comments`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return result.RowsAffected(), nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"ambulance-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CallRepository handles database operations for the call history
type CallRepository struct {
	db *pgxpool.Pool
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

// Insert records a call and returns it joined with the caller's name
func (r *CallRepository) Insert(ctx context.Context, userID int) (*models.CallRecord, error) {
	query := `
		WITH inserted AS (
			INSERT INTO call_history (user_id, called_at)
			VALUES ($1, NOW())
			RETURNING id, user_id, called_at
		)
		SELECT i.id, i.user_id, u.full_name, i.called_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`
	var call models.CallRecord
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&call.ID, &call.UserID, &call.UserName, &call.CalledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("call user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record call: %w", err)
	}
	return &call, nil
}

// List returns the full call history, newest first
func (r *CallRepository) List(ctx context.Context) ([]models.CallRecord, error) {
	query := `
		SELECT h.id, h.user_id, u.full_name, h.called_at
		FROM call_history h
		JOIN users u ON u.id = h.user_id
		ORDER BY h.called_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list call history: %w", err)
	}
	defer rows.Close()

	var calls []models.CallRecord
	for rows.Next() {
		var call models.CallRecord
		if err := rows.Scan(&call.ID, &call.UserID, &call.UserName, &call.CalledAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calls: %w", err)
	}
	return calls, nil
}

// Delete removes a single call record
func (r *CallRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM call_history WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}
	return nil
}

// Clear removes all call records and returns how many were deleted
func (r *CallRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM call_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear call history: %w", err)
	}
	return result.RowsAffected(), nil
}

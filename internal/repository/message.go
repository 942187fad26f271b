package repository

import (
	"context"
	"errors"
	"fmt"

	"ambulance-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert stores a new message and returns it with id and timestamp filled in
func (r *MessageRepository) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, image_url, latitude, longitude, emoticon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`
	stored := *msg
	err := r.db.QueryRow(ctx, query,
		msg.SenderID, msg.ReceiverID, msg.Content, msg.ImageURL,
		msg.Latitude, msg.Longitude, msg.EmoticonCode,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return &stored, nil
}

// GetByID retrieves a message by id
func (r *MessageRepository) GetByID(ctx context.Context, id int) (*models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, image_url, latitude, longitude, emoticon_code, created_at
		FROM messages
		WHERE id = $1
	`
	var msg models.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.ImageURL,
		&msg.Latitude, &msg.Longitude, &msg.EmoticonCode, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

// ListInvolving returns every message the user sent or received, joined
// with the other participant's id and name. Feeds the conversation view.
func (r *MessageRepository) ListInvolving(ctx context.Context, userID int) ([]models.ConversationMessage, error) {
	query := `
		SELECT
			m.id, m.sender_id, m.receiver_id, m.content, m.image_url,
			m.latitude, m.longitude, m.emoticon_code, m.created_at,
			CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id,
			u.full_name AS partner_name
		FROM messages m
		JOIN users u
			ON u.id = CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END
		WHERE m.sender_id = $1 OR m.receiver_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var cm models.ConversationMessage
		err := rows.Scan(
			&cm.ID, &cm.SenderID, &cm.ReceiverID, &cm.Content, &cm.ImageURL,
			&cm.Latitude, &cm.Longitude, &cm.EmoticonCode, &cm.CreatedAt,
			&cm.PartnerID, &cm.PartnerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// ListBetween returns the full message history between two users,
// ascending by creation time.
func (r *MessageRepository) ListBetween(ctx context.Context, userID, targetID int) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, image_url, latitude, longitude, emoticon_code, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.ImageURL,
			&msg.Latitude, &msg.Longitude, &msg.EmoticonCode, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// Delete removes a single message
func (r *MessageRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// DeleteBetween removes every message exchanged between two users and
// returns how many rows were deleted.
func (r *MessageRepository) DeleteBetween(ctx context.Context, userID, targetID int) (int64, error) {
	query := `
		DELETE FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
	`
	result, err := r.db.Exec(ctx, query, userID, targetID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear messages: %w", err)
	}
	return result.RowsAffected(), nil
}

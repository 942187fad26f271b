package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ambulance-tracker-backend/internal/models"
	"ambulance-tracker-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrEmptyMessage signals a send attempt carrying none of the four
// supported content kinds.
var ErrEmptyMessage = errors.New("at least one of content, imageUrl, latitude+longitude, or emoticonCode must be provided")

// MessageStore is the persistence surface the chat service needs.
type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id int) (*models.Message, error)
	ListInvolving(ctx context.Context, userID int) ([]models.ConversationMessage, error)
	ListBetween(ctx context.Context, userID, targetID int) ([]models.Message, error)
	Delete(ctx context.Context, id int) error
	DeleteBetween(ctx context.Context, userID, targetID int) (int64, error)
}

// SendMessageInput is the validated payload for sending a message.
type SendMessageInput struct {
	SenderID     int
	ReceiverID   int
	Content      string
	ImageURL     string
	Latitude     *float64
	Longitude    *float64
	EmoticonCode string
}

// ChatService relays messages between citizens and dispatchers and
// derives the per-partner conversation view from the flat message log.
type ChatService struct {
	store       MessageStore
	broadcaster Broadcaster
}

// NewChatService creates a new chat service
func NewChatService(store MessageStore, broadcaster Broadcaster) *ChatService {
	return &ChatService{store: store, broadcaster: broadcaster}
}

// Send validates, stores and delivers a message. The stored row is
// delivered to both the sender's and the receiver's address so every
// open session of either participant sees it.
func (s *ChatService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	imageURL := strings.TrimSpace(in.ImageURL)
	emoticon := strings.TrimSpace(in.EmoticonCode)
	hasLocation := in.Latitude != nil && in.Longitude != nil

	if content == "" && imageURL == "" && !hasLocation && emoticon == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
	}
	if content != "" {
		msg.Content = &content
	}
	if imageURL != "" {
		msg.ImageURL = &imageURL
	}
	if hasLocation {
		msg.Latitude = in.Latitude
		msg.Longitude = in.Longitude
	}
	if emoticon != "" {
		msg.EmoticonCode = &emoticon
	}

	stored, err := s.store.Insert(ctx, msg)
	if err != nil {
		return nil, err
	}

	s.broadcaster.DeliverToAddress(address(stored.ReceiverID), EventNewMessage, stored)
	s.broadcaster.DeliverToAddress(address(stored.SenderID), EventNewMessage, stored)

	return stored, nil
}

// Conversations computes the derived conversation view for a user: one
// entry per distinct partner carrying the newest message in that
// partner's partition, ordered most-recent-first. Messages sharing a
// timestamp are broken by the highest id.
func (s *ChatService) Conversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	messages, err := s.store.ListInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	latest := make(map[int]models.ConversationMessage)
	for _, m := range messages {
		best, ok := latest[m.PartnerID]
		if !ok || m.CreatedAt.After(best.CreatedAt) ||
			(m.CreatedAt.Equal(best.CreatedAt) && m.ID > best.ID) {
			latest[m.PartnerID] = m
		}
	}

	conversations := make([]models.Conversation, 0, len(latest))
	for _, m := range latest {
		conversations = append(conversations, models.Conversation{
			PartnerID:   m.PartnerID,
			PartnerName: m.PartnerName,
			LastMessage: models.LastMessage{
				Content:      m.Content,
				ImageURL:     m.ImageURL,
				Latitude:     m.Latitude,
				Longitude:    m.Longitude,
				EmoticonCode: m.EmoticonCode,
			},
			LastTimestamp: m.CreatedAt,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		if !conversations[i].LastTimestamp.Equal(conversations[j].LastTimestamp) {
			return conversations[i].LastTimestamp.After(conversations[j].LastTimestamp)
		}
		return conversations[i].PartnerID < conversations[j].PartnerID
	})

	return conversations, nil
}

// History returns the full ordered message log between two users, each
// entry tagged outgoing or incoming relative to userID.
func (s *ChatService) History(ctx context.Context, userID, targetID int) ([]models.ChatHistoryEntry, error) {
	messages, err := s.store.ListBetween(ctx, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]models.ChatHistoryEntry, 0, len(messages))
	for _, m := range messages {
		direction := "incoming"
		if m.SenderID == userID {
			direction = "outgoing"
		}
		entries = append(entries, models.ChatHistoryEntry{Message: m, Direction: direction})
	}
	return entries, nil
}

// DeleteMessage removes one message and notifies both participants.
// Deleting an id that no longer exists is a no-op.
func (s *ChatService) DeleteMessage(ctx context.Context, id int) error {
	msg, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	payload := map[string]int{"id": id}
	s.broadcaster.DeliverToAddress(address(msg.SenderID), EventMessageDeleted, payload)
	s.broadcaster.DeliverToAddress(address(msg.ReceiverID), EventMessageDeleted, payload)

	log.Info().Int("message_id", id).Msg("Message deleted")
	return nil
}

// ClearConversation removes every message between the two users and
// notifies both of them, each from their own point of view.
func (s *ChatService) ClearConversation(ctx context.Context, userID, targetID int) (int64, error) {
	deleted, err := s.store.DeleteBetween(ctx, userID, targetID)
	if err != nil {
		return 0, err
	}

	s.broadcaster.DeliverToAddress(address(userID), EventConversationCleared, map[string]int{
		"userId":   userID,
		"targetId": targetID,
	})
	s.broadcaster.DeliverToAddress(address(targetID), EventConversationCleared, map[string]int{
		"userId":   targetID,
		"targetId": userID,
	})

	log.Info().Int("user_id", userID).Int("target_id", targetID).Int64("deleted", deleted).Msg("Conversation cleared")
	return deleted, nil
}

// address turns a user id into its push-delivery group key.
func address(userID int) string {
	return strconv.Itoa(userID)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ambulance-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Conversations handles GET /api/chat/conversation/{userID}
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, "Invalid userId", http.StatusBadRequest)
		return
	}

	conversations, err := h.chatService.Conversations(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Failed to fetch conversations")
		respondError(w, "Failed to fetch conversations", http.StatusInternalServerError)
		return
	}
	respondJSON(w, conversations, http.StatusOK)
}

// History handles GET /api/chat/{userID}/{targetID}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err1 := strconv.Atoi(chi.URLParam(r, "userID"))
	targetID, err2 := strconv.Atoi(chi.URLParam(r, "targetID"))
	if err1 != nil || err2 != nil {
		respondError(w, "Invalid user IDs", http.StatusBadRequest)
		return
	}

	history, err := h.chatService.History(r.Context(), userID, targetID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Int("target_id", targetID).Msg("Failed to fetch chat")
		respondError(w, "Failed to fetch chat", http.StatusInternalServerError)
		return
	}
	respondJSON(w, history, http.StatusOK)
}

// SendMessageRequest is the body of POST /api/chat
type SendMessageRequest struct {
	SenderID     *int     `json:"senderId"`
	ReceiverID   *int     `json:"receiverId"`
	Content      string   `json:"content"`
	ImageURL     string   `json:"imageUrl"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	EmoticonCode string   `json:"emoticonCode"`
}

// Send handles POST /api/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SenderID == nil || req.ReceiverID == nil {
		respondError(w, "Invalid senderId or receiverId", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.Send(r.Context(), services.SendMessageInput{
		SenderID:     *req.SenderID,
		ReceiverID:   *req.ReceiverID,
		Content:      req.Content,
		ImageURL:     req.ImageURL,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		EmoticonCode: req.EmoticonCode,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to send message")
		respondError(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{"success": true, "message": msg}, http.StatusOK)
}

// Delete handles DELETE /api/chat/{id}
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), id); err != nil {
		log.Error().Err(err).Int("message_id", id).Msg("Failed to delete message")
		respondError(w, "Failed to delete message", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{"success": true}, http.StatusOK)
}

// Clear handles DELETE /api/chat/clear/{userID}/{targetID}
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err1 := strconv.Atoi(chi.URLParam(r, "userID"))
	targetID, err2 := strconv.Atoi(chi.URLParam(r, "targetID"))
	if err1 != nil || err2 != nil {
		respondError(w, "Invalid user IDs", http.StatusBadRequest)
		return
	}

	deleted, err := h.chatService.ClearConversation(r.Context(), userID, targetID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clear messages")
		respondError(w, "Failed to clear all messages", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":      true,
		"message":      "All messages cleared successfully",
		"deletedCount": deleted,
	}, http.StatusOK)
}

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

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles GET /api/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	var ambulanceID *int
	if raw := r.URL.Query().Get("ambulanceId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, "Invalid ambulanceId", http.StatusBadRequest)
			return
		}
		ambulanceID = &id
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	comments, total, err := h.commentService.List(r.Context(), ambulanceID, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch comments")
		respondError(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"page":     page,
		"limit":    limit,
		"total":    total,
		"comments": comments,
	}, http.StatusOK)
}

// PostCommentRequest is the body of POST /api/comments
type PostCommentRequest struct {
	UserID       *int   `json:"userId"`
	AmbulanceID  *int   `json:"ambulanceId"`
	Content      string `json:"content"`
	ImageURL     string `json:"imageUrl"`
	EmoticonCode string `json:"emoticonCode"`
	ParentID     *int   `json:"parentId"`
}

// Post handles POST /api/comments
func (h *CommentHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == nil || req.AmbulanceID == nil {
		respondError(w, "userId and ambulanceId are required", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Post(r.Context(), services.PostCommentInput{
		UserID:       *req.UserID,
		AmbulanceID:  *req.AmbulanceID,
		Content:      req.Content,
		ImageURL:     req.ImageURL,
		EmoticonCode: req.EmoticonCode,
		ParentID:     req.ParentID,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyComment) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to post comment")
		respondError(w, "Failed to post comment", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{"success": true, "comment": comment}, http.StatusOK)
}

// Delete handles DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.commentService.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Int("comment_id", id).Msg("Failed to delete comment")
		respondError(w, "Failed to delete comment", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{"success": true}, http.StatusOK)
}

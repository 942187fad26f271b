package services

import (
	"context"
	"errors"
	"strings"

	"ambulance-tracker-backend/internal/models"
)

// ErrEmptyComment signals a comment carrying neither text, image nor emoticon.
var ErrEmptyComment = errors.New("at least one content type (text, image, or emoticon) is required")

// CommentStore is the persistence surface the comment service needs.
type CommentStore interface {
	List(ctx context.Context, ambulanceID *int, limit, offset int) ([]models.Comment, int, error)
	Insert(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id int) error
}

// PostCommentInput is the validated payload for posting a comment.
type PostCommentInput struct {
	UserID       int
	AmbulanceID  int
	Content      string
	ImageURL     string
	EmoticonCode string
	ParentID     *int
}

// CommentService handles the public comment feed.
type CommentService struct {
	store       CommentStore
	broadcaster Broadcaster
}

// NewCommentService creates a new comment service
func NewCommentService(store CommentStore, broadcaster Broadcaster) *CommentService {
	return &CommentService{store: store, broadcaster: broadcaster}
}

// List returns one page of comments plus the total count
func (s *CommentService) List(ctx context.Context, ambulanceID *int, page, limit int) ([]models.Comment, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.List(ctx, ambulanceID, limit, (page-1)*limit)
}

// Post validates and stores a comment, then broadcasts it to everyone.
func (s *CommentService) Post(ctx context.Context, in PostCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	imageURL := strings.TrimSpace(in.ImageURL)
	emoticon := strings.TrimSpace(in.EmoticonCode)

	if content == "" && imageURL == "" && emoticon == "" {
		return nil, ErrEmptyComment
	}

	c := &models.Comment{
		UserID:      in.UserID,
		AmbulanceID: in.AmbulanceID,
		ParentID:    in.ParentID,
	}
	if content != "" {
		c.Content = &content
	}
	if imageURL != "" {
		c.ImageURL = &imageURL
	}
	if emoticon != "" {
		c.EmoticonCode = &emoticon
	}

	stored, err := s.store.Insert(ctx, c)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastGlobal(EventNewComment, stored)
	return stored, nil
}

// Delete removes a single comment
func (s *CommentService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

package services

import (
	"context"
	"time"

	"ambulance-tracker-backend/internal/models"
)

// CallStore is the persistence surface the call service needs.
type CallStore interface {
	Insert(ctx context.Context, userID int) (*models.CallRecord, error)
	List(ctx context.Context) ([]models.CallRecord, error)
	Delete(ctx context.Context, id int) error
	Clear(ctx context.Context) (int64, error)
}

// CallService records emergency calls and pushes call-history events to
// every client. Call events are global, not targeted.
type CallService struct {
	store       CallStore
	broadcaster Broadcaster
}

// NewCallService creates a new call service
func NewCallService(store CallStore, broadcaster Broadcaster) *CallService {
	return &CallService{store: store, broadcaster: broadcaster}
}

// Record stores a call and broadcasts it
func (s *CallService) Record(ctx context.Context, userID int) (*models.CallRecord, error) {
	call, err := s.store.Insert(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastGlobal(EventNewCall, call)
	return call, nil
}

// History returns all calls, newest first
func (s *CallService) History(ctx context.Context) ([]models.CallRecord, error) {
	return s.store.List(ctx)
}

// Delete removes one call record and broadcasts the deletion
func (s *CallService) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.broadcaster.BroadcastGlobal(EventCallDeleted, map[string]int{"id": id})
	return nil
}

// Clear removes the entire call history and broadcasts the wipe
func (s *CallService) Clear(ctx context.Context) (int64, error) {
	cleared, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.broadcaster.BroadcastGlobal(EventAllCallsCleared, map[string]interface{}{
		"success":      true,
		"clearedCount": cleared,
		"timestamp":    time.Now(),
	})
	return cleared, nil
}

package services

import (
	"sync"
	"time"

	"ambulance-tracker-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// TrackingState owns the process-wide "is tracking active" flag that
// gates ambulance location writes. The flag is not persisted; every
// process starts with tracking enabled.
type TrackingState struct {
	mu             sync.Mutex
	active         bool
	lastToggleTime time.Time
}

// NewTrackingState creates the tracking state, enabled by default.
func NewTrackingState() *TrackingState {
	return &TrackingState{
		active:         true,
		lastToggleTime: time.Now(),
	}
}

// Toggle sets the flag, stamps the toggle time and returns the new value.
func (t *TrackingState) Toggle(enabled bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = enabled
	t.lastToggleTime = time.Now()

	log.Info().Bool("active", t.active).Msg("Ambulance tracking toggled")
	return t.active
}

// IsEnabled reports whether tracking is currently active.
func (t *TrackingState) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Status returns a snapshot of the flag. Timestamp is the observation
// time, distinct from LastToggleTime.
func (t *TrackingState) Status() models.TrackingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return models.TrackingStatus{
		TrackingActive: t.active,
		LastToggleTime: t.lastToggleTime.UnixMilli(),
		Timestamp:      time.Now(),
	}
}

package services

import "ambulance-tracker-backend/internal/models"

// Broadcaster is the push-delivery surface the services need: a global
// fan-out to every client and a targeted delivery to one address group.
type Broadcaster interface {
	BroadcastGlobal(event string, payload interface{})
	DeliverToAddress(address, event string, payload interface{})
}

// Push event names, as consumed by the clients.
const (
	EventTrackingStatus      = "trackingStatus"
	EventTrackingEnabled     = "ambulanceTrackingEnabled"
	EventTrackingDisabled    = "ambulanceTrackingDisabled"
	EventToggleConfirm       = "trackingToggleConfirm"
	EventLocationUpdated     = "ambulanceLocationUpdated"
	EventNewMessage          = "newMessage"
	EventMessageDeleted      = "messageDeleted"
	EventConversationCleared = "conversationCleared"
	EventNewCall             = "newCall"
	EventCallDeleted         = "callDeleted"
	EventAllCallsCleared     = "allCallsCleared"
	EventNewComment          = "newComment"
)

// ToggleTracking flips the tracking flag and pushes the resulting status
// to every connected client. Returns the post-toggle snapshot.
func ToggleTracking(state *TrackingState, b Broadcaster, enabled bool) models.TrackingStatus {
	active := state.Toggle(enabled)
	status := state.Status()

	if active {
		b.BroadcastGlobal(EventTrackingEnabled, status)
	} else {
		b.BroadcastGlobal(EventTrackingDisabled, status)
	}
	return status
}

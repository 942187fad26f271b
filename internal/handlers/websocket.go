package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ambulance-tracker-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundFrame is a client-to-server push message.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketHandler handles push-channel connections
type WebSocketHandler struct {
	hub      *services.Hub
	tracking *services.TrackingState
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *services.Hub, tracking *services.TrackingState) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tracking: tracking}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := services.NewClient(conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// The current tracking snapshot is pushed before anything else so a
	// client never has to poll for status after connecting.
	h.hub.SendToClient(client, services.EventTrackingStatus, h.tracking.Status())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Error().Err(err).Msg("Failed to parse WebSocket message")
			continue
		}
		h.handleFrame(client, frame)
	}
}

func (h *WebSocketHandler) handleFrame(client *services.Client, frame inboundFrame) {
	switch frame.Event {
	case "join":
		address, ok := parseAddress(frame.Data)
		if !ok {
			log.Error().Str("data", string(frame.Data)).Msg("Invalid join address")
			return
		}
		h.hub.Join(client, address)

	case "toggleAmbulanceTracking":
		var payload struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			log.Error().Err(err).Msg("Invalid toggle payload")
			h.hub.SendToClient(client, services.EventToggleConfirm, map[string]interface{}{
				"success":        false,
				"error":          "Failed to toggle tracking",
				"trackingActive": h.tracking.IsEnabled(),
			})
			return
		}

		status := services.ToggleTracking(h.tracking, h.hub, payload.Enabled)
		h.hub.SendToClient(client, services.EventToggleConfirm, map[string]interface{}{
			"success":        true,
			"trackingActive": status.TrackingActive,
			"lastToggleTime": status.LastToggleTime,
			"timestamp":      status.Timestamp,
		})

	default:
		log.Debug().Str("event", frame.Event).Msg("Unknown WebSocket event")
	}
}

// parseAddress accepts a join address as either a JSON string or number,
// since clients historically sent both.
func parseAddress(raw json.RawMessage) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString, true
	}
	var asNumber int
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.Itoa(asNumber), true
	}
	return "", false
}

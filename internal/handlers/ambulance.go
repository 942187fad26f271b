package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ambulance-tracker-backend/internal/repository"
	"ambulance-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AmbulanceHandler handles location, tracking and call-history requests
type AmbulanceHandler struct {
	locationService *services.LocationService
	callService     *services.CallService
	tracking        *services.TrackingState
	broadcaster     services.Broadcaster
}

// NewAmbulanceHandler creates a new ambulance handler
func NewAmbulanceHandler(
	locationService *services.LocationService,
	callService *services.CallService,
	tracking *services.TrackingState,
	broadcaster services.Broadcaster,
) *AmbulanceHandler {
	return &AmbulanceHandler{
		locationService: locationService,
		callService:     callService,
		tracking:        tracking,
		broadcaster:     broadcaster,
	}
}

// GetLocation handles GET /api/ambulance
func (h *AmbulanceHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	rec, trackingActive, err := h.locationService.Current(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Location not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to get ambulance location")
		respondError(w, "Failed to get location", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"latitude":       rec.Latitude,
		"longitude":      rec.Longitude,
		"isBusy":         rec.IsBusy,
		"updatedAt":      rec.UpdatedAt,
		"trackingActive": trackingActive,
	}, http.StatusOK)
}

// UpdateLocationRequest is the body of PUT /api/ambulance
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsBusy    *bool    `json:"isBusy"`
}

// UpdateLocation handles PUT /api/ambulance
func (h *AmbulanceHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respondError(w, "Latitude and longitude are required", http.StatusBadRequest)
		return
	}

	adminOverride := r.Header.Get("X-Admin-Update") == "true"

	result, err := h.locationService.Update(r.Context(), *req.Latitude, *req.Longitude, req.IsBusy, adminOverride)
	if err != nil {
		if errors.Is(err, services.ErrTrackingDisabled) {
			respondJSON(w, map[string]interface{}{
				"error":          "Ambulance tracking is currently disabled",
				"trackingActive": false,
				"message":        "Please enable tracking first before updating location",
			}, http.StatusLocked)
			return
		}
		log.Error().Err(err).Msg("Failed to update ambulance location")
		respondError(w, "Failed to update location", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":        true,
		"trackingActive": result.TrackingActive,
		"location": map[string]interface{}{
			"latitude":    result.Latitude,
			"longitude":   result.Longitude,
			"addressText": result.AddressText,
			"isBusy":      result.IsBusy,
		},
	}, http.StatusOK)
}

// UpdateStatusRequest is the body of PUT /api/ambulance/status
type UpdateStatusRequest struct {
	IsBusy *bool `json:"isBusy"`
}

// UpdateStatus handles PUT /api/ambulance/status. Never gated: busy
// state is operator control, not telemetry.
func (h *AmbulanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.IsBusy == nil {
		respondError(w, "isBusy status is required", http.StatusBadRequest)
		return
	}

	trackingActive, err := h.locationService.SetBusy(r.Context(), *req.IsBusy)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update ambulance status")
		respondError(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	status := "available"
	if *req.IsBusy {
		status = "busy"
	}
	respondJSON(w, map[string]interface{}{
		"success":        true,
		"isBusy":         *req.IsBusy,
		"trackingActive": trackingActive,
		"message":        "Status changed to " + status,
	}, http.StatusOK)
}

// ToggleTrackingRequest is the body of POST /api/ambulance/tracking/toggle
type ToggleTrackingRequest struct {
	Enabled bool `json:"enabled"`
}

// ToggleTracking handles POST /api/ambulance/tracking/toggle
func (h *AmbulanceHandler) ToggleTracking(w http.ResponseWriter, r *http.Request) {
	var req ToggleTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := services.ToggleTracking(h.tracking, h.broadcaster, req.Enabled)

	message := "Tracking disabled"
	if status.TrackingActive {
		message = "Tracking enabled"
	}
	respondJSON(w, map[string]interface{}{
		"success":                 true,
		"ambulanceTrackingActive": status.TrackingActive,
		"message":                 message,
		"trackingActive":          status.TrackingActive,
		"lastToggleTime":          status.LastToggleTime,
		"timestamp":               status.Timestamp,
	}, http.StatusOK)
}

// TrackingStatus handles GET /api/ambulance/tracking/status
func (h *AmbulanceHandler) TrackingStatus(w http.ResponseWriter, r *http.Request) {
	status := h.tracking.Status()
	respondJSON(w, map[string]interface{}{
		"ambulanceTrackingActive": status.TrackingActive,
		"trackingActive":          status.TrackingActive,
		"lastToggleTime":          status.LastToggleTime,
		"timestamp":               status.Timestamp,
	}, http.StatusOK)
}

// BroadcastLocation handles POST /api/ambulance/broadcast-location
func (h *AmbulanceHandler) BroadcastLocation(w http.ResponseWriter, r *http.Request) {
	payload, err := h.locationService.BroadcastCurrent(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "No ambulance location found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to broadcast ambulance location")
		respondError(w, "Failed to broadcast location", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":        true,
		"message":        "Location broadcasted",
		"data":           payload,
		"trackingActive": payload.TrackingActive,
	}, http.StatusOK)
}

// LocationDetail handles GET /api/ambulance/{id}/location-detail
func (h *AmbulanceHandler) LocationDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Invalid ambulance ID", http.StatusBadRequest)
		return
	}

	rec, trackingActive, err := h.locationService.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Location not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to get location detail")
		respondError(w, "Failed to get location detail", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"latitude":       rec.Latitude,
		"longitude":      rec.Longitude,
		"addressText":    rec.AddressText,
		"isBusy":         rec.IsBusy,
		"updatedAt":      rec.UpdatedAt,
		"trackingActive": trackingActive,
	}, http.StatusOK)
}

// RecordCallRequest is the body of POST /api/ambulance/call
type RecordCallRequest struct {
	UserID *int `json:"userId"`
}

// RecordCall handles POST /api/ambulance/call
func (h *AmbulanceHandler) RecordCall(w http.ResponseWriter, r *http.Request) {
	var req RecordCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == nil {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	call, err := h.callService.Record(r.Context(), *req.UserID)
	if err != nil {
		log.Error().Err(err).Int("user_id", *req.UserID).Msg("Failed to record call")
		respondError(w, "Failed to record call", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{"success": true, "call": call}, http.StatusOK)
}

// CallHistory handles GET /api/ambulance/history
func (h *AmbulanceHandler) CallHistory(w http.ResponseWriter, r *http.Request) {
	calls, err := h.callService.History(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch call history")
		respondError(w, "Failed to fetch history", http.StatusInternalServerError)
		return
	}
	respondJSON(w, calls, http.StatusOK)
}

// DeleteCall handles DELETE /api/ambulance/history/{id}
func (h *AmbulanceHandler) DeleteCall(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Invalid call ID", http.StatusBadRequest)
		return
	}

	if err := h.callService.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Int("call_id", id).Msg("Failed to delete call")
		respondError(w, "Failed to delete history", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{"success": true}, http.StatusOK)
}

// ClearCalls handles DELETE /api/ambulance/history/clear
func (h *AmbulanceHandler) ClearCalls(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.callService.Clear(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to clear call history")
		respondError(w, "Failed to clear all call history", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":      true,
		"message":      "All call history cleared successfully",
		"clearedCount": cleared,
	}, http.StatusOK)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ambulance-tracker-backend/internal/models"
	"ambulance-tracker-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrTrackingDisabled signals that a location write was denied because
// tracking is off and no admin override was supplied. Handlers map it
// to 423 so clients can tell "locked" apart from bad input.
var ErrTrackingDisabled = errors.New("ambulance tracking is currently disabled")

// LocationStore is the persistence surface the location service needs.
type LocationStore interface {
	Get(ctx context.Context) (*models.LocationRecord, error)
	GetByID(ctx context.Context, id int) (*models.LocationRecord, error)
	Upsert(ctx context.Context, latitude, longitude float64, isBusy *bool) error
	SetAddress(ctx context.Context, address string) error
	SetBusy(ctx context.Context, isBusy bool) error
}

// LocationBroadcast is the payload pushed on every location change.
type LocationBroadcast struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AddressText    *string   `json:"addressText"`
	IsBusy         bool      `json:"isBusy"`
	UpdatedAt      time.Time `json:"updatedAt"`
	TrackingActive bool      `json:"trackingActive"`
}

// LocationService owns the gated location write path: it consults the
// tracking flag, upserts the singleton record, resolves the address
// best-effort and hands the result to the broadcaster.
type LocationService struct {
	store       LocationStore
	tracking    *TrackingState
	geocoder    Geocoder
	broadcaster Broadcaster
}

// NewLocationService creates a new location service
func NewLocationService(store LocationStore, tracking *TrackingState, geocoder Geocoder, broadcaster Broadcaster) *LocationService {
	return &LocationService{
		store:       store,
		tracking:    tracking,
		geocoder:    geocoder,
		broadcaster: broadcaster,
	}
}

// Current returns the stored record plus the live tracking flag.
func (s *LocationService) Current(ctx context.Context) (*models.LocationRecord, bool, error) {
	rec, err := s.store.Get(ctx)
	if err != nil {
		return nil, s.tracking.IsEnabled(), err
	}
	return rec, s.tracking.IsEnabled(), nil
}

// Update runs the gated write path. The write is denied with
// ErrTrackingDisabled when tracking is off and adminOverride is false.
// On success the record is upserted, the address is resolved with a
// bounded timeout (failure never fails the request) and the result is
// broadcast with whatever address is known at that instant.
func (s *LocationService) Update(ctx context.Context, latitude, longitude float64, isBusy *bool, adminOverride bool) (*LocationBroadcast, error) {
	trackingActive := s.tracking.IsEnabled()
	if !trackingActive && !adminOverride {
		return nil, ErrTrackingDisabled
	}

	if err := s.store.Upsert(ctx, latitude, longitude, isBusy); err != nil {
		return nil, fmt.Errorf("failed to store location: %w", err)
	}

	addressText := s.resolveAddress(ctx, latitude, longitude)

	busy := false
	if isBusy != nil {
		busy = *isBusy
	}

	payload := &LocationBroadcast{
		Latitude:       latitude,
		Longitude:      longitude,
		AddressText:    addressText,
		IsBusy:         busy,
		UpdatedAt:      time.Now(),
		TrackingActive: trackingActive,
	}
	s.broadcaster.BroadcastGlobal(EventLocationUpdated, payload)

	return payload, nil
}

// resolveAddress reverse-geocodes the coordinates and persists the
// result as a separate write. Both steps are best-effort: a failure or
// timeout is logged and the previous address is left untouched.
func (s *LocationService) resolveAddress(ctx context.Context, latitude, longitude float64) *string {
	address, err := s.geocoder.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		log.Warn().Err(err).
			Float64("latitude", latitude).
			Float64("longitude", longitude).
			Msg("Reverse geocode failed")
		return nil
	}

	if err := s.store.SetAddress(ctx, address); err != nil {
		log.Error().Err(err).Msg("Failed to persist resolved address")
	}
	return &address
}

// SetBusy toggles the busy flag. This path is operator control, not
// position telemetry, so it is never gated by the tracking flag and
// skips the geocode step. If a record exists the updated state is
// re-read and broadcast.
func (s *LocationService) SetBusy(ctx context.Context, isBusy bool) (bool, error) {
	trackingActive := s.tracking.IsEnabled()

	if err := s.store.SetBusy(ctx, isBusy); err != nil {
		return trackingActive, fmt.Errorf("failed to update busy status: %w", err)
	}

	rec, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Msg("Failed to re-read location after status change")
		}
		return trackingActive, nil
	}

	s.broadcaster.BroadcastGlobal(EventLocationUpdated, &LocationBroadcast{
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		AddressText:    rec.AddressText,
		IsBusy:         rec.IsBusy,
		UpdatedAt:      rec.UpdatedAt,
		TrackingActive: trackingActive,
	})
	return trackingActive, nil
}

// BroadcastCurrent re-emits the stored record to every client.
func (s *LocationService) BroadcastCurrent(ctx context.Context) (*LocationBroadcast, error) {
	rec, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	payload := &LocationBroadcast{
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		AddressText:    rec.AddressText,
		IsBusy:         rec.IsBusy,
		UpdatedAt:      rec.UpdatedAt,
		TrackingActive: s.tracking.IsEnabled(),
	}
	s.broadcaster.BroadcastGlobal(EventLocationUpdated, payload)
	return payload, nil
}

// Detail returns a location row by id, resolving the address on demand
// when none is stored. The fallback text stands in when the geocoder is
// unavailable.
func (s *LocationService) Detail(ctx context.Context, id int) (*models.LocationRecord, bool, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.tracking.IsEnabled(), err
	}

	if rec.AddressText == nil {
		address, geoErr := s.geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
		if geoErr != nil {
			log.Warn().Err(geoErr).Msg("On-demand geocode failed")
			fallback := "Address not available"
			rec.AddressText = &fallback
		} else {
			rec.AddressText = &address
		}
	}
	return rec, s.tracking.IsEnabled(), nil
}

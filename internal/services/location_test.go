package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ambulance-tracker-backend/internal/models"
	"ambulance-tracker-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocationService(store *fakeLocationStore, tracking *TrackingState, geo *fakeGeocoder, b *fakeBroadcaster) *LocationService {
	return NewLocationService(store, tracking, geo, b)
}

func TestUpdateDeniedWhenTrackingDisabled(t *testing.T) {
	store := &fakeLocationStore{}
	tracking := NewTrackingState()
	tracking.Toggle(false)
	b := &fakeBroadcaster{}
	svc := newLocationService(store, tracking, &fakeGeocoder{address: "somewhere"}, b)

	_, err := svc.Update(context.Background(), -7.6, 111.5, nil, false)

	require.ErrorIs(t, err, ErrTrackingDisabled)
	assert.Zero(t, store.upserts, "denied write must not touch the store")
	assert.Empty(t, b.recorded(), "denied write must not broadcast")
}

func TestUpdateAllowedWithAdminOverride(t *testing.T) {
	store := &fakeLocationStore{}
	tracking := NewTrackingState()
	tracking.Toggle(false)
	b := &fakeBroadcaster{}
	svc := newLocationService(store, tracking, &fakeGeocoder{address: "Jalan Pahlawan, Madiun"}, b)

	result, err := svc.Update(context.Background(), -7.6, 111.5, nil, true)

	require.NoError(t, err)
	assert.Equal(t, 1, store.upserts)
	require.NotNil(t, result.AddressText)
	assert.Equal(t, "Jalan Pahlawan, Madiun", *result.AddressText)
	assert.False(t, result.TrackingActive)
}

func TestUpdateBroadcastsGlobally(t *testing.T) {
	store := &fakeLocationStore{}
	b := &fakeBroadcaster{}
	svc := newLocationService(store, NewTrackingState(), &fakeGeocoder{address: "addr"}, b)

	_, err := svc.Update(context.Background(), 1.0, 2.0, nil, false)

	require.NoError(t, err)
	pushes := b.recorded()
	require.Len(t, pushes, 1)
	assert.True(t, pushes[0].Global)
	assert.Equal(t, EventLocationUpdated, pushes[0].Event)

	payload, ok := pushes[0].Payload.(*LocationBroadcast)
	require.True(t, ok)
	assert.Equal(t, 1.0, payload.Latitude)
	assert.Equal(t, 2.0, payload.Longitude)
}

func TestGeocodeFailureDoesNotFailUpdate(t *testing.T) {
	store := &fakeLocationStore{}
	b := &fakeBroadcaster{}
	geo := &fakeGeocoder{err: errors.New("geocode timed out")}
	svc := newLocationService(store, NewTrackingState(), geo, b)

	result, err := svc.Update(context.Background(), 1.0, 2.0, nil, false)

	require.NoError(t, err)
	assert.Nil(t, result.AddressText)
	assert.Empty(t, store.setAddress, "no address write on geocode failure")
	assert.Len(t, b.recorded(), 1, "broadcast still goes out without an address")
}

func TestGeocodeSuccessPersistsAddressSeparately(t *testing.T) {
	store := &fakeLocationStore{}
	svc := newLocationService(store, NewTrackingState(), &fakeGeocoder{address: "resolved"}, &fakeBroadcaster{})

	_, err := svc.Update(context.Background(), 1.0, 2.0, nil, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"resolved"}, store.setAddress)
}

func TestUpdatePreservesBusyWhenAbsent(t *testing.T) {
	busy := true
	store := &fakeLocationStore{record: &models.LocationRecord{Latitude: 0, Longitude: 0, IsBusy: busy, UpdatedAt: time.Now()}}
	svc := newLocationService(store, NewTrackingState(), &fakeGeocoder{address: "a"}, &fakeBroadcaster{})

	_, err := svc.Update(context.Background(), 3.0, 4.0, nil, false)

	require.NoError(t, err)
	require.Len(t, store.upsertBusy, 1)
	assert.Nil(t, store.upsertBusy[0], "absent isBusy must be passed through as nil")
	assert.True(t, store.record.IsBusy, "stored busy flag untouched by partial update")
}

func TestSetBusyBypassesGate(t *testing.T) {
	store := &fakeLocationStore{record: &models.LocationRecord{Latitude: 1, Longitude: 2, IsBusy: false, UpdatedAt: time.Now()}}
	tracking := NewTrackingState()
	tracking.Toggle(false)
	b := &fakeBroadcaster{}
	svc := newLocationService(store, tracking, &fakeGeocoder{}, b)

	trackingActive, err := svc.SetBusy(context.Background(), true)

	require.NoError(t, err)
	assert.False(t, trackingActive)
	assert.Equal(t, []bool{true}, store.setBusy)

	pushes := b.recorded()
	require.Len(t, pushes, 1)
	assert.True(t, pushes[0].Global)
	assert.Equal(t, EventLocationUpdated, pushes[0].Event)
}

func TestSetBusySkipsGeocode(t *testing.T) {
	store := &fakeLocationStore{record: &models.LocationRecord{Latitude: 1, Longitude: 2, UpdatedAt: time.Now()}}
	geo := &fakeGeocoder{address: "should not be used"}
	svc := newLocationService(store, NewTrackingState(), geo, &fakeBroadcaster{})

	_, err := svc.SetBusy(context.Background(), true)

	require.NoError(t, err)
	assert.Zero(t, geo.calls)
}

func TestSetBusyWithoutRecordStillSucceeds(t *testing.T) {
	store := &fakeLocationStore{}
	b := &fakeBroadcaster{}
	svc := newLocationService(store, NewTrackingState(), &fakeGeocoder{}, b)

	_, err := svc.SetBusy(context.Background(), true)

	require.NoError(t, err)
	assert.Empty(t, b.recorded(), "nothing to broadcast without a stored record")
}

func TestBroadcastCurrentNotFound(t *testing.T) {
	svc := newLocationService(&fakeLocationStore{}, NewTrackingState(), &fakeGeocoder{}, &fakeBroadcaster{})

	_, err := svc.BroadcastCurrent(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDetailFallsBackWhenGeocodeFails(t *testing.T) {
	store := &fakeLocationStore{record: &models.LocationRecord{Latitude: 1, Longitude: 2, UpdatedAt: time.Now()}}
	svc := newLocationService(store, NewTrackingState(), &fakeGeocoder{err: errors.New("down")}, &fakeBroadcaster{})

	rec, _, err := svc.Detail(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, rec.AddressText)
	assert.Equal(t, "Address not available", *rec.AddressText)
}

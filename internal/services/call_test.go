package services

import (
	"context"
	"testing"
	"time"

	"ambulance-tracker-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCallStore struct {
	calls   []models.CallRecord
	nextID  int
	deleted []int
}

func (f *fakeCallStore) Insert(ctx context.Context, userID int) (*models.CallRecord, error) {
	f.nextID++
	call := models.CallRecord{ID: f.nextID, UserID: userID, UserName: "Warga", CalledAt: time.Now()}
	f.calls = append(f.calls, call)
	return &call, nil
}

func (f *fakeCallStore) List(ctx context.Context) ([]models.CallRecord, error) {
	return f.calls, nil
}

func (f *fakeCallStore) Delete(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCallStore) Clear(ctx context.Context) (int64, error) {
	n := int64(len(f.calls))
	f.calls = nil
	return n, nil
}

func TestRecordCallBroadcastsGlobally(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewCallService(&fakeCallStore{}, b)

	call, err := svc.Record(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 5, call.UserID)

	pushes := b.recorded()
	require.Len(t, pushes, 1)
	assert.True(t, pushes[0].Global)
	assert.Equal(t, EventNewCall, pushes[0].Event)
}

func TestDeleteCallBroadcastsID(t *testing.T) {
	store := &fakeCallStore{}
	b := &fakeBroadcaster{}
	svc := NewCallService(store, b)

	require.NoError(t, svc.Delete(context.Background(), 3))

	assert.Equal(t, []int{3}, store.deleted)
	pushes := b.recorded()
	require.Len(t, pushes, 1)
	assert.Equal(t, EventCallDeleted, pushes[0].Event)
	assert.Equal(t, map[string]int{"id": 3}, pushes[0].Payload)
}

func TestClearCallsReportsCount(t *testing.T) {
	store := &fakeCallStore{}
	b := &fakeBroadcaster{}
	svc := NewCallService(store, b)

	_, err := svc.Record(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), 2)
	require.NoError(t, err)

	cleared, err := svc.Clear(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
	assert.Empty(t, store.calls)

	pushes := b.recorded()
	require.Len(t, pushes, 3)
	assert.Equal(t, EventAllCallsCleared, pushes[2].Event)
}

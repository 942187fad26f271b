package services

import (
	"context"
	"sync"
	"time"

	"ambulance-tracker-backend/internal/models"
	"ambulance-tracker-backend/internal/repository"
)

// recordedPush is one captured broadcast or targeted delivery.
type recordedPush struct {
	Global  bool
	Address string
	Event   string
	Payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	pushes []recordedPush
}

func (f *fakeBroadcaster) BroadcastGlobal(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, recordedPush{Global: true, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) DeliverToAddress(address, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, recordedPush{Address: address, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) recorded() []recordedPush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedPush(nil), f.pushes...)
}

type fakeLocationStore struct {
	record     *models.LocationRecord
	upserts    int
	setAddress []string
	setBusy    []bool
	upsertBusy []*bool
	upsertErr  error
	setAddrErr error
}

func (f *fakeLocationStore) Get(ctx context.Context) (*models.LocationRecord, error) {
	if f.record == nil {
		return nil, repository.ErrNotFound
	}
	rec := *f.record
	return &rec, nil
}

func (f *fakeLocationStore) GetByID(ctx context.Context, id int) (*models.LocationRecord, error) {
	return f.Get(ctx)
}

func (f *fakeLocationStore) Upsert(ctx context.Context, latitude, longitude float64, isBusy *bool) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.upsertBusy = append(f.upsertBusy, isBusy)
	busy := false
	if f.record != nil {
		busy = f.record.IsBusy
	}
	if isBusy != nil {
		busy = *isBusy
	}
	var addr *string
	if f.record != nil {
		addr = f.record.AddressText
	}
	f.record = &models.LocationRecord{
		Latitude:    latitude,
		Longitude:   longitude,
		AddressText: addr,
		IsBusy:      busy,
		UpdatedAt:   time.Now(),
	}
	return nil
}

func (f *fakeLocationStore) SetAddress(ctx context.Context, address string) error {
	if f.setAddrErr != nil {
		return f.setAddrErr
	}
	f.setAddress = append(f.setAddress, address)
	if f.record != nil {
		f.record.AddressText = &address
	}
	return nil
}

func (f *fakeLocationStore) SetBusy(ctx context.Context, isBusy bool) error {
	f.setBusy = append(f.setBusy, isBusy)
	if f.record != nil {
		f.record.IsBusy = isBusy
		f.record.UpdatedAt = time.Now()
	}
	return nil
}

type fakeGeocoder struct {
	address string
	err     error
	calls   int
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.address, nil
}

type fakeMessageStore struct {
	messages []models.ConversationMessage
	nextID   int
	deleted  []int
	cleared  [][2]int
}

func (f *fakeMessageStore) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	f.nextID++
	stored := *msg
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.messages = append(f.messages, models.ConversationMessage{Message: stored})
	return &stored, nil
}

func (f *fakeMessageStore) GetByID(ctx context.Context, id int) (*models.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			msg := m.Message
			return &msg, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMessageStore) ListInvolving(ctx context.Context, userID int) ([]models.ConversationMessage, error) {
	var out []models.ConversationMessage
	for _, m := range f.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			cm := m
			if m.SenderID == userID {
				cm.PartnerID = m.ReceiverID
			} else {
				cm.PartnerID = m.SenderID
			}
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) ListBetween(ctx context.Context, userID, targetID int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if (m.SenderID == userID && m.ReceiverID == targetID) ||
			(m.SenderID == targetID && m.ReceiverID == userID) {
			out = append(out, m.Message)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) Delete(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMessageStore) DeleteBetween(ctx context.Context, userID, targetID int) (int64, error) {
	f.cleared = append(f.cleared, [2]int{userID, targetID})
	var deleted int64
	kept := f.messages[:0]
	for _, m := range f.messages {
		if (m.SenderID == userID && m.ReceiverID == targetID) ||
			(m.SenderID == targetID && m.ReceiverID == userID) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return deleted, nil
}

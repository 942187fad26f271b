package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ambulance-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatHandler(store *fakeMessageStore, b *fakeBroadcaster) *ChatHandler {
	return NewChatHandler(services.NewChatService(store, b))
}

// withURLParams injects chi route variables so handlers can be exercised
// without a full router.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestConversationsInvalidUserID(t *testing.T) {
	h := newChatHandler(&fakeMessageStore{}, &fakeBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversation/abc", nil)
	req = withURLParams(req, map[string]string{"userID": "abc"})
	rr := httptest.NewRecorder()
	h.Conversations(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistoryInvalidIDs(t *testing.T) {
	h := newChatHandler(&fakeMessageStore{}, &fakeBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/5/xyz", nil)
	req = withURLParams(req, map[string]string{"userID": "5", "targetID": "xyz"})
	rr := httptest.NewRecorder()
	h.History(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendMissingParticipants(t *testing.T) {
	store := &fakeMessageStore{}
	h := newChatHandler(store, &fakeBroadcaster{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"content": "help"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, store.messages)
}

func TestSendEmptyContentRejected(t *testing.T) {
	h := newChatHandler(&fakeMessageStore{}, &fakeBroadcaster{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"senderId": 5, "receiverId": 9, "content": "   "}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendEmoticonOnlySucceeds(t *testing.T) {
	store := &fakeMessageStore{}
	b := &fakeBroadcaster{}
	h := newChatHandler(store, b)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"senderId": 5, "receiverId": 9, "emoticonCode": ":siren:"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, store.messages, 1)

	pushes := b.recorded()
	require.Len(t, pushes, 2)
	assert.ElementsMatch(t, []string{"5", "9"}, []string{pushes[0].Address, pushes[1].Address})
}

func TestClearInvalidIDs(t *testing.T) {
	h := newChatHandler(&fakeMessageStore{}, &fakeBroadcaster{})

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/clear/a/b", nil)
	req = withURLParams(req, map[string]string{"userID": "a", "targetID": "b"})
	rr := httptest.NewRecorder()
	h.Clear(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

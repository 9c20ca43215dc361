package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidycall/cleaning-voice-agent/internal/dialogue"
)

type stubPricing struct{}

func (stubPricing) Price(context.Context, string, dialogue.QuoteDraft) (dialogue.PriceQuote, error) {
	return dialogue.PriceQuote{Message: "That comes to 95 pounds.", Currency: "GBP"}, nil
}

type stubBooking struct{}

func (stubBooking) Book(context.Context, string, dialogue.QuoteDraft, dialogue.BookingDraft) error {
	return nil
}

func newTestHandler(t *testing.T) (*TelephonyHandler, dialogue.SessionStore) {
	t.Helper()
	store := dialogue.NewMemoryStore()
	engine := dialogue.NewEngine(dialogue.EngineConfig{
		Actions: dialogue.NewCoordinator(stubPricing{}, stubBooking{}, nil, nil),
	})
	return NewTelephonyHandler(engine, store, nil, nil), store
}

func postTurn(t *testing.T, h *TelephonyHandler, req TurnRequest) (TurnResponse, int) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.HandleTurn(w, httptest.NewRequest(http.MethodPost, "/webhooks/telephony/turn", bytes.NewReader(body)))
	var resp TurnResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return resp, w.Code
}

func TestHandleTurnGreetsNewCall(t *testing.T) {
	h, store := newTestHandler(t)

	resp, code := postTurn(t, h, TurnRequest{CallID: "call-1"})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Listen)
	assert.Contains(t, resp.Reply, "cleaning quote")

	session, err := store.Get(context.Background(), "call-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, dialogue.StageCategory, session.Stage)
}

func TestHandleTurnAdvancesExistingCall(t *testing.T) {
	h, store := newTestHandler(t)

	_, code := postTurn(t, h, TurnRequest{CallID: "call-2"})
	require.Equal(t, http.StatusOK, code)

	resp, code := postTurn(t, h, TurnRequest{CallID: "call-2", Utterance: "it's for my house"})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Listen)

	session, err := store.Get(context.Background(), "call-2")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, dialogue.CategoryDomestic, session.Quote.ServiceCategory)
}

func TestHandleTurnRequiresCallID(t *testing.T) {
	h, _ := newTestHandler(t)

	_, code := postTurn(t, h, TurnRequest{Utterance: "hello"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandleEndDropsSession(t *testing.T) {
	h, store := newTestHandler(t)

	_, code := postTurn(t, h, TurnRequest{CallID: "call-3"})
	require.Equal(t, http.StatusOK, code)

	body, _ := json.Marshal(EndRequest{CallID: "call-3"})
	w := httptest.NewRecorder()
	h.HandleEnd(w, httptest.NewRequest(http.MethodPost, "/webhooks/telephony/end", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)

	session, err := store.Get(context.Background(), "call-3")
	require.NoError(t, err)
	assert.Nil(t, session)
}

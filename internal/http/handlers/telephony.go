package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/tidycall/cleaning-voice-agent/internal/dialogue"
	"github.com/tidycall/cleaning-voice-agent/internal/observability/metrics"
	"github.com/tidycall/cleaning-voice-agent/pkg/logging"
)

// TurnRequest is one transcribed caller utterance from the telephony
// provider. Utterance may be empty on a silence timeout.
type TurnRequest struct {
	CallID    string `json:"call_id"`
	Utterance string `json:"utterance"`
}

// TurnResponse carries the reply to speak. Listen is false once the call has
// reached a terminal stage and the provider should hang up after speaking.
type TurnResponse struct {
	CallID string `json:"call_id"`
	Reply  string `json:"reply"`
	Listen bool   `json:"listen"`
}

// EndRequest signals the provider-side end of a call.
type EndRequest struct {
	CallID string `json:"call_id"`
}

// TelephonyHandler receives turn webhooks from the voice provider and drives
// the dialogue engine. Turns for the same call are serialized with a
// per-call mutex so a fast caller cannot race two utterances through the
// stage machine.
type TelephonyHandler struct {
	engine  *dialogue.Engine
	store   dialogue.SessionStore
	metrics *metrics.DialogueMetrics
	logger  *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTelephonyHandler creates the webhook handler.
func NewTelephonyHandler(engine *dialogue.Engine, store dialogue.SessionStore, m *metrics.DialogueMetrics, logger *logging.Logger) *TelephonyHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TelephonyHandler{
		engine:  engine,
		store:   store,
		metrics: m,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (h *TelephonyHandler) callLock(callID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.locks[callID]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[callID] = lock
	}
	return lock
}

func (h *TelephonyHandler) releaseLock(callID string) {
	h.mu.Lock()
	delete(h.locks, callID)
	h.mu.Unlock()
}

// HandleTurn processes POST /webhooks/telephony/turn.
func (h *TelephonyHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CallID == "" {
		writeJSONError(w, http.StatusBadRequest, "call_id is required")
		return
	}

	lock := h.callLock(req.CallID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	session, err := h.store.Get(r.Context(), req.CallID)
	if err != nil {
		h.logger.Error("session load failed", "call_id", req.CallID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var reply string
	done := false
	if session == nil {
		session = dialogue.NewCallSession(req.CallID)
		reply = h.engine.Greeting(session)
		h.logger.Info("call started", "call_id", req.CallID)
	} else {
		reply, done = h.engine.ProcessTurn(r.Context(), session, req.Utterance)
	}
	h.metrics.ObserveTurnLatency(time.Since(start).Seconds())

	if done {
		if err := h.store.Delete(r.Context(), req.CallID); err != nil {
			h.logger.Warn("session cleanup failed", "call_id", req.CallID, "error", err)
		}
		h.releaseLock(req.CallID)
	} else if err := h.store.Put(r.Context(), session); err != nil {
		h.logger.Error("session save failed", "call_id", req.CallID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	writeJSON(w, http.StatusOK, TurnResponse{CallID: req.CallID, Reply: reply, Listen: !done})
}

// HandleEnd processes POST /webhooks/telephony/end, dropping session state
// for a call the provider reports as finished.
func (h *TelephonyHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	var req EndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CallID == "" {
		writeJSONError(w, http.StatusBadRequest, "call_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Delete(ctx, req.CallID); err != nil {
		h.logger.Warn("session cleanup failed", "call_id", req.CallID, "error", err)
	}
	h.releaseLock(req.CallID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

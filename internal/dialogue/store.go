package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists call sessions between turns. The engine has no
// hidden global state: swapping the in-memory map for Redis (or anything
// else) never touches dialogue logic.
type SessionStore interface {
	Get(ctx context.Context, callID string) (*CallSession, error)
	Put(ctx context.Context, session *CallSession) error
	Delete(ctx context.Context, callID string) error
}

// MemoryStore keeps sessions in-process. Suitable for a single instance and
// for tests; concurrent access for different call ids needs no cross-key
// coordination beyond the map itself.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*CallSession
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*CallSession)}
}

// Get returns the session for a call id, or nil if none exists.
func (m *MemoryStore) Get(_ context.Context, callID string) (*CallSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[callID], nil
}

// Put stores or replaces a session.
func (m *MemoryStore) Put(_ context.Context, session *CallSession) error {
	if session == nil || session.CallID == "" {
		return fmt.Errorf("dialogue: session call_id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.CallID] = session
	return nil
}

// Delete removes a session; deleting a missing session is not an error.
func (m *MemoryStore) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, callID)
	return nil
}

const (
	sessionKeyPrefix  = "call:session:"
	defaultSessionTTL = 4 * time.Hour
)

// RedisStore persists sessions in Redis with a TTL, letting multiple API
// instances serve turns for the same call.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed session store. A zero ttl uses the
// default of four hours, comfortably longer than any phone call.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

// Get returns the session for a call id, or nil if none exists.
func (s *RedisStore) Get(ctx context.Context, callID string) (*CallSession, error) {
	data, err := s.rdb.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dialogue: session get: %w", err)
	}
	var session CallSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("dialogue: session unmarshal: %w", err)
	}
	return &session, nil
}

// Put stores or replaces a session, refreshing its TTL.
func (s *RedisStore) Put(ctx context.Context, session *CallSession) error {
	if session == nil || session.CallID == "" {
		return fmt.Errorf("dialogue: session call_id required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("dialogue: session marshal: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(session.CallID), data, s.ttl).Err()
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, callID string) error {
	return s.rdb.Del(ctx, sessionKey(callID)).Err()
}

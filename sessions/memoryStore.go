package sessions

import (
	"context"
	"sync"
	"time"
)

// DefaultPruneInterval matches the daily sweep of expired sessions.
const DefaultPruneInterval = 24 * time.Hour

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, userID uint, ttl time.Duration) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := Session{ID: id, UserID: userID, Expires: s.now().Add(ttl)}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return &session, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || session.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Prune removes expired sessions and reports how many were dropped.
func (s *MemoryStore) Prune() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartPruning runs Prune every interval until ctx is done.
func (s *MemoryStore) StartPruning(ctx context.Context, interval time.Duration) {
	go runPruner(ctx, interval, func(context.Context) (int64, error) {
		return int64(s.Prune()), nil
	})
}

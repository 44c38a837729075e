// Package session keeps the per-visitor state of the web front: the send
// view and the receive view. State lives in memory only and is dropped once
// a visitor has been idle longer than the store TTL.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"sharebox-go/internal/selection"
	"sharebox-go/internal/share"
)

type Session struct {
	ID      uuid.UUID
	Send    *Send
	Receive *Receive

	lastSeen time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	client   *share.Client
	limits   selection.Limits
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(client *share.Client, limits selection.Limits, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		client:   client,
		limits:   limits,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id and marks it as seen. Unknown or malformed
// ids report false.
func (s *Store) Get(id string) (*Session, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[uid]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// Create starts a fresh session with a random id.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:      uuid.New(),
		Send:    NewSend(s.client, s.limits),
		Receive: NewReceive(s.client),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	return sess
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created tells the caller to hand out the new id.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Send.close()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Send.close()
	}
	return len(expired)
}

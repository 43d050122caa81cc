// Package session holds the durable login-session table.
//
// Sessions never expire on their own: a record stays valid until an explicit
// logout destroys it. Every mutation writes the whole table through to disk,
// which is fine at the expected size (tens of entries).
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/railwatch/railwatch/internal/store"
)

// Session is one authenticated login.
type Session struct {
	ID             string    `json:"id"`
	Password       string    `json:"password"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// Store is the session table. Construct one at startup and pass it around;
// it guards the map with a mutex since handlers run on real goroutines.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	file     *store.File
	now      func() time.Time
}

// NewStore loads the persisted table from file. Persisted records merge into
// the in-memory map without overwriting anything already present.
func NewStore(file *store.File) (*Store, error) {
	s := &Store{
		sessions: make(map[string]Session),
		file:     file,
		now:      time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var persisted map[string]Session
	found, err := s.file.Load(&persisted)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range persisted {
		if _, ok := s.sessions[id]; !ok {
			s.sessions[id] = sess
		}
	}
	return nil
}

// Create inserts a new session and returns its identifier. If persisting
// fails the record is rolled back so no dangling id escapes.
func (s *Store) Create(password string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[id] = Session{
		ID:             id,
		Password:       password,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.saveLocked(); err != nil {
		delete(s.sessions, id)
		return "", err
	}
	return id, nil
}

// Get looks up a session and refreshes its lastAccessedAt. A miss returns
// false, never an error. A failed persist of the timestamp refresh is logged
// but does not invalidate the hit.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.LastAccessedAt = s.now()
	s.sessions[id] = sess
	if err := s.saveLocked(); err != nil {
		log.Warn().Err(err).Msg("session: persisting access timestamp failed")
	}
	return sess, true
}

// Destroy removes a session, reporting whether one existed.
func (s *Store) Destroy(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false, nil
	}
	delete(s.sessions, id)
	if err := s.saveLocked(); err != nil {
		return true, err
	}
	return true, nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) saveLocked() error {
	if err := s.file.Save(s.sessions); err != nil {
		return fmt.Errorf("persisting sessions: %w", err)
	}
	return nil
}

// newSessionID returns 256 bits of hex-encoded randomness.
func newSessionID() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

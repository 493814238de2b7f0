package cart

import (
	"sync"
	"time"
)

const (
	// SessionTTL is how long an untouched session cart survives.
	SessionTTL = 2 * time.Hour

	// CleanupInterval is how often idle sessions are swept.
	CleanupInterval = time.Minute
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions keeps one Store per browsing session in memory and drops
// sessions that have been idle longer than the TTL.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewSessions(ttl time.Duration) *Sessions {
	return newSessions(ttl, CleanupInterval)
}

func newSessions(ttl, interval time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	s := &Sessions{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(interval)

	return s
}

// Get returns the cart for id, creating an empty one on first use.
func (s *Sessions) Get(id string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{store: NewStore()}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess.store
}

// Lookup returns the cart for id without creating one.
func (s *Sessions) Lookup(id string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.store, true
}

func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Sessions) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// Close stops the background cleanup and waits for it to finish.
func (s *Sessions) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}

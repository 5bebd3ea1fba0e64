// Package session holds the explicit per-checkout-session state: the
// duplicate-submission guard and the set of orders a staff session already
// viewed. All of it is in-memory and bounded; nothing here substitutes for
// server-side idempotency, and nothing protects across devices or sessions.
package session

import (
	"sync"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

const (
	// duplicateWindow is the trailing window inside which an equal
	// fingerprint is flagged as a duplicate. The boundary is strict:
	// exactly duplicateWindow apart is no longer a duplicate. The
	// single-success latch expires on the same window, so a session keyed
	// by a shared address cannot stay blocked past it.
	duplicateWindow = 5 * time.Minute

	// recentCapacity bounds the per-session submission ring buffer.
	recentCapacity = 10

	// viewedCapacity bounds the per-session viewed-order set.
	viewedCapacity = 200
)

type submission struct {
	fingerprint string
	at          time.Time
}

// Session is one client session's ambient state.
type Session struct {
	mu          sync.Mutex
	recent      []submission
	submitted   bool
	submittedAt time.Time
	viewed      map[string]struct{}
	viewOrder   []string
	lastSeen    time.Time
}

func newSession(now time.Time) *Session {
	return &Session{
		viewed:   make(map[string]struct{}),
		lastSeen: now,
	}
}

// IsDuplicate reports whether the draft should be rejected: either this
// checkout already submitted successfully inside the trailing window, or an
// equal fingerprint was recorded strictly less than five minutes ago.
func (s *Session) IsDuplicate(now time.Time, draft domain.OrderDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		if now.Sub(s.submittedAt) < duplicateWindow {
			return true
		}
		// The checkout that latched this session is over; only recorded
		// fingerprints keep protecting from here.
		s.submitted = false
	}

	fp := Fingerprint(draft)
	for _, sub := range s.recent {
		if sub.fingerprint == fp && now.Sub(sub.at) < duplicateWindow {
			return true
		}
	}
	return false
}

// Record appends the draft's fingerprint to the bounded ring buffer.
func (s *Session) Record(now time.Time, draft domain.OrderDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, submission{fingerprint: Fingerprint(draft), at: now})
	if len(s.recent) > recentCapacity {
		s.recent = s.recent[len(s.recent)-recentCapacity:]
	}
}

// MarkSubmitted latches the single-success flag for this checkout instance.
// The latch expires with the duplicate window or on ResetCheckout, whichever
// comes first.
func (s *Session) MarkSubmitted(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = true
	s.submittedAt = now
}

// ResetCheckout clears the single-success latch when the client starts a
// fresh checkout. Recorded fingerprints keep protecting the window.
func (s *Session) ResetCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = false
}

// MarkViewed remembers that this session saw an order; the set is bounded
// and evicts oldest-first.
func (s *Session) MarkViewed(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.viewed[orderID]; ok {
		return
	}
	s.viewed[orderID] = struct{}{}
	s.viewOrder = append(s.viewOrder, orderID)
	if len(s.viewOrder) > viewedCapacity {
		delete(s.viewed, s.viewOrder[0])
		s.viewOrder = s.viewOrder[1:]
	}
}

func (s *Session) HasViewed(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.viewed[orderID]
	return ok
}

// Manager hands out sessions by client-supplied id, bounded by evicting the
// least recently seen session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
}

func NewManager(max int) *Manager {
	if max <= 0 {
		max = 1000
	}
	return &Manager{
		sessions: make(map[string]*Session),
		max:      max,
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string, now time.Time) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.mu.Lock()
		s.lastSeen = now
		s.mu.Unlock()
		return s
	}

	if len(m.sessions) >= m.max {
		m.evictOldest()
	}

	s := newSession(now)
	m.sessions[id] = s
	return s
}

func (m *Manager) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		s.mu.Lock()
		seen := s.lastSeen
		s.mu.Unlock()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

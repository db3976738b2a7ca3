// internal/dating/sessions.go
// Swipe sessions and bot heuristics. A session groups consecutive swipes
// separated by less than the idle timeout; its swipe rate is the velocity
// signal for trust & safety.

package dating

import (
	"sync"
	"time"
)

type swipeSession struct {
	startedAt  time.Time
	lastSwipe  time.Time
	swipeCount int
	suspicious bool
}

type SessionTracker struct {
	mu       sync.Mutex
	sessions map[string]*swipeSession

	timeout     time.Duration
	maxSwipes   int
	velocityCap float64 // swipes per minute
}

func NewSessionTracker(timeout time.Duration, maxSwipes int, velocityCap float64) *SessionTracker {
	return &SessionTracker{
		sessions:    make(map[string]*swipeSession),
		timeout:     timeout,
		maxSwipes:   maxSwipes,
		velocityCap: velocityCap,
	}
}

// RecordSwipe notes one swipe and reports whether the session now looks
// suspicious (over the velocity cap or past the per-session swipe limit).
func (t *SessionTracker) RecordSwipe(userID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[userID]
	if !ok || now.Sub(session.lastSwipe) > t.timeout {
		session = &swipeSession{startedAt: now}
		t.sessions[userID] = session
	}

	session.lastSwipe = now
	session.swipeCount++

	if session.swipeCount > t.maxSwipes {
		session.suspicious = true
	}

	// Velocity only means something once a few swipes have accumulated
	if session.swipeCount >= 10 {
		elapsed := now.Sub(session.startedAt).Minutes()
		if elapsed > 0 && float64(session.swipeCount)/elapsed > t.velocityCap {
			session.suspicious = true
		}
	}

	return session.suspicious
}

// IsSuspicious reports the current flag for a user's active session
func (t *SessionTracker) IsSuspicious(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[userID]
	return ok && session.suspicious
}

// Sweep drops sessions idle past the timeout and returns how many were
// removed. Run from the scheduler.
func (t *SessionTracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for userID, session := range t.sessions {
		if now.Sub(session.lastSwipe) > t.timeout {
			delete(t.sessions, userID)
			removed++
		}
	}
	return removed
}

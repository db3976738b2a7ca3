// internal/dating/stripes.go
// Per-user mutual exclusion via a fixed array of lock stripes. Two
// requests for the same user always hash to the same stripe, so the
// check-then-act sequences in swiping and reporting serialize without a
// lock per user.

package dating

import (
	"hash/fnv"
	"sync"
)

const stripeCount = 256

// StripedLocks guards per-user critical sections
type StripedLocks struct {
	stripes [stripeCount]sync.Mutex
}

func NewStripedLocks() *StripedLocks {
	return &StripedLocks{}
}

func (l *StripedLocks) stripeFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &l.stripes[h.Sum32()%stripeCount]
}

// Lock acquires the stripe for a user
func (l *StripedLocks) Lock(userID string) {
	l.stripeFor(userID).Lock()
}

// Unlock releases the stripe for a user
func (l *StripedLocks) Unlock(userID string) {
	l.stripeFor(userID).Unlock()
}

// Do runs fn while holding the user's stripe
func (l *StripedLocks) Do(userID string, fn func() error) error {
	m := l.stripeFor(userID)
	m.Lock()
	defer m.Unlock()
	return fn()
}

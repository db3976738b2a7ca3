// internal/profile/memory.go
// In-memory Repository used by tests and local development

package profile

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository creates an in-memory Repository
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]*User)}
}

func (r *memoryRepository) GetUser(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []*User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (r *memoryRepository) UpsertUser(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Status == "" {
		user.Status = StatusActive
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryRepository) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Preferences = prefs
	return nil
}

func (r *memoryRepository) UpdateDealbreakers(ctx context.Context, userID string, db Dealbreakers) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Dealbreakers = db
	return nil
}

func (r *memoryRepository) UpdateLastActive(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		user.LastActiveAt = &at
	}
	return nil
}

func (r *memoryRepository) SetStatus(ctx context.Context, userID string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Status = status
	return nil
}

func (r *memoryRepository) FindCandidatePool(ctx context.Context, viewer *User, limit int) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pool := []*User{}
	for _, user := range r.users {
		if user.ID == viewer.ID || !user.Active() {
			continue
		}
		if !viewer.Preferences.WantsGender(user.Gender) {
			continue
		}
		copied := *user
		pool = append(pool, &copied)
	}

	sortByLastActive(pool)
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func (r *memoryRepository) GetRecentlyActive(ctx context.Context, since time.Time, limit int) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := []*User{}
	for _, user := range r.users {
		if !user.Active() || user.LastActiveAt == nil || user.LastActiveAt.Before(since) {
			continue
		}
		copied := *user
		active = append(active, &copied)
	}

	sortByLastActive(active)
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func sortByLastActive(users []*User) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i].LastActiveAt, users[j].LastActiveAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

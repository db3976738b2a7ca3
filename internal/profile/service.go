// internal/profile/service.go

package profile

import (
	"context"
	"time"
)

// Service exposes profile operations to handlers and the matching engine
type Service interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
	UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error
	UpdateDealbreakers(ctx context.Context, userID string, db Dealbreakers) error
	Touch(ctx context.Context, userID string) error
}

type service struct {
	repo Repository
}

// NewService creates a profile service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *service) GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error) {
	return s.repo.GetUsersByIDs(ctx, ids)
}

func (s *service) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error {
	if prefs.MinAge > 0 && prefs.MaxAge > 0 && prefs.MinAge > prefs.MaxAge {
		prefs.MinAge, prefs.MaxAge = prefs.MaxAge, prefs.MinAge
	}
	return s.repo.UpdatePreferences(ctx, userID, prefs)
}

func (s *service) UpdateDealbreakers(ctx context.Context, userID string, db Dealbreakers) error {
	if db.MinHeightCm > 0 && db.MaxHeightCm > 0 && db.MinHeightCm > db.MaxHeightCm {
		db.MinHeightCm, db.MaxHeightCm = db.MaxHeightCm, db.MinHeightCm
	}
	return s.repo.UpdateDealbreakers(ctx, userID, db)
}

// Touch marks the user as active right now
func (s *service) Touch(ctx context.Context, userID string) error {
	return s.repo.UpdateLastActive(ctx, userID, time.Now())
}

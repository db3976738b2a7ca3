// internal/dating/candidates.go
// Candidate discovery: a fixed filter pipeline over a pre-fetched pool,
// followed by a distance sort. Every filter must pass; order matters only
// for cost, not semantics.

package dating

import (
	"context"
	"sort"

	"github.com/TomShtern/Date-Program-sub007/internal/geo"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

// Candidate is a pool member that survived every filter
type Candidate struct {
	User       *profile.User `json:"user"`
	DistanceKm *float64      `json:"distance_km,omitempty"`
}

type CandidateFinder struct {
	users     profile.Repository
	repo      Repository
	poolLimit int
}

func NewCandidateFinder(users profile.Repository, repo Repository, poolLimit int) *CandidateFinder {
	return &CandidateFinder{users: users, repo: repo, poolLimit: poolLimit}
}

// FindCandidates runs the full pipeline for a viewer. It always returns a
// non-nil slice, sorted by distance with unknown distances last.
func (f *CandidateFinder) FindCandidates(ctx context.Context, viewer *profile.User) ([]*Candidate, error) {
	pool, err := f.users.FindCandidatePool(ctx, viewer, f.poolLimit)
	if err != nil {
		return nil, err
	}

	swiped, err := f.repo.GetSwipedTargets(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	matched, err := f.repo.GetMatchedUserIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	blocked, err := f.repo.GetBlockedUserIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	candidates := f.filterPool(viewer, pool, swiped, matched, blocked)
	sortByDistance(candidates)
	return candidates, nil
}

func (f *CandidateFinder) filterPool(viewer *profile.User, pool []*profile.User, swiped, matched, blocked map[string]bool) []*Candidate {
	candidates := []*Candidate{}

	for _, user := range pool {
		if user.ID == viewer.ID || !user.Active() {
			continue
		}
		if swiped[user.ID] || matched[user.ID] || blocked[user.ID] {
			continue
		}
		if !mutualGenderInterest(viewer, user) {
			continue
		}
		if !withinAgeWindow(viewer, user) || !withinAgeWindow(user, viewer) {
			continue
		}

		distance, known := geo.DistanceBetween(viewer.Location, user.Location)
		if known && viewer.Preferences.MaxDistanceKm > 0 && distance > viewer.Preferences.MaxDistanceKm {
			continue
		}

		if viewer.Dealbreakers.Engaged() && !viewer.Dealbreakers.Accepts(viewer, user) {
			continue
		}

		candidate := &Candidate{User: user}
		if known {
			d := distance
			candidate.DistanceKm = &d
		}
		candidates = append(candidates, candidate)
	}

	return candidates
}

// mutualGenderInterest checks the preference in both directions. Missing
// gender or interest data on either side fails the check.
func mutualGenderInterest(a, b *profile.User) bool {
	return a.Preferences.WantsGender(b.Gender) && b.Preferences.WantsGender(a.Gender)
}

// withinAgeWindow checks whether other's age sits inside owner's window.
// A missing age always fails; an unset bound is disengaged.
func withinAgeWindow(owner, other *profile.User) bool {
	if other.Age == 0 {
		return false
	}
	prefs := owner.Preferences
	if prefs.MinAge > 0 && other.Age < prefs.MinAge {
		return false
	}
	if prefs.MaxAge > 0 && other.Age > prefs.MaxAge {
		return false
	}
	return true
}

// sortByDistance orders known distances ascending and keeps candidates
// with unknown distance at the end, in their incoming order.
func sortByDistance(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].DistanceKm, candidates[j].DistanceKm
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}

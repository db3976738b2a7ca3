// internal/dating/memory.go
// In-memory Repository used by tests and local development. Mirrors the
// insert-if-absent semantics of the postgres implementation.

package dating

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu sync.Mutex

	nextSwipeID int64
	swipes      []*Swipe
	swipeIndex  map[string]*Swipe // swiperID|targetID

	matches map[string]*Match

	blocks map[string]bool // blockerID|blockedID

	nextReportID int64
	reports      []*Report

	nextBatchID int64
	batches     map[string]*StandoutBatch // viewerID|day
}

// NewMemoryRepository creates an in-memory Repository
func NewMemoryRepository() Repository {
	return &memoryRepository{
		swipeIndex: make(map[string]*Swipe),
		matches:    make(map[string]*Match),
		blocks:     make(map[string]bool),
		batches:    make(map[string]*StandoutBatch),
	}
}

func pairKey(a, b string) string { return a + "|" + b }

func (r *memoryRepository) InsertSwipeIfAbsent(ctx context.Context, swipe *Swipe) (bool, *Swipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(swipe.SwiperID, swipe.TargetID)
	if existing, ok := r.swipeIndex[key]; ok {
		copied := *existing
		return false, &copied, nil
	}

	r.nextSwipeID++
	swipe.ID = r.nextSwipeID
	swipe.CreatedAt = time.Now()

	stored := *swipe
	r.swipes = append(r.swipes, &stored)
	r.swipeIndex[key] = &stored
	return true, swipe, nil
}

func (r *memoryRepository) GetSwipe(ctx context.Context, swiperID, targetID string) (*Swipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	swipe, ok := r.swipeIndex[pairKey(swiperID, targetID)]
	if !ok {
		return nil, ErrSwipeNotFound
	}
	copied := *swipe
	return &copied, nil
}

func (r *memoryRepository) GetSwipedTargets(ctx context.Context, swiperID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets := map[string]bool{}
	for _, swipe := range r.swipes {
		if swipe.SwiperID == swiperID {
			targets[swipe.TargetID] = true
		}
	}
	return targets, nil
}

func (r *memoryRepository) GetLastSwipe(ctx context.Context, swiperID string) (*Swipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.swipes) - 1; i >= 0; i-- {
		if r.swipes[i].SwiperID == swiperID {
			copied := *r.swipes[i]
			return &copied, nil
		}
	}
	return nil, ErrSwipeNotFound
}

func (r *memoryRepository) DeleteSwipe(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, swipe := range r.swipes {
		if swipe.ID == id {
			delete(r.swipeIndex, pairKey(swipe.SwiperID, swipe.TargetID))
			r.swipes = append(r.swipes[:i], r.swipes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepository) CountLikesSince(ctx context.Context, swiperID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, swipe := range r.swipes {
		if swipe.SwiperID == swiperID && swipe.Direction == DirectionLike && !swipe.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, *Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match.User1ID, match.User2ID = CanonicalPair(match.User1ID, match.User2ID)
	match.ID = CanonicalMatchID(match.User1ID, match.User2ID)

	if existing, ok := r.matches[match.ID]; ok {
		copied := *existing
		return false, &copied, nil
	}

	match.MatchedAt = time.Now()
	stored := *match
	r.matches[match.ID] = &stored
	return true, match, nil
}

func (r *memoryRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *memoryRepository) GetUserMatches(ctx context.Context, userID string, state *State) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := []*Match{}
	for _, match := range r.matches {
		if !match.Involves(userID) {
			continue
		}
		if state != nil && match.State != *state {
			continue
		}
		copied := *match
		matches = append(matches, &copied)
	}
	return matches, nil
}

func (r *memoryRepository) UpdateMatchState(ctx context.Context, match *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.matches[match.ID]
	if !ok {
		return ErrMatchNotFound
	}
	stored.State = match.State
	stored.EndedAt = match.EndedAt
	stored.EndedBy = match.EndedBy
	return nil
}

func (r *memoryRepository) GetMatchedUserIDs(ctx context.Context, userID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := map[string]bool{}
	for _, match := range r.matches {
		if match.Involves(userID) {
			ids[match.OtherUser(userID)] = true
		}
	}
	return ids, nil
}

func (r *memoryRepository) InsertBlock(ctx context.Context, blockerID, blockedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blocks[pairKey(blockerID, blockedID)] = true
	return nil
}

func (r *memoryRepository) GetBlockedUserIDs(ctx context.Context, userID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := map[string]bool{}
	for key := range r.blocks {
		var blocker, blocked string
		for i := 0; i < len(key); i++ {
			if key[i] == '|' {
				blocker, blocked = key[:i], key[i+1:]
				break
			}
		}
		if blocker == userID {
			ids[blocked] = true
		} else if blocked == userID {
			ids[blocker] = true
		}
	}
	return ids, nil
}

func (r *memoryRepository) InsertReport(ctx context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextReportID++
	report.ID = r.nextReportID
	report.CreatedAt = time.Now()

	stored := *report
	r.reports = append(r.reports, &stored)
	return nil
}

func (r *memoryRepository) CountDistinctReporters(ctx context.Context, targetID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reporters := map[string]bool{}
	for _, report := range r.reports {
		if report.TargetID == targetID {
			reporters[report.ReporterID] = true
		}
	}
	return len(reporters), nil
}

func (r *memoryRepository) InsertStandoutBatchIfAbsent(ctx context.Context, batch *StandoutBatch) (bool, *StandoutBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(batch.ViewerID, batch.Day)
	if existing, ok := r.batches[key]; ok {
		copied := *existing
		copied.Picks = append([]Standout{}, existing.Picks...)
		return false, &copied, nil
	}

	r.nextBatchID++
	batch.ID = r.nextBatchID
	batch.CreatedAt = time.Now()

	stored := *batch
	stored.Picks = append([]Standout{}, batch.Picks...)
	r.batches[key] = &stored
	return true, batch, nil
}

func (r *memoryRepository) GetStandoutBatch(ctx context.Context, viewerID, day string) (*StandoutBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[pairKey(viewerID, day)]
	if !ok {
		return nil, ErrBatchNotFound
	}
	copied := *batch
	copied.Picks = append([]Standout{}, batch.Picks...)
	return &copied, nil
}

func (r *memoryRepository) GetRecentStandoutUserIDs(ctx context.Context, viewerID string, sinceDay string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	for _, batch := range r.batches {
		if batch.ViewerID != viewerID || batch.Day < sinceDay {
			continue
		}
		for _, pick := range batch.Picks {
			seen[pick.UserID] = true
		}
	}
	return seen, nil
}

func (r *memoryRepository) MarkStandoutInteracted(ctx context.Context, viewerID, targetID, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[pairKey(viewerID, day)]
	if !ok {
		return nil
	}

	now := time.Now()
	for i := range batch.Picks {
		if batch.Picks[i].UserID == targetID && batch.Picks[i].InteractedAt == nil {
			batch.Picks[i].InteractedAt = &now
		}
	}
	return nil
}

func (r *memoryRepository) DeleteStandoutBatchesBefore(ctx context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, batch := range r.batches {
		if batch.Day < day {
			delete(r.batches, key)
		}
	}
	return nil
}

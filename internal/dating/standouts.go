// internal/dating/standouts.go
// Daily standout picks: a small, scored, diversity-aware selection that
// is memoized per viewer per day. Concurrent first requests converge on
// one stored batch through insert-if-absent.

package dating

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/TomShtern/Date-Program-sub007/internal/geo"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

// ScoredCandidate is a standout pick hydrated with its profile
type ScoredCandidate struct {
	User   *profile.User `json:"user"`
	Rank   int           `json:"rank"`
	Score  int           `json:"score"`
	Reason string        `json:"reason"`
}

// StandoutsResult is a day's ranked picks plus where they came from.
// Message is set only when there is nothing to show.
type StandoutsResult struct {
	Standouts []*ScoredCandidate `json:"standouts"`
	FromCache bool               `json:"from_cache"`
	Message   string             `json:"message,omitempty"`
}

const (
	msgNoStandouts   = "No standouts available. Try adjusting your preferences!"
	msgCheckTomorrow = "Check back tomorrow for fresh standouts!"
)

type StandoutEngine struct {
	repo   Repository
	users  profile.Repository
	finder *CandidateFinder
	scorer *Scorer
	redis  *redis.Client

	maxPerDay     int
	diversityDays int
}

// NewStandoutEngine creates the ranker. The redis client may be nil.
func NewStandoutEngine(
	repo Repository,
	users profile.Repository,
	finder *CandidateFinder,
	scorer *Scorer,
	redisClient *redis.Client,
	maxPerDay, diversityDays int,
) *StandoutEngine {
	return &StandoutEngine{
		repo:          repo,
		users:         users,
		finder:        finder,
		scorer:        scorer,
		redis:         redisClient,
		maxPerDay:     maxPerDay,
		diversityDays: diversityDays,
	}
}

// GetStandouts returns today's picks for a viewer, building the batch on
// first request. Cache hits are re-validated so stale picks never reach
// the caller.
func (e *StandoutEngine) GetStandouts(ctx context.Context, viewer *profile.User) (*StandoutsResult, error) {
	day := DayKey(time.Now())

	if picks, ok := e.readCache(ctx, viewer.ID, day); ok {
		RecordStandoutBatch("cache")
		return e.buildResult(ctx, viewer.ID, picks, true, msgCheckTomorrow)
	}

	batch, err := e.repo.GetStandoutBatch(ctx, viewer.ID, day)
	if err == nil {
		RecordStandoutBatch("stored")
		e.writeCache(ctx, viewer.ID, day, batch.Picks)
		return e.buildResult(ctx, viewer.ID, batch.Picks, true, msgCheckTomorrow)
	}
	if err != ErrBatchNotFound {
		return nil, err
	}

	picks, pool, err := e.buildPicks(ctx, viewer, day)
	if err != nil {
		return nil, err
	}

	emptyMsg := msgCheckTomorrow
	if pool == 0 {
		emptyMsg = msgNoStandouts
	}

	candidate := &StandoutBatch{ViewerID: viewer.ID, Day: day, Picks: picks}
	created, stored, err := e.repo.InsertStandoutBatchIfAbsent(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created {
		RecordStandoutBatch("built")
	} else {
		// A concurrent request built the batch first; serve that one
		RecordStandoutBatch("stored")
	}

	e.writeCache(ctx, viewer.ID, day, stored.Picks)
	return e.buildResult(ctx, viewer.ID, stored.Picks, !created, emptyMsg)
}

// buildResult re-validates the picks and wraps them with provenance
func (e *StandoutEngine) buildResult(ctx context.Context, viewerID string, picks []Standout, fromCache bool, emptyMsg string) (*StandoutsResult, error) {
	valid, err := e.validatePicks(ctx, viewerID, picks)
	if err != nil {
		return nil, err
	}

	result := &StandoutsResult{Standouts: valid, FromCache: fromCache}
	if len(valid) == 0 {
		result.Message = emptyMsg
	}
	return result, nil
}

// buildPicks runs the candidate pipeline, drops anyone featured inside
// the diversity window, scores the rest and keeps the top of the list.
// The second return value is the pre-diversity candidate count.
func (e *StandoutEngine) buildPicks(ctx context.Context, viewer *profile.User, day string) ([]Standout, int, error) {
	candidates, err := e.finder.FindCandidates(ctx, viewer)
	if err != nil {
		return nil, 0, err
	}

	sinceDay := DayKey(time.Now().AddDate(0, 0, -e.diversityDays))
	recent, err := e.repo.GetRecentStandoutUserIDs(ctx, viewer.ID, sinceDay)
	if err != nil {
		return nil, 0, err
	}

	scored := []*ScoredCandidate{}
	for _, candidate := range candidates {
		if recent[candidate.User.ID] {
			continue
		}
		in := Input{Viewer: viewer, Candidate: candidate.User}
		scored = append(scored, &ScoredCandidate{
			User:   candidate.User,
			Score:  e.scorer.Score(in),
			Reason: standoutReason(in),
		})
	}

	// Highest score first; ties go to the more recently active profile
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return laterActive(scored[i].User, scored[j].User)
	})

	if len(scored) > e.maxPerDay {
		scored = scored[:e.maxPerDay]
	}

	picks := make([]Standout, 0, len(scored))
	for i, sc := range scored {
		picks = append(picks, Standout{
			UserID: sc.User.ID,
			Rank:   i + 1,
			Score:  sc.Score,
			Reason: sc.Reason,
		})
	}
	return picks, len(candidates), nil
}

// standoutReason names the strongest signal a pick has going for it
func standoutReason(in Input) string {
	switch shared := len(sharedInterests(in.Viewer.Interests, in.Candidate.Interests)); {
	case shared >= manySharedMinimum:
		return "Many shared interests"
	case shared >= 1:
		return "Shared interests"
	}

	if d, ok := geo.DistanceBetween(in.Viewer.Location, in.Candidate.Location); ok && d < nearbyStandoutKm {
		return "Lives nearby"
	}

	if scoreLifestyle(in) >= 0.75 {
		return "Compatible lifestyle"
	}

	if in.Viewer.LookingFor != "" && in.Viewer.LookingFor == in.Candidate.LookingFor {
		return "Same relationship goals"
	}

	return "Top match for you"
}

// validatePicks re-checks a stored batch against the current world:
// inactive, blocked, matched or already-swiped users drop out of the
// response while the stored batch stays as written.
func (e *StandoutEngine) validatePicks(ctx context.Context, viewerID string, picks []Standout) ([]*ScoredCandidate, error) {
	if len(picks) == 0 {
		return []*ScoredCandidate{}, nil
	}

	swiped, err := e.repo.GetSwipedTargets(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	matched, err := e.repo.GetMatchedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blocked, err := e.repo.GetBlockedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(picks))
	for _, pick := range picks {
		ids = append(ids, pick.UserID)
	}
	users, err := e.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*profile.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	valid := []*ScoredCandidate{}
	for _, pick := range picks {
		user, ok := byID[pick.UserID]
		if !ok || !user.Active() {
			continue
		}
		if swiped[pick.UserID] || matched[pick.UserID] || blocked[pick.UserID] {
			continue
		}
		valid = append(valid, &ScoredCandidate{
			User:   user,
			Rank:   pick.Rank,
			Score:  pick.Score,
			Reason: pick.Reason,
		})
	}
	return valid, nil
}

// PrecomputeRecentlyActive builds today's batches ahead of time for users
// active in the last three days.
func (e *StandoutEngine) PrecomputeRecentlyActive(ctx context.Context) error {
	since := time.Now().Add(-72 * time.Hour)
	active, err := e.users.GetRecentlyActive(ctx, since, 1000)
	if err != nil {
		return err
	}

	day := DayKey(time.Now())
	built := 0
	for _, viewer := range active {
		if _, err := e.repo.GetStandoutBatch(ctx, viewer.ID, day); err == nil {
			continue
		} else if err != ErrBatchNotFound {
			return err
		}

		picks, _, err := e.buildPicks(ctx, viewer, day)
		if err != nil {
			log.Printf("Standout precompute failed for %s: %v", viewer.ID, err)
			continue
		}

		batch := &StandoutBatch{ViewerID: viewer.ID, Day: day, Picks: picks}
		if created, _, err := e.repo.InsertStandoutBatchIfAbsent(ctx, batch); err != nil {
			log.Printf("Standout precompute store failed for %s: %v", viewer.ID, err)
		} else if created {
			built++
		}
	}

	if built > 0 {
		log.Printf("Precomputed %d standout batches", built)
	}
	return nil
}

// ExpireOldBatches drops batches older than the diversity window
func (e *StandoutEngine) ExpireOldBatches(ctx context.Context) error {
	cutoff := DayKey(time.Now().AddDate(0, 0, -e.diversityDays))
	return e.repo.DeleteStandoutBatchesBefore(ctx, cutoff)
}

// Redis day-cache

func (e *StandoutEngine) readCache(ctx context.Context, viewerID, day string) ([]Standout, bool) {
	if e.redis == nil {
		return nil, false
	}

	data, err := e.redis.Get(ctx, standoutCacheKey(viewerID, day)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Standout cache read failed for %s: %v", viewerID, err)
		}
		return nil, false
	}

	var picks []Standout
	if err := json.Unmarshal(data, &picks); err != nil {
		return nil, false
	}
	return picks, true
}

func (e *StandoutEngine) writeCache(ctx context.Context, viewerID, day string, picks []Standout) {
	if e.redis == nil {
		return
	}

	data, err := json.Marshal(picks)
	if err != nil {
		return
	}

	ttl := time.Until(StartOfDay(time.Now()).Add(24 * time.Hour))
	if err := e.redis.Set(ctx, standoutCacheKey(viewerID, day), data, ttl).Err(); err != nil {
		log.Printf("Standout cache write failed for %s: %v", viewerID, err)
	}
}

func standoutCacheKey(viewerID, day string) string {
	return fmt.Sprintf("standouts:%s:%s", viewerID, day)
}

func laterActive(a, b *profile.User) bool {
	if a.LastActiveAt == nil {
		return false
	}
	if b.LastActiveAt == nil {
		return true
	}
	return a.LastActiveAt.After(*b.LastActiveAt)
}

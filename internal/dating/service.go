// internal/dating/service.go

package dating

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

var (
	ErrCannotSwipeSelf  = errors.New("cannot swipe on yourself")
	ErrSwiperBanned     = errors.New("account is banned")
	ErrTargetNotFound   = errors.New("target user not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrSwipeNotFound    = errors.New("swipe not found")
	ErrBatchNotFound    = errors.New("standout batch not found")
	ErrNotParticipant   = errors.New("user is not part of this match")
	ErrRewindNotAllowed = errors.New("rewind is a premium feature")
	ErrNothingToRewind  = errors.New("no swipe to rewind")
)

type Service interface {
	// Swiping
	ProcessSwipe(ctx context.Context, swiperID, targetID, direction string) (*SwipeResult, error)
	RewindLastSwipe(ctx context.Context, userID string) (*Swipe, error)

	// Candidates
	GetCandidates(ctx context.Context, viewerID string) ([]*Candidate, error)

	// Matches
	GetMatches(ctx context.Context, userID string, state *State) ([]*Match, error)
	TransitionMatch(ctx context.Context, matchID, actorID string, event Event) (*Match, error)

	// Standouts
	GetStandouts(ctx context.Context, viewerID string) (*StandoutsResult, error)

	// Trust & safety
	BlockUser(ctx context.Context, blockerID, blockedID string) error
	ReportUser(ctx context.Context, reporterID, targetID, reason string) error

	// Scheduled jobs
	PrecomputeStandouts(ctx context.Context) error
	ExpireStandoutBatches(ctx context.Context) error
	SweepSessions(ctx context.Context) error
}

type service struct {
	repo      Repository
	users     profile.Repository
	finder    *CandidateFinder
	quality   *Scorer
	standouts *StandoutEngine
	limiter   *DailyLimiter
	guard     *StripedLocks
	sessions  *SessionTracker
	hub       *Hub

	autoBanThreshold int
}

type ServiceConfig struct {
	AutoBanThreshold int
}

func NewService(
	repo Repository,
	users profile.Repository,
	finder *CandidateFinder,
	quality *Scorer,
	standouts *StandoutEngine,
	limiter *DailyLimiter,
	guard *StripedLocks,
	sessions *SessionTracker,
	hub *Hub,
	cfg ServiceConfig,
) Service {
	return &service{
		repo:             repo,
		users:            users,
		finder:           finder,
		quality:          quality,
		standouts:        standouts,
		limiter:          limiter,
		guard:            guard,
		sessions:         sessions,
		hub:              hub,
		autoBanThreshold: cfg.AutoBanThreshold,
	}
}

// ProcessSwipe records one decision and resolves everything that follows
// from it: quota, idempotency, mutual-like detection, match creation.
// Quota declines and duplicates come back as results, not errors.
func (s *service) ProcessSwipe(ctx context.Context, swiperID, targetID, direction string) (*SwipeResult, error) {
	if swiperID == targetID {
		return nil, ErrCannotSwipeSelf
	}

	swiper, err := s.users.GetUser(ctx, swiperID)
	if err != nil {
		return nil, err
	}
	if swiper.IsBanned() {
		return nil, ErrSwiperBanned
	}

	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		if err == profile.ErrUserNotFound {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if !target.Active() {
		return nil, ErrTargetNotFound
	}

	var result *SwipeResult

	// The stripe serializes the quota check against the swipe insert for
	// this swiper. The reverse-direction swipe runs on the target's
	// stripe; match creation stays race-safe through insert-if-absent.
	err = s.guard.Do(swiperID, func() error {
		var innerErr error
		result, innerErr = s.processSwipeLocked(ctx, swiper, target, direction)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	if s.sessions != nil && !result.Duplicate {
		if s.sessions.RecordSwipe(swiperID, time.Now()) {
			log.Printf("Suspicious swipe velocity for user %s", swiperID)
			RecordSuspiciousSession()
		}
	}

	RecordSwipe(direction, result.Outcome)
	return result, nil
}

func (s *service) processSwipeLocked(ctx context.Context, swiper, target *profile.User, direction string) (*SwipeResult, error) {
	limit := s.limiter.LimitFor(swiper.Premium)

	if direction == DirectionLike {
		used, err := s.limiter.UsedToday(ctx, swiper.ID)
		if err != nil {
			return nil, err
		}
		if used >= limit {
			return &SwipeResult{Outcome: OutcomeQuotaExceeded}, nil
		}
	}

	swipe := &Swipe{SwiperID: swiper.ID, TargetID: target.ID, Direction: direction}
	inserted, stored, err := s.repo.InsertSwipeIfAbsent(ctx, swipe)
	if err != nil {
		return nil, err
	}

	if !inserted {
		// Repeat swipe on the same target: report the original outcome
		return s.replayOutcome(ctx, swiper.ID, target.ID, stored)
	}

	// If the target was featured as a standout today, stamp the pick
	if err := s.repo.MarkStandoutInteracted(ctx, swiper.ID, target.ID, DayKey(time.Now())); err != nil {
		log.Printf("Failed to mark standout interaction for %s: %v", swiper.ID, err)
	}

	if direction == DirectionPass {
		remaining, _ := s.likesRemaining(ctx, swiper.ID, limit)
		return &SwipeResult{Outcome: OutcomePassed, LikesRemaining: remaining}, nil
	}

	s.limiter.RecordLike(ctx, swiper.ID)

	reverse, err := s.repo.GetSwipe(ctx, target.ID, swiper.ID)
	if err != nil && err != ErrSwipeNotFound {
		return nil, err
	}
	mutual := err == nil && reverse.Direction == DirectionLike

	remaining, _ := s.likesRemaining(ctx, swiper.ID, limit)

	if !mutual {
		return &SwipeResult{Outcome: OutcomeLiked, LikesRemaining: remaining}, nil
	}

	likeGap := stored.CreatedAt.Sub(reverse.CreatedAt)
	if likeGap < 0 {
		likeGap = -likeGap
	}

	match, created, err := s.createMatch(ctx, swiper, target, likeGap)
	if err != nil {
		return nil, err
	}
	if created {
		RecordMatch()
		if s.hub != nil {
			s.hub.NotifyMatch(match)
		}
	}

	return &SwipeResult{
		Outcome:        OutcomeMatched,
		Match:          match,
		Highlights:     Highlights(Input{Viewer: swiper, Candidate: target, LikeGap: likeGap}),
		LikesRemaining: remaining,
	}, nil
}

// replayOutcome reconstructs what the original swipe produced
func (s *service) replayOutcome(ctx context.Context, swiperID, targetID string, original *Swipe) (*SwipeResult, error) {
	result := &SwipeResult{Duplicate: true}

	if original.Direction == DirectionPass {
		result.Outcome = OutcomePassed
		return result, nil
	}

	match, err := s.repo.GetMatch(ctx, CanonicalMatchID(swiperID, targetID))
	if err == nil {
		result.Outcome = OutcomeMatched
		result.Match = match
		return result, nil
	}
	if err != ErrMatchNotFound {
		return nil, err
	}

	result.Outcome = OutcomeLiked
	return result, nil
}

// createMatch creates the pair's match row, or recovers the one a
// concurrent mutual swipe just created. Both swipers end up holding the
// same match.
func (s *service) createMatch(ctx context.Context, a, b *profile.User, likeGap time.Duration) (*Match, bool, error) {
	score := s.quality.Score(Input{Viewer: a, Candidate: b, LikeGap: likeGap})
	RecordCompatibilityScore(score)

	match := &Match{
		User1ID: a.ID,
		User2ID: b.ID,
		State:   StateActive,
		Score:   &score,
	}

	created, stored, err := s.repo.InsertMatchIfAbsent(ctx, match)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *service) likesRemaining(ctx context.Context, userID string, limit int) (int, error) {
	used, err := s.limiter.UsedToday(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RewindLastSwipe undoes a premium user's most recent swipe, unless that
// swipe already produced a match.
func (s *service) RewindLastSwipe(ctx context.Context, userID string) (*Swipe, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Premium {
		return nil, ErrRewindNotAllowed
	}

	var swipe *Swipe
	err = s.guard.Do(userID, func() error {
		last, err := s.repo.GetLastSwipe(ctx, userID)
		if err == ErrSwipeNotFound {
			return ErrNothingToRewind
		}
		if err != nil {
			return err
		}

		if last.Direction == DirectionLike {
			_, err := s.repo.GetMatch(ctx, CanonicalMatchID(userID, last.TargetID))
			if err == nil {
				return ErrNothingToRewind
			}
			if err != ErrMatchNotFound {
				return err
			}
		}

		if err := s.repo.DeleteSwipe(ctx, last.ID); err != nil {
			return err
		}
		swipe = last
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swipe, nil
}

func (s *service) GetCandidates(ctx context.Context, viewerID string) ([]*Candidate, error) {
	viewer, err := s.users.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.IsBanned() {
		return nil, ErrSwiperBanned
	}

	start := time.Now()
	candidates, err := s.finder.FindCandidates(ctx, viewer)
	if err != nil {
		return nil, err
	}
	RecordCandidatePipeline(time.Since(start))

	return candidates, nil
}

func (s *service) GetMatches(ctx context.Context, userID string, state *State) ([]*Match, error) {
	return s.repo.GetUserMatches(ctx, userID, state)
}

// TransitionMatch applies a lifecycle event on behalf of one participant
func (s *service) TransitionMatch(ctx context.Context, matchID, actorID string, event Event) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(actorID) {
		return nil, ErrNotParticipant
	}

	next, err := Transition(match.State, event)
	if err != nil {
		return nil, err
	}

	if next == match.State {
		// BLOCK on an already blocked match is a no-op
		return match, nil
	}

	RecordStateTransition(match.State, next)
	match.State = next
	if IsTerminal(next) {
		now := time.Now()
		match.EndedAt = &now
		match.EndedBy = &actorID
	}

	if err := s.repo.UpdateMatchState(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *service) GetStandouts(ctx context.Context, viewerID string) (*StandoutsResult, error) {
	viewer, err := s.users.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.IsBanned() {
		return nil, ErrSwiperBanned
	}

	return s.standouts.GetStandouts(ctx, viewer)
}

func (s *service) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return ErrCannotSwipeSelf
	}

	if err := s.repo.InsertBlock(ctx, blockerID, blockedID); err != nil {
		return err
	}

	// Any match between the pair moves to BLOCKED
	match, err := s.repo.GetMatch(ctx, CanonicalMatchID(blockerID, blockedID))
	if err == ErrMatchNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if match.State != StateBlocked {
		_, err = s.TransitionMatch(ctx, match.ID, blockerID, EventBlock)
	}
	return err
}

// ReportUser files a report, blocks on the reporter's behalf, and bans
// the target once distinct reporters reach the threshold. The target's
// stripe serializes the count-then-ban step.
func (s *service) ReportUser(ctx context.Context, reporterID, targetID, reason string) error {
	if reporterID == targetID {
		return ErrCannotSwipeSelf
	}

	report := &Report{ReporterID: reporterID, TargetID: targetID, Reason: reason}
	if err := s.repo.InsertReport(ctx, report); err != nil {
		return err
	}
	RecordReport()

	if err := s.BlockUser(ctx, reporterID, targetID); err != nil {
		return err
	}

	return s.guard.Do(targetID, func() error {
		count, err := s.repo.CountDistinctReporters(ctx, targetID)
		if err != nil {
			return err
		}
		if count < s.autoBanThreshold {
			return nil
		}

		target, err := s.users.GetUser(ctx, targetID)
		if err != nil {
			return err
		}
		if target.IsBanned() {
			return nil
		}

		log.Printf("Auto-banning user %s after %d reports", targetID, count)
		RecordAutoBan()
		return s.users.SetStatus(ctx, targetID, profile.StatusBanned)
	})
}

func (s *service) PrecomputeStandouts(ctx context.Context) error {
	return s.standouts.PrecomputeRecentlyActive(ctx)
}

func (s *service) ExpireStandoutBatches(ctx context.Context) error {
	return s.standouts.ExpireOldBatches(ctx)
}

func (s *service) SweepSessions(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	removed := s.sessions.Sweep(time.Now())
	if removed > 0 {
		log.Printf("Swept %d idle swipe sessions", removed)
	}
	return nil
}

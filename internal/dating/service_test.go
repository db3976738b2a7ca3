package dating

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomShtern/Date-Program-sub007/internal/config"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

type testEnv struct {
	service Service
	users   profile.Repository
	repo    Repository
}

func newTestEnv(t *testing.T, freeLimit int) *testEnv {
	t.Helper()

	cfg := config.Load()
	users := profile.NewMemoryRepository()
	repo := NewMemoryRepository()
	finder := NewCandidateFinder(users, repo, 500)

	quality, err := NewQualityScorer(cfg)
	require.NoError(t, err)
	standoutScorer, err := NewStandoutScorer(cfg)
	require.NoError(t, err)

	engine := NewStandoutEngine(repo, users, finder, standoutScorer, nil, 10, 3)
	limiter := NewDailyLimiter(repo, nil, freeLimit, freeLimit*5)
	sessions := NewSessionTracker(5*time.Minute, 500, 1e9)

	service := NewService(repo, users, finder, quality, engine, limiter,
		NewStripedLocks(), sessions, nil, ServiceConfig{AutoBanThreshold: 3})

	return &testEnv{service: service, users: users, repo: repo}
}

func (e *testEnv) seed(t *testing.T, u *profile.User) *profile.User {
	t.Helper()
	now := time.Now()
	if u.LastActiveAt == nil {
		u.LastActiveAt = &now
	}
	if u.Age == 0 {
		u.Age = 30
	}
	require.NoError(t, e.users.UpsertUser(context.Background(), u))
	return u
}

func TestProcessSwipeRejectsSelf(t *testing.T) {
	env := newTestEnv(t, 100)
	_, err := env.service.ProcessSwipe(context.Background(), "u1", "u1", DirectionLike)
	assert.ErrorIs(t, err, ErrCannotSwipeSelf)
}

func TestProcessSwipeRejectsBannedSwiper(t *testing.T) {
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "banned", Status: profile.StatusBanned})
	env.seed(t, &profile.User{ID: "target"})

	_, err := env.service.ProcessSwipe(context.Background(), "banned", "target", DirectionLike)
	assert.ErrorIs(t, err, ErrSwiperBanned)
}

func TestProcessSwipeRejectsMissingOrBannedTarget(t *testing.T) {
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "u1"})
	env.seed(t, &profile.User{ID: "gone", Status: profile.StatusBanned})
	env.seed(t, &profile.User{ID: "resting", Status: profile.StatusPaused})

	_, err := env.service.ProcessSwipe(context.Background(), "u1", "nobody", DirectionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = env.service.ProcessSwipe(context.Background(), "u1", "gone", DirectionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	// A paused account is invisible to swipes, same as a banned one
	_, err = env.service.ProcessSwipe(context.Background(), "u1", "resting", DirectionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestProcessSwipeMutualLikeCreatesOneMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	result, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLiked, result.Outcome)
	assert.Nil(t, result.Match)

	result, err = env.service.ProcessSwipe(ctx, "bob", "alice", DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, result.Outcome)
	require.NotNil(t, result.Match)
	assert.Equal(t, StateActive, result.Match.State)
	assert.Equal(t, CanonicalMatchID("alice", "bob"), result.Match.ID)
	require.NotNil(t, result.Match.Score)
	assert.GreaterOrEqual(t, *result.Match.Score, 0)
	assert.LessOrEqual(t, *result.Match.Score, 100)
	assert.Contains(t, result.Highlights, "Similar age")

	// Both sides see the same match
	matches, err := env.service.GetMatches(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "bob", matches[0].OtherUser("alice"))
}

func TestProcessSwipeStampsStandoutInteraction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	day := DayKey(time.Now())
	_, _, err := env.repo.InsertStandoutBatchIfAbsent(ctx, &StandoutBatch{
		ViewerID: "alice", Day: day,
		Picks: []Standout{{UserID: "bob", Rank: 1, Score: 80, Reason: "Top match for you"}},
	})
	require.NoError(t, err)

	_, err = env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)

	batch, err := env.repo.GetStandoutBatch(ctx, "alice", day)
	require.NoError(t, err)
	require.Len(t, batch.Picks, 1)
	assert.NotNil(t, batch.Picks[0].InteractedAt)
}

func TestProcessSwipePassNeverMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	_, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)

	result, err := env.service.ProcessSwipe(ctx, "bob", "alice", DirectionPass)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)

	matches, err := env.service.GetMatches(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestProcessSwipeDuplicateReplaysOutcome(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	first, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	// Same swipe again, even with the other direction, replays the original
	repeat, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionPass)
	require.NoError(t, err)
	assert.True(t, repeat.Duplicate)
	assert.Equal(t, OutcomeLiked, repeat.Outcome)

	// After the match forms, the replay reports it
	_, err = env.service.ProcessSwipe(ctx, "bob", "alice", DirectionLike)
	require.NoError(t, err)

	repeat, err = env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	assert.True(t, repeat.Duplicate)
	assert.Equal(t, OutcomeMatched, repeat.Outcome)
	require.NotNil(t, repeat.Match)
}

func TestProcessSwipeQuotaIsAResultNotAnError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 2)
	env.seed(t, &profile.User{ID: "alice"})
	for _, id := range []string{"b1", "b2", "b3"} {
		env.seed(t, &profile.User{ID: id})
	}

	for _, id := range []string{"b1", "b2"} {
		result, err := env.service.ProcessSwipe(ctx, "alice", id, DirectionLike)
		require.NoError(t, err)
		assert.Equal(t, OutcomeLiked, result.Outcome)
	}

	result, err := env.service.ProcessSwipe(ctx, "alice", "b3", DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQuotaExceeded, result.Outcome)

	// The declined like was never recorded
	swiped, err := env.repo.GetSwipedTargets(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, swiped["b3"])

	// Passes don't count against the quota
	result, err = env.service.ProcessSwipe(ctx, "alice", "b3", DirectionPass)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)
}

func TestProcessSwipePremiumGetsHigherLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1)
	env.seed(t, &profile.User{ID: "vip", Premium: true})
	env.seed(t, &profile.User{ID: "b1"})
	env.seed(t, &profile.User{ID: "b2"})

	for _, id := range []string{"b1", "b2"} {
		result, err := env.service.ProcessSwipe(ctx, "vip", id, DirectionLike)
		require.NoError(t, err)
		assert.Equal(t, OutcomeLiked, result.Outcome)
	}
}

func TestProcessSwipeLikesRemaining(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 5)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	result, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, 4, result.LikesRemaining)
}

func TestProcessSwipeConcurrentMutualLike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	var wg sync.WaitGroup
	results := make([]*SwipeResult, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], _ = env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	}()
	go func() {
		defer wg.Done()
		results[1], _ = env.service.ProcessSwipe(ctx, "bob", "alice", DirectionLike)
	}()
	wg.Wait()

	// At least one side observes the match, and only one match row exists
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	matched := 0
	for _, r := range results {
		if r.Outcome == OutcomeMatched {
			matched++
		}
	}
	assert.GreaterOrEqual(t, matched, 1)

	match, err := env.repo.GetMatch(ctx, CanonicalMatchID("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, StateActive, match.State)
}

func TestRewindLastSwipe(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "free"})
	env.seed(t, &profile.User{ID: "vip", Premium: true})
	env.seed(t, &profile.User{ID: "bob"})

	_, err := env.service.RewindLastSwipe(ctx, "free")
	assert.ErrorIs(t, err, ErrRewindNotAllowed)

	_, err = env.service.RewindLastSwipe(ctx, "vip")
	assert.ErrorIs(t, err, ErrNothingToRewind)

	_, err = env.service.ProcessSwipe(ctx, "vip", "bob", DirectionPass)
	require.NoError(t, err)

	swipe, err := env.service.RewindLastSwipe(ctx, "vip")
	require.NoError(t, err)
	assert.Equal(t, "bob", swipe.TargetID)

	// The pair is swipeable again
	result, err := env.service.ProcessSwipe(ctx, "vip", "bob", DirectionLike)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, OutcomeLiked, result.Outcome)
}

func TestRewindCannotUndoAMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "vip", Premium: true})
	env.seed(t, &profile.User{ID: "bob"})

	_, err := env.service.ProcessSwipe(ctx, "bob", "vip", DirectionLike)
	require.NoError(t, err)
	result, err := env.service.ProcessSwipe(ctx, "vip", "bob", DirectionLike)
	require.NoError(t, err)
	require.Equal(t, OutcomeMatched, result.Outcome)

	_, err = env.service.RewindLastSwipe(ctx, "vip")
	assert.ErrorIs(t, err, ErrNothingToRewind)
}

func TestTransitionMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})
	env.seed(t, &profile.User{ID: "eve"})

	_, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	result, err := env.service.ProcessSwipe(ctx, "bob", "alice", DirectionLike)
	require.NoError(t, err)
	matchID := result.Match.ID

	_, err = env.service.TransitionMatch(ctx, matchID, "eve", EventMoveToFriends)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = env.service.TransitionMatch(ctx, "nope", "alice", EventUnmatch)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	match, err := env.service.TransitionMatch(ctx, matchID, "alice", EventMoveToFriends)
	require.NoError(t, err)
	assert.Equal(t, StateFriends, match.State)
	assert.Nil(t, match.EndedAt)

	match, err = env.service.TransitionMatch(ctx, matchID, "bob", EventUnmatch)
	require.NoError(t, err)
	assert.Equal(t, StateUnmatched, match.State)
	require.NotNil(t, match.EndedAt)
	require.NotNil(t, match.EndedBy)
	assert.Equal(t, "bob", *match.EndedBy)

	// Terminal states absorb further lifecycle events
	_, err = env.service.TransitionMatch(ctx, matchID, "alice", EventMoveToFriends)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBlockUserForcesMatchToBlocked(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	_, err := env.service.ProcessSwipe(ctx, "alice", "bob", DirectionLike)
	require.NoError(t, err)
	result, err := env.service.ProcessSwipe(ctx, "bob", "alice", DirectionLike)
	require.NoError(t, err)

	require.NoError(t, env.service.BlockUser(ctx, "alice", "bob"))

	match, err := env.repo.GetMatch(ctx, result.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, StateBlocked, match.State)

	// Blocking again is a no-op, not an error
	assert.NoError(t, env.service.BlockUser(ctx, "alice", "bob"))
}

func TestBlockUserWithoutMatch(t *testing.T) {
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	assert.NoError(t, env.service.BlockUser(context.Background(), "alice", "bob"))
	assert.ErrorIs(t, env.service.BlockUser(context.Background(), "alice", "alice"), ErrCannotSwipeSelf)
}

func TestReportUserAutoBanAtThreshold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "creep"})
	for _, id := range []string{"r1", "r2", "r3"} {
		env.seed(t, &profile.User{ID: id})
	}

	require.NoError(t, env.service.ReportUser(ctx, "r1", "creep", "inappropriate messages"))
	require.NoError(t, env.service.ReportUser(ctx, "r2", "creep", "fake profile"))

	target, err := env.users.GetUser(ctx, "creep")
	require.NoError(t, err)
	assert.False(t, target.IsBanned())

	// A repeat report from the same user doesn't move the count
	require.NoError(t, env.service.ReportUser(ctx, "r2", "creep", "still at it"))
	target, err = env.users.GetUser(ctx, "creep")
	require.NoError(t, err)
	assert.False(t, target.IsBanned())

	require.NoError(t, env.service.ReportUser(ctx, "r3", "creep", "harassment"))
	target, err = env.users.GetUser(ctx, "creep")
	require.NoError(t, err)
	assert.True(t, target.IsBanned())
}

func TestReportUserBlocksForReporter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "alice"})
	env.seed(t, &profile.User{ID: "bob"})

	require.NoError(t, env.service.ReportUser(ctx, "alice", "bob", "spam"))

	blocked, err := env.repo.GetBlockedUserIDs(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, blocked["bob"])
}

func TestGetCandidatesRejectsBannedViewer(t *testing.T) {
	env := newTestEnv(t, 100)
	env.seed(t, &profile.User{ID: "banned", Status: profile.StatusBanned})

	_, err := env.service.GetCandidates(context.Background(), "banned")
	assert.ErrorIs(t, err, ErrSwiperBanned)
}

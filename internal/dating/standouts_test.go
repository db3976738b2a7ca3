package dating

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomShtern/Date-Program-sub007/internal/config"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

func newStandoutEnv(t *testing.T, maxPerDay, diversityDays int) (*StandoutEngine, profile.Repository, Repository) {
	t.Helper()

	users := profile.NewMemoryRepository()
	repo := NewMemoryRepository()
	finder := NewCandidateFinder(users, repo, 500)
	scorer, err := NewStandoutScorer(config.Load())
	require.NoError(t, err)

	return NewStandoutEngine(repo, users, finder, scorer, nil, maxPerDay, diversityDays), users, repo
}

func TestGetStandoutsCapsBatchSize(t *testing.T) {
	ctx := context.Background()
	engine, users, _ := newStandoutEnv(t, 3, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})
	for i := 0; i < 8; i++ {
		seedUser(t, users, &profile.User{ID: fmt.Sprintf("c%d", i), Age: 30, Gender: "man"})
	}

	res, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	assert.Len(t, res.Standouts, 3)
	assert.False(t, res.FromCache)
	assert.Empty(t, res.Message)
}

func TestGetStandoutsSortedByScore(t *testing.T) {
	ctx := context.Background()
	engine, users, _ := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{
		ID: "viewer", Age: 30, Gender: "woman",
		Interests: []string{"hiking", "jazz"},
	})
	bio := "out most weekends"
	seedUser(t, users, &profile.User{
		ID: "strong", Age: 30, Gender: "man",
		Bio:        &bio,
		Photos:     []string{"a.jpg"},
		Interests:  []string{"hiking", "jazz"},
		Drinking:   profile.HabitSocially,
		Smoking:    profile.HabitNever,
		KidsStance: profile.KidsOpen,
		LookingFor: profile.LookingLongTerm,
	})
	seedUser(t, users, &profile.User{ID: "sparse", Age: 30, Gender: "man"})

	res, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	picks := res.Standouts
	require.Len(t, picks, 2)
	assert.Equal(t, "strong", picks[0].User.ID)
	assert.Equal(t, "sparse", picks[1].User.ID)
	assert.Greater(t, picks[0].Score, picks[1].Score)
	assert.Equal(t, 1, picks[0].Rank)
	assert.Equal(t, 2, picks[1].Rank)
	assert.Equal(t, "Shared interests", picks[0].Reason)
}

func TestGetStandoutsSameDayMemoization(t *testing.T) {
	ctx := context.Background()
	engine, users, repo := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})
	seedUser(t, users, &profile.User{ID: "early", Age: 30, Gender: "man"})

	first, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, first.Standouts, 1)
	assert.False(t, first.FromCache)

	// A candidate who joins after the batch exists doesn't appear today
	seedUser(t, users, &profile.User{ID: "late", Age: 30, Gender: "man"})

	second, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, second.Standouts, 1)
	assert.Equal(t, "early", second.Standouts[0].User.ID)
	assert.True(t, second.FromCache)

	batch, err := repo.GetStandoutBatch(ctx, "viewer", DayKey(time.Now()))
	require.NoError(t, err)
	assert.Len(t, batch.Picks, 1)
}

func TestGetStandoutsRevalidatesStoredPicks(t *testing.T) {
	ctx := context.Background()
	engine, users, repo := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})
	seedUser(t, users, &profile.User{ID: "keeper", Age: 30, Gender: "man"})
	seedUser(t, users, &profile.User{ID: "banned-later", Age: 30, Gender: "man"})
	seedUser(t, users, &profile.User{ID: "swiped-later", Age: 30, Gender: "man"})

	first, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, first.Standouts, 3)

	require.NoError(t, users.SetStatus(ctx, "banned-later", profile.StatusBanned))
	_, _, err = repo.InsertSwipeIfAbsent(ctx, &Swipe{
		SwiperID: "viewer", TargetID: "swiped-later", Direction: DirectionPass,
	})
	require.NoError(t, err)

	second, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, second.Standouts, 1)
	assert.Equal(t, "keeper", second.Standouts[0].User.ID)

	// The stored batch itself stays as written
	batch, err := repo.GetStandoutBatch(ctx, "viewer", DayKey(time.Now()))
	require.NoError(t, err)
	assert.Len(t, batch.Picks, 3)
}

func TestGetStandoutsDiversityWindow(t *testing.T) {
	ctx := context.Background()
	engine, users, repo := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})
	seedUser(t, users, &profile.User{ID: "featured", Age: 30, Gender: "man"})
	seedUser(t, users, &profile.User{ID: "fresh", Age: 30, Gender: "man"})

	// Yesterday's batch already showed "featured"
	yesterday := DayKey(time.Now().AddDate(0, 0, -1))
	_, _, err := repo.InsertStandoutBatchIfAbsent(ctx, &StandoutBatch{
		ViewerID: "viewer", Day: yesterday,
		Picks: []Standout{{UserID: "featured", Rank: 1, Score: 90}},
	})
	require.NoError(t, err)

	res, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, res.Standouts, 1)
	assert.Equal(t, "fresh", res.Standouts[0].User.ID)
}

func TestGetStandoutsEmptyPoolReturnsNonNil(t *testing.T) {
	ctx := context.Background()
	engine, users, _ := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})

	res, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)
	assert.NotNil(t, res.Standouts)
	assert.Empty(t, res.Standouts)
	assert.False(t, res.FromCache)
	assert.Equal(t, "No standouts available. Try adjusting your preferences!", res.Message)
}

func TestMarkStandoutInteracted(t *testing.T) {
	ctx := context.Background()
	engine, users, repo := newStandoutEnv(t, 10, 3)

	viewer := seedUser(t, users, &profile.User{ID: "viewer", Age: 30, Gender: "woman"})
	seedUser(t, users, &profile.User{ID: "pick", Age: 30, Gender: "man"})

	_, err := engine.GetStandouts(ctx, viewer)
	require.NoError(t, err)

	day := DayKey(time.Now())
	require.NoError(t, repo.MarkStandoutInteracted(ctx, "viewer", "pick", day))

	batch, err := repo.GetStandoutBatch(ctx, "viewer", day)
	require.NoError(t, err)
	require.Len(t, batch.Picks, 1)
	require.NotNil(t, batch.Picks[0].InteractedAt)
	stamped := *batch.Picks[0].InteractedAt

	// A second interaction keeps the original timestamp
	require.NoError(t, repo.MarkStandoutInteracted(ctx, "viewer", "pick", day))
	batch, err = repo.GetStandoutBatch(ctx, "viewer", day)
	require.NoError(t, err)
	assert.Equal(t, stamped, *batch.Picks[0].InteractedAt)

	// Users outside the batch and missing batches are no-ops
	assert.NoError(t, repo.MarkStandoutInteracted(ctx, "viewer", "stranger", day))
	assert.NoError(t, repo.MarkStandoutInteracted(ctx, "nobody", "pick", day))
}

func TestPrecomputeRecentlyActive(t *testing.T) {
	ctx := context.Background()
	engine, users, repo := newStandoutEnv(t, 10, 3)

	seedUser(t, users, &profile.User{ID: "a", Age: 30, Gender: "woman"})
	seedUser(t, users, &profile.User{ID: "b", Age: 30, Gender: "man"})

	stale := time.Now().Add(-100 * time.Hour)
	seedUser(t, users, &profile.User{ID: "dormant", Age: 30, Gender: "man", LastActiveAt: &stale})

	require.NoError(t, engine.PrecomputeRecentlyActive(ctx))

	day := DayKey(time.Now())
	_, err := repo.GetStandoutBatch(ctx, "a", day)
	assert.NoError(t, err)
	_, err = repo.GetStandoutBatch(ctx, "b", day)
	assert.NoError(t, err)
	_, err = repo.GetStandoutBatch(ctx, "dormant", day)
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestExpireOldBatches(t *testing.T) {
	ctx := context.Background()
	engine, _, repo := newStandoutEnv(t, 10, 3)

	old := DayKey(time.Now().AddDate(0, 0, -10))
	today := DayKey(time.Now())
	for _, day := range []string{old, today} {
		_, _, err := repo.InsertStandoutBatchIfAbsent(ctx, &StandoutBatch{
			ViewerID: "viewer", Day: day,
			Picks: []Standout{{UserID: "x", Rank: 1, Score: 50}},
		})
		require.NoError(t, err)
	}

	require.NoError(t, engine.ExpireOldBatches(ctx))

	_, err := repo.GetStandoutBatch(ctx, "viewer", old)
	assert.ErrorIs(t, err, ErrBatchNotFound)
	_, err = repo.GetStandoutBatch(ctx, "viewer", today)
	assert.NoError(t, err)
}

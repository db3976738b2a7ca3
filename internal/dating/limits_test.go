package dating

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyLimiterLimitFor(t *testing.T) {
	limiter := NewDailyLimiter(NewMemoryRepository(), nil, 100, 500)
	assert.Equal(t, 100, limiter.LimitFor(false))
	assert.Equal(t, 500, limiter.LimitFor(true))
}

func TestDailyLimiterCountsOnlyLikes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	limiter := NewDailyLimiter(repo, nil, 100, 500)

	_, _, err := repo.InsertSwipeIfAbsent(ctx, &Swipe{SwiperID: "u1", TargetID: "a", Direction: DirectionLike})
	require.NoError(t, err)
	_, _, err = repo.InsertSwipeIfAbsent(ctx, &Swipe{SwiperID: "u1", TargetID: "b", Direction: DirectionPass})
	require.NoError(t, err)
	_, _, err = repo.InsertSwipeIfAbsent(ctx, &Swipe{SwiperID: "u2", TargetID: "a", Direction: DirectionLike})
	require.NoError(t, err)

	used, err := limiter.UsedToday(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestStartOfDayAndDayKey(t *testing.T) {
	at := time.Date(2026, 8, 31, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), StartOfDay(at))
	assert.Equal(t, "2026-08-31", DayKey(at))

	// Local wall clocks don't move the UTC day boundary
	offset := time.FixedZone("plus14", 14*60*60)
	assert.Equal(t, "2026-08-31", DayKey(time.Date(2026, 9, 1, 10, 0, 0, 0, offset)))
}

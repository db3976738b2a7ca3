// internal/dating/limits.go
// Daily like quotas. Likes are capped per UTC day; passes are free. The
// database count is the source of truth, with a Redis counter in front
// when available.

package dating

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type DailyLimiter struct {
	repo         Repository
	redis        *redis.Client
	freeLimit    int
	premiumLimit int
}

// NewDailyLimiter creates a limiter. The redis client may be nil.
func NewDailyLimiter(repo Repository, redisClient *redis.Client, freeLimit, premiumLimit int) *DailyLimiter {
	return &DailyLimiter{
		repo:         repo,
		redis:        redisClient,
		freeLimit:    freeLimit,
		premiumLimit: premiumLimit,
	}
}

// LimitFor returns the applicable daily cap
func (l *DailyLimiter) LimitFor(premium bool) int {
	if premium {
		return l.premiumLimit
	}
	return l.freeLimit
}

// UsedToday returns the number of likes recorded since UTC midnight
func (l *DailyLimiter) UsedToday(ctx context.Context, userID string) (int, error) {
	now := time.Now()

	if l.redis != nil {
		used, err := l.redis.Get(ctx, likeCountKey(userID, now)).Int()
		if err == nil {
			return used, nil
		}
		if err != redis.Nil {
			log.Printf("Redis like counter read failed for %s: %v", userID, err)
		}
	}

	return l.repo.CountLikesSince(ctx, userID, StartOfDay(now))
}

// RecordLike bumps the fast-path counter. The swipe row is the durable
// record; a lost increment only makes the next read fall through to the
// database.
func (l *DailyLimiter) RecordLike(ctx context.Context, userID string) {
	if l.redis == nil {
		return
	}

	now := time.Now()
	key := likeCountKey(userID, now)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, StartOfDay(now).Add(24*time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Redis like counter update failed for %s: %v", userID, err)
		return
	}

	// First increment of a fresh key seeds it from the database so the
	// counter survives Redis restarts mid-day.
	if incr.Val() == 1 {
		dbCount, err := l.repo.CountLikesSince(ctx, userID, StartOfDay(now))
		if err == nil && dbCount > 1 {
			l.redis.Set(ctx, key, dbCount, time.Until(StartOfDay(now).Add(24*time.Hour)))
		}
	}
}

func likeCountKey(userID string, t time.Time) string {
	return fmt.Sprintf("swipe_likes:%s:%s", userID, DayKey(t))
}

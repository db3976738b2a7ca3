// internal/dating/models.go

package dating

import (
	"strings"
	"time"
)

// Swipe directions
const (
	DirectionLike = "like"
	DirectionPass = "pass"
)

// Swipe is one recorded decision about another profile
type Swipe struct {
	ID        int64     `json:"id" db:"id"`
	SwiperID  string    `json:"swiper_id" db:"swiper_id"`
	TargetID  string    `json:"target_id" db:"target_id"`
	Direction string    `json:"direction" db:"direction"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match is the single record for a mutually-liked pair. Its ID is the
// canonical pair key, so the pair can never match twice.
type Match struct {
	ID        string     `json:"id" db:"id"`
	User1ID   string     `json:"user1_id" db:"user1_id"`
	User2ID   string     `json:"user2_id" db:"user2_id"`
	State     State      `json:"state" db:"state"`
	Score     *int       `json:"score,omitempty" db:"score"`
	MatchedAt time.Time  `json:"matched_at" db:"matched_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	EndedBy   *string    `json:"ended_by,omitempty" db:"ended_by"`
}

// OtherUser returns the match partner of the given user
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// Involves reports whether the user is one side of the match
func (m *Match) Involves(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// CanonicalMatchID builds the pair key for two user IDs. The lower ID
// always comes first, so both argument orders produce the same key.
func CanonicalMatchID(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "_" + b
}

// CanonicalPair returns the two IDs in canonical order
func CanonicalPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// Swipe outcomes
const (
	OutcomeMatched       = "matched"
	OutcomeLiked         = "liked"
	OutcomePassed        = "passed"
	OutcomeQuotaExceeded = "quota_exceeded"
)

// SwipeResult reports what a swipe did. Quota declines and duplicate
// swipes live here as values; errors are reserved for storage failures.
type SwipeResult struct {
	Outcome        string   `json:"outcome"`
	Duplicate      bool     `json:"duplicate"`
	Match          *Match   `json:"match,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	LikesRemaining int      `json:"likes_remaining"`
}

// Standout is one scored profile inside a daily batch. Everything but
// InteractedAt is fixed at batch-build time.
type Standout struct {
	UserID       string     `json:"user_id"`
	Rank         int        `json:"rank"`
	Score        int        `json:"score"`
	Reason       string     `json:"reason"`
	InteractedAt *time.Time `json:"interacted_at,omitempty"`
}

// StandoutBatch is the memoized daily pick list for one viewer
type StandoutBatch struct {
	ID        int64      `json:"id" db:"id"`
	ViewerID  string     `json:"viewer_id" db:"viewer_id"`
	Day       string     `json:"day" db:"day"` // YYYY-MM-DD, UTC
	Picks     []Standout `json:"picks"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Report is a trust & safety report filed against a user
type Report struct {
	ID         int64     `json:"id" db:"id"`
	ReporterID string    `json:"reporter_id" db:"reporter_id"`
	TargetID   string    `json:"target_id" db:"target_id"`
	Reason     string    `json:"reason" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Block is a directed block between two users
type Block struct {
	BlockerID string    `json:"blocker_id" db:"blocker_id"`
	BlockedID string    `json:"blocked_id" db:"blocked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DayKey formats a moment as the UTC day bucket used for quotas and
// standout batches.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay returns UTC midnight for the day containing t
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// internal/dating/repository.go

package dating

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Swipes
	InsertSwipeIfAbsent(ctx context.Context, swipe *Swipe) (bool, *Swipe, error)
	GetSwipe(ctx context.Context, swiperID, targetID string) (*Swipe, error)
	GetSwipedTargets(ctx context.Context, swiperID string) (map[string]bool, error)
	GetLastSwipe(ctx context.Context, swiperID string) (*Swipe, error)
	DeleteSwipe(ctx context.Context, id int64) error
	CountLikesSince(ctx context.Context, swiperID string, since time.Time) (int, error)

	// Matches
	InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, *Match, error)
	GetMatch(ctx context.Context, id string) (*Match, error)
	GetUserMatches(ctx context.Context, userID string, state *State) ([]*Match, error)
	UpdateMatchState(ctx context.Context, match *Match) error
	GetMatchedUserIDs(ctx context.Context, userID string) (map[string]bool, error)

	// Blocks
	InsertBlock(ctx context.Context, blockerID, blockedID string) error
	GetBlockedUserIDs(ctx context.Context, userID string) (map[string]bool, error)

	// Reports
	InsertReport(ctx context.Context, report *Report) error
	CountDistinctReporters(ctx context.Context, targetID string) (int, error)

	// Standout batches
	InsertStandoutBatchIfAbsent(ctx context.Context, batch *StandoutBatch) (bool, *StandoutBatch, error)
	GetStandoutBatch(ctx context.Context, viewerID, day string) (*StandoutBatch, error)
	GetRecentStandoutUserIDs(ctx context.Context, viewerID string, sinceDay string) (map[string]bool, error)
	MarkStandoutInteracted(ctx context.Context, viewerID, targetID, day string) error
	DeleteStandoutBatchesBefore(ctx context.Context, day string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Swipe methods

func (r *postgresRepository) InsertSwipeIfAbsent(ctx context.Context, swipe *Swipe) (bool, *Swipe, error) {
	query := `
		INSERT INTO swipes (swiper_id, target_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (swiper_id, target_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		swipe.SwiperID, swipe.TargetID, swipe.Direction,
	).Scan(&swipe.ID, &swipe.CreatedAt)

	if err == nil {
		return true, swipe, nil
	}
	if err != sql.ErrNoRows {
		return false, nil, fmt.Errorf("failed to insert swipe: %w", err)
	}

	// Conflict: another request already recorded this pair. Recover it.
	var existing Swipe
	err = r.db.GetContext(ctx, &existing,
		`SELECT id, swiper_id, target_id, direction, created_at
		 FROM swipes WHERE swiper_id = $1 AND target_id = $2`,
		swipe.SwiperID, swipe.TargetID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to load existing swipe: %w", err)
	}

	return false, &existing, nil
}

func (r *postgresRepository) GetSwipe(ctx context.Context, swiperID, targetID string) (*Swipe, error) {
	var swipe Swipe
	err := r.db.GetContext(ctx, &swipe,
		`SELECT id, swiper_id, target_id, direction, created_at
		 FROM swipes WHERE swiper_id = $1 AND target_id = $2`,
		swiperID, targetID)
	if err == sql.ErrNoRows {
		return nil, ErrSwipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &swipe, nil
}

func (r *postgresRepository) GetSwipedTargets(ctx context.Context, swiperID string) (map[string]bool, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT target_id FROM swipes WHERE swiper_id = $1`, swiperID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *postgresRepository) GetLastSwipe(ctx context.Context, swiperID string) (*Swipe, error) {
	var swipe Swipe
	err := r.db.GetContext(ctx, &swipe,
		`SELECT id, swiper_id, target_id, direction, created_at
		 FROM swipes WHERE swiper_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`, swiperID)
	if err == sql.ErrNoRows {
		return nil, ErrSwipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &swipe, nil
}

func (r *postgresRepository) DeleteSwipe(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM swipes WHERE id = $1`, id)
	return err
}

func (r *postgresRepository) CountLikesSince(ctx context.Context, swiperID string, since time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM swipes
		WHERE swiper_id = $1 AND direction = 'like' AND created_at >= $2
	`

	err := r.db.GetContext(ctx, &count, query, swiperID, since)
	return count, err
}

// Match methods

func (r *postgresRepository) InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, *Match, error) {
	match.User1ID, match.User2ID = CanonicalPair(match.User1ID, match.User2ID)
	match.ID = CanonicalMatchID(match.User1ID, match.User2ID)

	query := `
		INSERT INTO matches (id, user1_id, user2_id, state, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING matched_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		match.ID, match.User1ID, match.User2ID, match.State, match.Score,
	).Scan(&match.MatchedAt)

	if err == nil {
		return true, match, nil
	}
	if err != sql.ErrNoRows {
		return false, nil, fmt.Errorf("failed to insert match: %w", err)
	}

	existing, err := r.GetMatch(ctx, match.ID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *postgresRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
	var match Match
	err := r.db.GetContext(ctx, &match,
		`SELECT id, user1_id, user2_id, state, score, matched_at, ended_at, ended_by
		 FROM matches WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID string, state *State) ([]*Match, error) {
	query := `
		SELECT id, user1_id, user2_id, state, score, matched_at, ended_at, ended_by
		FROM matches
		WHERE (user1_id = $1 OR user2_id = $1)
	`
	args := []interface{}{userID}

	if state != nil {
		query += ` AND state = $2`
		args = append(args, *state)
	}
	query += ` ORDER BY matched_at DESC`

	matches := []*Match{}
	err := r.db.SelectContext(ctx, &matches, query, args...)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresRepository) UpdateMatchState(ctx context.Context, match *Match) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET state = $2, ended_at = $3, ended_by = $4 WHERE id = $1`,
		match.ID, match.State, match.EndedAt, match.EndedBy)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *postgresRepository) GetMatchedUserIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
	`

	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// Block methods

func (r *postgresRepository) InsertBlock(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocks (blocker_id, blocked_id)
		 VALUES ($1, $2)
		 ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
		blockerID, blockedID)
	return err
}

func (r *postgresRepository) GetBlockedUserIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	query := `
		SELECT CASE WHEN blocker_id = $1 THEN blocked_id ELSE blocker_id END
		FROM blocks
		WHERE blocker_id = $1 OR blocked_id = $1
	`

	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// Report methods

func (r *postgresRepository) InsertReport(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (reporter_id, target_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		report.ReporterID, report.TargetID, report.Reason,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *postgresRepository) CountDistinctReporters(ctx context.Context, targetID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT reporter_id) FROM reports WHERE target_id = $1`, targetID)
	return count, err
}

// Standout batch methods

func (r *postgresRepository) InsertStandoutBatchIfAbsent(ctx context.Context, batch *StandoutBatch) (bool, *StandoutBatch, error) {
	picksJSON, err := json.Marshal(batch.Picks)
	if err != nil {
		return false, nil, err
	}

	query := `
		INSERT INTO standout_batches (viewer_id, day, picks)
		VALUES ($1, $2, $3)
		ON CONFLICT (viewer_id, day) DO NOTHING
		RETURNING id, created_at
	`

	err = r.db.QueryRowxContext(ctx, query,
		batch.ViewerID, batch.Day, picksJSON,
	).Scan(&batch.ID, &batch.CreatedAt)

	if err == nil {
		return true, batch, nil
	}
	if err != sql.ErrNoRows {
		return false, nil, fmt.Errorf("failed to insert standout batch: %w", err)
	}

	existing, err := r.GetStandoutBatch(ctx, batch.ViewerID, batch.Day)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *postgresRepository) GetStandoutBatch(ctx context.Context, viewerID, day string) (*StandoutBatch, error) {
	var batch StandoutBatch
	var picksJSON []byte

	err := r.db.QueryRowxContext(ctx,
		`SELECT id, viewer_id, day, picks, created_at
		 FROM standout_batches WHERE viewer_id = $1 AND day = $2`,
		viewerID, day,
	).Scan(&batch.ID, &batch.ViewerID, &batch.Day, &picksJSON, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standout batch: %w", err)
	}

	if err := json.Unmarshal(picksJSON, &batch.Picks); err != nil {
		return nil, fmt.Errorf("failed to decode standout picks: %w", err)
	}
	return &batch, nil
}

func (r *postgresRepository) GetRecentStandoutUserIDs(ctx context.Context, viewerID string, sinceDay string) (map[string]bool, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT picks FROM standout_batches
		 WHERE viewer_id = $1 AND day >= $2`,
		viewerID, sinceDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var picksJSON []byte
		if err := rows.Scan(&picksJSON); err != nil {
			return nil, err
		}
		var picks []Standout
		if err := json.Unmarshal(picksJSON, &picks); err != nil {
			return nil, err
		}
		for _, pick := range picks {
			seen[pick.UserID] = true
		}
	}
	return seen, rows.Err()
}

// MarkStandoutInteracted stamps the interaction time on a featured pick
// the first time the viewer swipes on it. Days without a batch, or picks
// not featuring the target, are a no-op.
func (r *postgresRepository) MarkStandoutInteracted(ctx context.Context, viewerID, targetID, day string) error {
	batch, err := r.GetStandoutBatch(ctx, viewerID, day)
	if err == ErrBatchNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()
	changed := false
	for i := range batch.Picks {
		if batch.Picks[i].UserID == targetID && batch.Picks[i].InteractedAt == nil {
			batch.Picks[i].InteractedAt = &now
			changed = true
		}
	}
	if !changed {
		return nil
	}

	picksJSON, err := json.Marshal(batch.Picks)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE standout_batches SET picks = $3 WHERE viewer_id = $1 AND day = $2`,
		viewerID, day, picksJSON)
	return err
}

func (r *postgresRepository) DeleteStandoutBatchesBefore(ctx context.Context, day string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM standout_batches WHERE day < $1`, day)
	return err
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/TomShtern/Date-Program-sub007/internal/geo"
)

// Repository defines the profile repository interface
type Repository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
	UpsertUser(ctx context.Context, user *User) error
	UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error
	UpdateDealbreakers(ctx context.Context, userID string, db Dealbreakers) error
	UpdateLastActive(ctx context.Context, userID string, at time.Time) error
	SetStatus(ctx context.Context, userID string, status string) error

	// FindCandidatePool does the cheap database-side pre-filter: account
	// active, not the viewer, gender inside the viewer's preference.
	// The full candidate pipeline runs in memory on top of this pool.
	FindCandidatePool(ctx context.Context, viewer *User, limit int) ([]*User, error)

	// GetRecentlyActive returns users active since the cutoff, for
	// scheduled precompute jobs.
	GetRecentlyActive(ctx context.Context, since time.Time, limit int) ([]*User, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `
	id, display_name, age, gender, bio, photos, interests, height_cm,
	location_lat, location_lng, drinking, smoking, kids_stance, looking_for,
	pace, preferences, dealbreakers, premium, status,
	last_active_at, created_at
`

func (r *postgresRepository) GetUser(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.db.QueryRowxContext(ctx, query, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *postgresRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *postgresRepository) UpsertUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, display_name, age, gender, bio, photos, interests, height_cm,
			location_lat, location_lng, drinking, smoking, kids_stance, looking_for,
			pace, preferences, dealbreakers, premium, status,
			last_active_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, COALESCE($21, NOW())
		)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			bio = EXCLUDED.bio,
			photos = EXCLUDED.photos,
			interests = EXCLUDED.interests,
			height_cm = EXCLUDED.height_cm,
			location_lat = EXCLUDED.location_lat,
			location_lng = EXCLUDED.location_lng,
			drinking = EXCLUDED.drinking,
			smoking = EXCLUDED.smoking,
			kids_stance = EXCLUDED.kids_stance,
			looking_for = EXCLUDED.looking_for,
			pace = EXCLUDED.pace,
			preferences = EXCLUDED.preferences,
			dealbreakers = EXCLUDED.dealbreakers,
			premium = EXCLUDED.premium
		RETURNING created_at
	`

	if user.Status == "" {
		user.Status = StatusActive
	}

	var lat, lng *float64
	if user.Location != nil {
		lat, lng = &user.Location.Lat, &user.Location.Lon
	}

	var createdAt *time.Time
	if !user.CreatedAt.IsZero() {
		createdAt = &user.CreatedAt
	}

	return r.db.QueryRowxContext(
		ctx, query,
		user.ID, user.DisplayName, user.Age, user.Gender, user.Bio,
		pq.Array(user.Photos), pq.Array(user.Interests), user.HeightCm,
		lat, lng, user.Drinking, user.Smoking, user.KidsStance, user.LookingFor,
		user.Pace, user.Preferences, user.Dealbreakers, user.Premium, user.Status,
		user.LastActiveAt, createdAt,
	).Scan(&user.CreatedAt)
}

func (r *postgresRepository) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET preferences = $2 WHERE id = $1`, userID, prefs)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return requireRow(result)
}

func (r *postgresRepository) UpdateDealbreakers(ctx context.Context, userID string, db Dealbreakers) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET dealbreakers = $2 WHERE id = $1`, userID, db)
	if err != nil {
		return fmt.Errorf("failed to update dealbreakers: %w", err)
	}
	return requireRow(result)
}

func (r *postgresRepository) UpdateLastActive(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_active_at = $2 WHERE id = $1`, userID, at)
	return err
}

func (r *postgresRepository) SetStatus(ctx context.Context, userID string, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $2 WHERE id = $1`, userID, status)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return requireRow(result)
}

func (r *postgresRepository) FindCandidatePool(ctx context.Context, viewer *User, limit int) ([]*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id != $1
		      AND status = 'active'
		      AND ('everyone' = ANY($2::text[]) OR gender = ANY($2::text[]))
		ORDER BY last_active_at DESC NULLS LAST
		LIMIT $3`

	rows, err := r.db.QueryxContext(ctx, query, viewer.ID,
		pq.Array(viewer.Preferences.InterestedIn), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *postgresRepository) GetRecentlyActive(ctx context.Context, since time.Time, limit int) ([]*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE status = 'active' AND last_active_at >= $1
		ORDER BY last_active_at DESC
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var lat, lng *float64

	err := row.Scan(
		&u.ID, &u.DisplayName, &u.Age, &u.Gender, &u.Bio,
		pq.Array(&u.Photos), pq.Array(&u.Interests), &u.HeightCm,
		&lat, &lng, &u.Drinking, &u.Smoking, &u.KidsStance, &u.LookingFor,
		&u.Pace, &u.Preferences, &u.Dealbreakers,
		&u.Premium, &u.Status, &u.LastActiveAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		u.Location = &geo.Point{Lat: *lat, Lon: *lng}
	}

	return &u, nil
}

func scanUsers(rows *sqlx.Rows) ([]*User, error) {
	users := []*User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

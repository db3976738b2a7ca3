// internal/dating/admin.go

package dating

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type AdminService struct {
	db *sqlx.DB
}

type MatchingStats struct {
	TotalUsers     int64     `json:"total_users" db:"total_users"`
	ActiveUsers    int64     `json:"active_users" db:"active_users"`
	BannedUsers    int64     `json:"banned_users" db:"banned_users"`
	TotalSwipes    int64     `json:"total_swipes" db:"total_swipes"`
	LikeRate       float64   `json:"like_rate" db:"like_rate"`
	TotalMatches   int64     `json:"total_matches" db:"total_matches"`
	ActiveMatches  int64     `json:"active_matches" db:"active_matches"`
	AverageScore   float64   `json:"average_score" db:"average_score"`
	ReportsLast30d int64     `json:"reports_last_30d" db:"reports_last_30d"`
	LastUpdated    time.Time `json:"last_updated"`
}

func NewAdminService(db *sqlx.DB) *AdminService {
	return &AdminService{db: db}
}

func (a *AdminService) GetMatchingStats(ctx context.Context) (*MatchingStats, error) {
	stats := &MatchingStats{
		LastUpdated: time.Now(),
	}

	userQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN last_active_at > NOW() - INTERVAL '30 days' THEN 1 END) as active,
			COUNT(CASE WHEN status = 'banned' THEN 1 END) as banned
		FROM users
	`
	err := a.db.QueryRowContext(ctx, userQuery).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.BannedUsers,
	)
	if err != nil {
		return nil, err
	}

	swipeQuery := `
		SELECT
			COUNT(*) as total,
			COALESCE(COUNT(CASE WHEN direction = 'like' THEN 1 END)::FLOAT /
			NULLIF(COUNT(*), 0), 0) as like_rate
		FROM swipes
	`
	err = a.db.QueryRowContext(ctx, swipeQuery).Scan(
		&stats.TotalSwipes,
		&stats.LikeRate,
	)
	if err != nil {
		return nil, err
	}

	matchQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN state = 'ACTIVE' THEN 1 END) as active,
			COALESCE(AVG(score), 0) as avg_score
		FROM matches
	`
	err = a.db.QueryRowContext(ctx, matchQuery).Scan(
		&stats.TotalMatches,
		&stats.ActiveMatches,
		&stats.AverageScore,
	)
	if err != nil {
		return nil, err
	}

	reportQuery := `
		SELECT COUNT(*) FROM reports
		WHERE created_at > NOW() - INTERVAL '30 days'
	`
	err = a.db.GetContext(ctx, &stats.ReportsLast30d, reportQuery)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ReviewReportedUsers lists users whose report count is approaching or
// past the ban threshold, for manual follow-up.
func (a *AdminService) ReviewReportedUsers(ctx context.Context, minReports int) ([]*ReportedUser, error) {
	query := `
		SELECT
			u.id as user_id,
			u.display_name,
			u.status,
			COUNT(DISTINCT r.reporter_id) as report_count,
			MAX(r.created_at) as last_report
		FROM users u
		JOIN reports r ON u.id = r.target_id
		GROUP BY u.id, u.display_name, u.status
		HAVING COUNT(DISTINCT r.reporter_id) >= $1
		ORDER BY COUNT(DISTINCT r.reporter_id) DESC
	`

	rows, err := a.db.QueryxContext(ctx, query, minReports)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reported []*ReportedUser
	for rows.Next() {
		var user ReportedUser
		if err := rows.StructScan(&user); err != nil {
			return nil, err
		}
		reported = append(reported, &user)
	}

	return reported, rows.Err()
}

type ReportedUser struct {
	UserID      string    `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Status      string    `json:"status" db:"status"`
	ReportCount int       `json:"report_count" db:"report_count"`
	LastReport  time.Time `json:"last_report" db:"last_report"`
}

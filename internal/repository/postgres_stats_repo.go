package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresStatsRepo はPostgreSQLを使用したダッシュボード集計リポジトリ。
type PostgresStatsRepo struct {
	db *sql.DB
}

// NewPostgresStatsRepo はPostgresStatsRepoを生成する。
func NewPostgresStatsRepo(db *sql.DB) *PostgresStatsRepo {
	return &PostgresStatsRepo{db: db}
}

// TotalByUser はユーザーの応募総数を返す。
func (r *PostgresStatsRepo) TotalByUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return total, nil
}

// CountByStatus はユーザーの応募をステータス別に集計する。
// 件数ゼロのステータスはマップに含まれない。
func (r *PostgresStatsRepo) CountByStatus(ctx context.Context, userID string) (map[model.ApplicationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE user_id = $1 GROUP BY status`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ApplicationStatus]int)
	for rows.Next() {
		var status model.ApplicationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status count rows: %w", err)
	}

	return counts, nil
}

// RecentByUser はユーザーの直近の応募をcreated_at降順でlimit件返す。
func (r *PostgresStatsRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app := &model.Application{}
		err := rows.Scan(
			&app.ID, &app.UserID, &app.CompanyName, &app.PositionTitle, &app.JobDescription,
			&app.Location, &app.SalaryRange, &app.JobURL, &app.Status, &app.Priority,
			&app.AppliedDate, &app.FollowUpDate, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent application rows: %w", err)
	}

	return apps, nil
}

// CountByMonth はユーザーの応募を応募日の月別に集計し、新しい月からlimit件返す。
func (r *PostgresStatsRepo) CountByMonth(ctx context.Context, userID string, limit int) ([]MonthlyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(applied_date, 'YYYY-MM') AS month, COUNT(*)
		 FROM applications
		 WHERE user_id = $1
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by month: %w", err)
	}
	defer rows.Close()

	var counts []MonthlyCount
	for rows.Next() {
		var mc MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count row: %w", err)
		}
		counts = append(counts, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly count rows: %w", err)
	}

	return counts, nil
}

// compile-time interface check
var _ StatsRepository = (*PostgresStatsRepo)(nil)

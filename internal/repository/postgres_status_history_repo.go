package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresStatusHistoryRepo はPostgreSQLを使用したステータス履歴リポジトリ。
type PostgresStatusHistoryRepo struct {
	db *sql.DB
}

// NewPostgresStatusHistoryRepo はPostgresStatusHistoryRepoを生成する。
func NewPostgresStatusHistoryRepo(db *sql.DB) *PostgresStatusHistoryRepo {
	return &PostgresStatusHistoryRepo{db: db}
}

// ListByApplication は応募のステータス履歴をchanged_at降順で返す。
func (r *PostgresStatusHistoryRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.StatusHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, application_id, status, notes, changed_at
		 FROM status_history
		 WHERE application_id = $1
		 ORDER BY changed_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var history []*model.StatusHistory
	for rows.Next() {
		h := &model.StatusHistory{}
		if err := rows.Scan(&h.ID, &h.ApplicationID, &h.Status, &h.Notes, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status history rows: %w", err)
	}

	return history, nil
}

// DeleteOlderThan は指定日時より古い履歴行を削除し、削除件数を返す。
func (r *PostgresStatusHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM status_history WHERE changed_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old status history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// compile-time interface check
var _ StatusHistoryRepository = (*PostgresStatusHistoryRepo)(nil)

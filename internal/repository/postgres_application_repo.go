package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/jobtrack/internal/model"
)

// applicationColumns はapplicationsテーブルのSELECT対象カラム。
const applicationColumns = `id, user_id, company_name, position_title, job_description,
	location, salary_range, job_url, status, priority,
	applied_date, follow_up_date, notes, created_at, updated_at`

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

// Create は応募と初回ステータス履歴を同一トランザクションで作成する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.Application, initialHistory *model.StatusHistory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (
			id, user_id, company_name, position_title, job_description,
			location, salary_range, job_url, status, priority,
			applied_date, follow_up_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		app.ID, app.UserID, app.CompanyName, app.PositionTitle, app.JobDescription,
		app.Location, app.SalaryRange, app.JobURL, app.Status, app.Priority,
		app.AppliedDate, app.FollowUpDate, app.Notes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_history (id, application_id, status, notes, changed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		initialHistory.ID, initialHistory.ApplicationID, initialHistory.Status,
		initialHistory.Notes, initialHistory.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert initial status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有の応募を取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresApplicationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}

	return app, nil
}

// ListByUser はユーザーの応募一覧を子リソース件数付きで返す。
// ソート項目はホワイトリスト検証済みのApplicationSortKeyのみ受け入れるため、
// SQL組み立てに利用しても注入の余地はない。
func (r *PostgresApplicationRepo) ListByUser(ctx context.Context, userID string, opts ApplicationListOptions) ([]ApplicationWithCounts, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT
		a.id, a.user_id, a.company_name, a.position_title, a.job_description,
		a.location, a.salary_range, a.job_url, a.status, a.priority,
		a.applied_date, a.follow_up_date, a.notes, a.created_at, a.updated_at,
		COUNT(DISTINCT i.id) AS interview_count,
		COUNT(DISTINCT d.id) AS document_count,
		COUNT(DISTINCT c.id) AS contact_count
	FROM applications a
	LEFT JOIN interviews i ON a.id = i.application_id
	LEFT JOIN documents d ON a.id = d.application_id
	LEFT JOIN contacts c ON a.id = c.application_id
	WHERE a.user_id = $1`)

	args := []any{userID}
	paramIndex := 2

	if opts.Status != "" {
		fmt.Fprintf(&sb, " AND a.status = $%d", paramIndex)
		args = append(args, opts.Status)
		paramIndex++
	}

	if opts.Search != "" {
		fmt.Fprintf(&sb,
			" AND (a.company_name ILIKE $%d OR a.position_title ILIKE $%d)",
			paramIndex, paramIndex,
		)
		args = append(args, "%"+opts.Search+"%")
		paramIndex++
	}

	sb.WriteString(" GROUP BY a.id")

	sortBy := opts.SortBy
	if !sortBy.IsValid() {
		sortBy = SortByAppliedDate
	}
	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY a.%s %s", sortBy, order)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var results []ApplicationWithCounts
	for rows.Next() {
		var item ApplicationWithCounts
		err := rows.Scan(
			&item.ID, &item.UserID, &item.CompanyName, &item.PositionTitle, &item.JobDescription,
			&item.Location, &item.SalaryRange, &item.JobURL, &item.Status, &item.Priority,
			&item.AppliedDate, &item.FollowUpDate, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
			&item.Counts.Interviews, &item.Counts.Documents, &item.Counts.Contacts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate application rows: %w", err)
	}

	return results, nil
}

// Update は応募を更新する。ステータスが変化した場合のみhistoryを同一トランザクションで追記する。
func (r *PostgresApplicationRepo) Update(ctx context.Context, app *model.Application, history *model.StatusHistory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE applications SET
			company_name = $1,
			position_title = $2,
			job_description = $3,
			location = $4,
			salary_range = $5,
			job_url = $6,
			status = $7,
			priority = $8,
			applied_date = $9,
			follow_up_date = $10,
			notes = $11,
			updated_at = $12
		WHERE id = $13 AND user_id = $14`,
		app.CompanyName, app.PositionTitle, app.JobDescription,
		app.Location, app.SalaryRange, app.JobURL, app.Status, app.Priority,
		app.AppliedDate, app.FollowUpDate, app.Notes, app.UpdatedAt,
		app.ID, app.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if history != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO status_history (id, application_id, status, notes, changed_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			history.ID, history.ApplicationID, history.Status, history.Notes, history.ChangedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert status history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteByIDAndUser は指定IDかつ指定ユーザー所有の応募を削除する。
// 削除対象が存在しない場合はfalseを返す。
func (r *PostgresApplicationRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// scanApplication は1行分の応募をスキャンする。
func scanApplication(row *sql.Row) (*model.Application, error) {
	app := &model.Application{}
	err := row.Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.PositionTitle, &app.JobDescription,
		&app.Location, &app.SalaryRange, &app.JobURL, &app.Status, &app.Priority,
		&app.AppliedDate, &app.FollowUpDate, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)

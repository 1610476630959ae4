package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresInterviewRepo はPostgreSQLを使用した面接リポジトリ。
type PostgresInterviewRepo struct {
	db *sql.DB
}

// NewPostgresInterviewRepo はPostgresInterviewRepoを生成する。
func NewPostgresInterviewRepo(db *sql.DB) *PostgresInterviewRepo {
	return &PostgresInterviewRepo{db: db}
}

// Create は面接を作成する。
func (r *PostgresInterviewRepo) Create(ctx context.Context, interview *model.Interview) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interviews (
			id, application_id, interview_type, scheduled_at,
			duration_minutes, location, interviewer_names, notes, completed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		interview.ID, interview.ApplicationID, interview.InterviewType, interview.ScheduledAt,
		interview.DurationMinutes, interview.Location, interview.InterviewerNames,
		interview.Notes, interview.Completed, interview.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}
	return nil
}

// ListByApplication は応募の面接一覧をscheduled_at昇順で返す。
func (r *PostgresInterviewRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, application_id, interview_type, scheduled_at,
			duration_minutes, location, interviewer_names, notes, completed, created_at
		 FROM interviews
		 WHERE application_id = $1
		 ORDER BY scheduled_at ASC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*model.Interview
	for rows.Next() {
		iv := &model.Interview{}
		err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.InterviewType, &iv.ScheduledAt,
			&iv.DurationMinutes, &iv.Location, &iv.InterviewerNames,
			&iv.Notes, &iv.Completed, &iv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview row: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interview rows: %w", err)
	}

	return interviews, nil
}

// FindByIDAndUser は指定IDの面接を、所有する応募のユーザーIDで絞り込んで取得する。
// 所有権は応募テーブルとのJOINで推移的に検証する。見つからない場合はnilを返す。
func (r *PostgresInterviewRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Interview, error) {
	iv := &model.Interview{}
	err := r.db.QueryRowContext(ctx,
		`SELECT i.id, i.application_id, i.interview_type, i.scheduled_at,
			i.duration_minutes, i.location, i.interviewer_names, i.notes, i.completed, i.created_at
		 FROM interviews i
		 JOIN applications a ON i.application_id = a.id
		 WHERE i.id = $1 AND a.user_id = $2`,
		id, userID,
	).Scan(&iv.ID, &iv.ApplicationID, &iv.InterviewType, &iv.ScheduledAt,
		&iv.DurationMinutes, &iv.Location, &iv.InterviewerNames,
		&iv.Notes, &iv.Completed, &iv.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}

	return iv, nil
}

// Update は面接を更新する。
func (r *PostgresInterviewRepo) Update(ctx context.Context, interview *model.Interview) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interviews SET
			interview_type = $1,
			scheduled_at = $2,
			duration_minutes = $3,
			location = $4,
			interviewer_names = $5,
			notes = $6,
			completed = $7
		WHERE id = $8`,
		interview.InterviewType, interview.ScheduledAt, interview.DurationMinutes,
		interview.Location, interview.InterviewerNames, interview.Notes,
		interview.Completed, interview.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの面接を削除する。
func (r *PostgresInterviewRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	return nil
}

// ListUpcomingByUser は指定ユーザーの今後windowDays日以内の未完了面接を
// 応募情報付きでscheduled_at昇順で返す。
func (r *PostgresInterviewRepo) ListUpcomingByUser(ctx context.Context, userID string, windowDays int) ([]*model.UpcomingInterview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.application_id, i.interview_type, i.scheduled_at,
			i.duration_minutes, i.location, i.interviewer_names, i.notes, i.completed, i.created_at,
			a.company_name, a.position_title
		 FROM interviews i
		 JOIN applications a ON i.application_id = a.id
		 WHERE a.user_id = $1
		   AND i.scheduled_at >= now()
		   AND i.scheduled_at <= now() + make_interval(days => $2)
		   AND i.completed = FALSE
		 ORDER BY i.scheduled_at ASC`,
		userID, windowDays,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*model.UpcomingInterview
	for rows.Next() {
		iv := &model.UpcomingInterview{}
		err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.InterviewType, &iv.ScheduledAt,
			&iv.DurationMinutes, &iv.Location, &iv.InterviewerNames,
			&iv.Notes, &iv.Completed, &iv.CreatedAt,
			&iv.CompanyName, &iv.PositionTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upcoming interview row: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upcoming interview rows: %w", err)
	}

	return interviews, nil
}

// compile-time interface check
var _ InterviewRepository = (*PostgresInterviewRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresContactRepo はPostgreSQLを使用した連絡先リポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

// Create は連絡先を作成する。
func (r *PostgresContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, application_id, name, role, email, phone, linkedin_url, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		contact.ID, contact.ApplicationID, contact.Name, contact.Role,
		contact.Email, contact.Phone, contact.LinkedinURL, contact.Notes, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// ListByApplication は応募の連絡先一覧をcreated_at降順で返す。
func (r *PostgresContactRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, application_id, name, role, email, phone, linkedin_url, notes, created_at
		 FROM contacts
		 WHERE application_id = $1
		 ORDER BY created_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		c := &model.Contact{}
		err := rows.Scan(&c.ID, &c.ApplicationID, &c.Name, &c.Role,
			&c.Email, &c.Phone, &c.LinkedinURL, &c.Notes, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contact rows: %w", err)
	}

	return contacts, nil
}

// FindByIDAndUser は指定IDの連絡先を、所有する応募のユーザーIDで絞り込んで取得する。
// 所有権は応募テーブルとのJOINで推移的に検証する。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Contact, error) {
	c := &model.Contact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT c.id, c.application_id, c.name, c.role, c.email, c.phone, c.linkedin_url, c.notes, c.created_at
		 FROM contacts c
		 JOIN applications a ON c.application_id = a.id
		 WHERE c.id = $1 AND a.user_id = $2`,
		id, userID,
	).Scan(&c.ID, &c.ApplicationID, &c.Name, &c.Role,
		&c.Email, &c.Phone, &c.LinkedinURL, &c.Notes, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	return c, nil
}

// Update は連絡先を更新する。
func (r *PostgresContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET
			name = $1,
			role = $2,
			email = $3,
			phone = $4,
			linkedin_url = $5,
			notes = $6
		WHERE id = $7`,
		contact.Name, contact.Role, contact.Email, contact.Phone,
		contact.LinkedinURL, contact.Notes, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの連絡先を削除する。
func (r *PostgresContactRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresDocumentRepo はPostgreSQLを使用した書類メタデータリポジトリ。
type PostgresDocumentRepo struct {
	db *sql.DB
}

// NewPostgresDocumentRepo はPostgresDocumentRepoを生成する。
func NewPostgresDocumentRepo(db *sql.DB) *PostgresDocumentRepo {
	return &PostgresDocumentRepo{db: db}
}

// ListByApplication は応募の書類一覧をuploaded_at降順で返す。
func (r *PostgresDocumentRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, application_id, document_type, file_name, file_url, storage_key, uploaded_at
		 FROM documents
		 WHERE application_id = $1
		 ORDER BY uploaded_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []*model.Document
	for rows.Next() {
		d := &model.Document{}
		err := rows.Scan(&d.ID, &d.ApplicationID, &d.DocumentType,
			&d.FileName, &d.FileURL, &d.StorageKey, &d.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}

	return documents, nil
}

// compile-time interface check
var _ DocumentRepository = (*PostgresDocumentRepo)(nil)

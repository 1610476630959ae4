// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/jobtrack/internal/model"
)

// ErrDuplicateEmail は登録済みメールアドレスでのユーザー作成が
// 一意制約に衝突したことを示すセンチネルエラー。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は小文字正規化済みメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// ApplicationSortKey は応募一覧のソート項目。ホワイトリスト方式で検証する。
type ApplicationSortKey string

const (
	SortByAppliedDate   ApplicationSortKey = "applied_date"
	SortByCompanyName   ApplicationSortKey = "company_name"
	SortByPositionTitle ApplicationSortKey = "position_title"
	SortByStatus        ApplicationSortKey = "status"
	SortByPriority      ApplicationSortKey = "priority"
)

// IsValid はソート項目が定義済みの値かどうかを判定する。
func (k ApplicationSortKey) IsValid() bool {
	switch k {
	case SortByAppliedDate, SortByCompanyName, SortByPositionTitle, SortByStatus, SortByPriority:
		return true
	default:
		return false
	}
}

// ApplicationListOptions は応募一覧の絞り込み・ソート条件。
type ApplicationListOptions struct {
	Status     model.ApplicationStatus // 空の場合は全ステータス
	Search     string                  // 企業名・職種名の部分一致（大文字小文字を区別しない）
	SortBy     ApplicationSortKey
	Descending bool
}

// ApplicationWithCounts は応募と子リソース件数を結合した一覧表示用の構造体。
type ApplicationWithCounts struct {
	model.Application
	Counts model.ApplicationCounts
}

// ApplicationRepository は応募データの永続化インターフェース。
// 全操作がユーザーIDで所有権を強制する。応募IDだけでは決して認可しない。
type ApplicationRepository interface {
	// Create は応募と初回ステータス履歴を同一トランザクションで作成する。
	Create(ctx context.Context, app *model.Application, initialHistory *model.StatusHistory) error

	// FindByIDAndUser は指定IDかつ指定ユーザー所有の応募を取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Application, error)

	// ListByUser はユーザーの応募一覧を子リソース件数付きで返す。
	ListByUser(ctx context.Context, userID string, opts ApplicationListOptions) ([]ApplicationWithCounts, error)

	// Update は応募を更新する。ステータスが変化した場合のみhistoryを同一トランザクションで追記する。
	// historyがnilの場合は応募の更新のみを行う。
	Update(ctx context.Context, app *model.Application, history *model.StatusHistory) error

	// DeleteByIDAndUser は指定IDかつ指定ユーザー所有の応募を削除する。
	// 削除対象が存在しない場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}

// StatusHistoryRepository はステータス履歴の永続化インターフェース。
type StatusHistoryRepository interface {
	// ListByApplication は応募のステータス履歴をchanged_at降順で返す。
	ListByApplication(ctx context.Context, applicationID string) ([]*model.StatusHistory, error)

	// DeleteOlderThan は指定日時より古い履歴行を削除し、削除件数を返す。
	// 保持期間を過ぎた履歴の定期削除に使用する。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ContactRepository は連絡先データの永続化インターフェース。
// 所有権は応募テーブルとのJOINで推移的に強制する。
type ContactRepository interface {
	// Create は連絡先を作成する。呼び出し側が先に応募の所有権を確認すること。
	Create(ctx context.Context, contact *model.Contact) error

	// ListByApplication は応募の連絡先一覧をcreated_at降順で返す。
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Contact, error)

	// FindByIDAndUser は指定IDの連絡先を、所有する応募のユーザーIDで絞り込んで取得する。
	// 見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Contact, error)

	// Update は連絡先を更新する。
	Update(ctx context.Context, contact *model.Contact) error

	// DeleteByID は指定IDの連絡先を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// InterviewRepository は面接データの永続化インターフェース。
// 所有権は応募テーブルとのJOINで推移的に強制する。
type InterviewRepository interface {
	// Create は面接を作成する。呼び出し側が先に応募の所有権を確認すること。
	Create(ctx context.Context, interview *model.Interview) error

	// ListByApplication は応募の面接一覧をscheduled_at昇順で返す。
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error)

	// FindByIDAndUser は指定IDの面接を、所有する応募のユーザーIDで絞り込んで取得する。
	// 見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Interview, error)

	// Update は面接を更新する。
	Update(ctx context.Context, interview *model.Interview) error

	// DeleteByID は指定IDの面接を削除する。
	DeleteByID(ctx context.Context, id string) error

	// ListUpcomingByUser は指定ユーザーの今後windowDays日以内の未完了面接を
	// 応募情報付きでscheduled_at昇順で返す。
	ListUpcomingByUser(ctx context.Context, userID string, windowDays int) ([]*model.UpcomingInterview, error)
}

// DocumentRepository は書類メタデータの永続化インターフェース。
type DocumentRepository interface {
	// ListByApplication は応募の書類一覧をuploaded_at降順で返す。
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Document, error)
}

// MonthlyCount は月別の応募件数。
type MonthlyCount struct {
	Month string // "YYYY-MM"
	Count int
}

// StatsRepository はダッシュボード集計クエリのインターフェース。
type StatsRepository interface {
	// TotalByUser はユーザーの応募総数を返す。
	TotalByUser(ctx context.Context, userID string) (int, error)

	// CountByStatus はユーザーの応募をステータス別に集計する。
	// 件数ゼロのステータスはマップに含まれない（ゼロ埋めはサービス層で行う）。
	CountByStatus(ctx context.Context, userID string) (map[model.ApplicationStatus]int, error)

	// RecentByUser はユーザーの直近の応募をcreated_at降順でlimit件返す。
	RecentByUser(ctx context.Context, userID string, limit int) ([]*model.Application, error)

	// CountByMonth はユーザーの応募を応募日の月別に集計し、新しい月からlimit件返す。
	CountByMonth(ctx context.Context, userID string, limit int) ([]MonthlyCount, error)
}

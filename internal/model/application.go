// Package model はドメインモデルを定義する。
package model

import "time"

// Application は求人応募を表す。
// すべての応募はユーザーに所有され、子リソース（連絡先・面接・書類・ステータス履歴）は
// 所有する応募を経由してのみ到達できる。
type Application struct {
	ID             string
	UserID         string
	CompanyName    string
	PositionTitle  string
	JobDescription string
	Location       string
	SalaryRange    string
	JobURL         string
	Status         ApplicationStatus
	Priority       Priority
	AppliedDate    time.Time
	FollowUpDate   *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ApplicationStatus は応募の選考状態を表す。
type ApplicationStatus string

const (
	// StatusApplied は応募済みの状態。
	StatusApplied ApplicationStatus = "applied"
	// StatusPhoneScreen は電話面談の状態。
	StatusPhoneScreen ApplicationStatus = "phone_screen"
	// StatusInterview は面接中の状態。
	StatusInterview ApplicationStatus = "interview"
	// StatusOffer はオファー受領の状態。
	StatusOffer ApplicationStatus = "offer"
	// StatusRejected は不採用の状態。
	StatusRejected ApplicationStatus = "rejected"
	// StatusWithdrawn は辞退した状態。
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// AllStatuses は定義済みの全ステータスを宣言順で返す。
// ダッシュボードのステータス別集計のゼロ埋めに使用する。
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusApplied,
		StatusPhoneScreen,
		StatusInterview,
		StatusOffer,
		StatusRejected,
		StatusWithdrawn,
	}
}

// IsValid はステータスが定義済みの値かどうかを判定する。
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusPhoneScreen, StatusInterview,
		StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// Priority は応募の優先度を表す。
type Priority string

const (
	// PriorityLow は低優先度。
	PriorityLow Priority = "low"
	// PriorityMedium は中優先度。
	PriorityMedium Priority = "medium"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "high"
)

// IsValid は優先度が定義済みの値かどうかを判定する。
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// StatusHistory は応募ステータスの遷移履歴を表す。
// ステータスが実際に変化したときのみ追記される。
type StatusHistory struct {
	ID            string
	ApplicationID string
	Status        ApplicationStatus
	Notes         string
	ChangedAt     time.Time
}

// ApplicationCounts は応募に紐づく子リソースの件数集計。
type ApplicationCounts struct {
	Interviews int
	Documents  int
	Contacts   int
}

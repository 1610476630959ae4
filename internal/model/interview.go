// Package model はドメインモデルを定義する。
package model

import "time"

// Interview は応募に紐づく面接予定を表す。
type Interview struct {
	ID               string
	ApplicationID    string
	InterviewType    string
	ScheduledAt      time.Time
	DurationMinutes  int
	Location         string
	InterviewerNames string
	Notes            string
	Completed        bool
	CreatedAt        time.Time
}

// UpcomingInterview はダッシュボード表示用に応募情報を付加した面接予定。
type UpcomingInterview struct {
	Interview
	CompanyName   string
	PositionTitle string
}

// Document は応募に添付された書類（履歴書・職務経歴書等）のメタデータを表す。
// ファイル本体は外部ストレージに置かれ、StorageKeyで参照する。
type Document struct {
	ID            string
	ApplicationID string
	DocumentType  string
	FileName      string
	FileURL       string
	StorageKey    string
	UploadedAt    time.Time
}

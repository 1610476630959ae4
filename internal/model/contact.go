// Package model はドメインモデルを定義する。
package model

import "time"

// Contact は応募先企業の連絡先を表す。
// 所有する応募を経由してのみ到達できる。
type Contact struct {
	ID            string
	ApplicationID string
	Name          string
	Role          string
	Email         string
	Phone         string
	LinkedinURL   string
	Notes         string
	CreatedAt     time.Time
}

package model

import "time"

// ApprovalStatus は書籍の承認ワークフローの状態を表す。
// 遷移は pending→approved または pending→rejected のみ。決定後の再遷移は認めない。
type ApprovalStatus string

const (
	// ApprovalStatusPending は承認待ち状態。登録直後の初期状態。
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusApproved は承認済み状態（終端）。
	ApprovalStatusApproved ApprovalStatus = "approved"
	// ApprovalStatusRejected は却下状態（終端）。
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// IsValid は承認状態が定義済みの値であることを検証する。
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalStatusPending || s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// Book は蔵書カタログの書籍を表す。
// ReviewedBy / ReviewedAt は承認・却下の決定時にのみ設定される。
type Book struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Author         string         `json:"author"`
	ISBN           string         `json:"isbn"`
	Category       string         `json:"category"`
	Availability   bool           `json:"availability"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	RequestedBy    string         `json:"requested_by"`
	ReviewedBy     *string        `json:"reviewed_by"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

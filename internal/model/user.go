// Package model はドメインモデルを定義する。
package model

import "time"

// Role はアクセス制御に使用するユーザーロールを表す。
type Role string

const (
	// RoleAdmin は管理者ロール。書籍の承認・編集・削除、会員管理、ユーザー管理が可能。
	RoleAdmin Role = "admin"
	// RoleMember は一般会員ロール。承認済み書籍の閲覧と書籍の登録申請のみ可能。
	RoleMember Role = "member"
)

// IsValid はロールが定義済みの値であることを検証する。
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User はサービス利用ユーザーを表す。認証情報の所有者。
// PasswordHashは外部表現（JSON）には決して含めない。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package model

import "time"

// Member は図書館の会員記録を表す。
// Userとは独立した集約であり、RoleフィールドはあくまでもUser側と
// 連動しない会員メタデータとして保持する。
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MembershipID string    `json:"membership_id"`
	Role         Role      `json:"role"`
	// BorrowedBookIDs は貸出中書籍のID列（順序保持）。
	// 常にIDのみを永続化し、展開はリードパスで行う。
	BorrowedBookIDs []string  `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BorrowedBook は貸出中書籍のリードパス用部分射影。
// 参照先の書籍が削除済みの場合、Bookはnilのまま返す（参照整合性は保証しない）。
type BorrowedBook struct {
	BookID string         `json:"book_id"`
	Book   *BorrowedBookInfo `json:"book"`
}

// BorrowedBookInfo は表示用に展開した書籍情報。
type BorrowedBookInfo struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	ISBN         string `json:"isbn"`
	Availability bool   `json:"availability"`
}

// MemberWithBooks は会員と展開済み貸出書籍を結合したリードモデル。
type MemberWithBooks struct {
	Member
	BorrowedBooks []BorrowedBook `json:"borrowed_books"`
}

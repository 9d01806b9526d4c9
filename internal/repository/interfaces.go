// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/librarium/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレス重複時はDuplicateKeyエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを作成日時順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// UpdateRole は指定ユーザーのロールを更新する。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// DeleteByID は指定IDのユーザーを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// BookRepository は書籍データの永続化インターフェース。
type BookRepository interface {
	// Create は書籍を作成する。ISBN重複時はDuplicateKeyエラーを返す。
	Create(ctx context.Context, book *model.Book) error

	// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Book, error)

	// FindByIDs は複数IDの書籍をまとめて取得し、ID→書籍のマップで返す。
	// 存在しないIDはマップに含めない（参照切れの検出はリードパスで行う）。
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Book, error)

	// ListAll は全書籍を作成日時降順で返す。
	ListAll(ctx context.Context) ([]*model.Book, error)

	// ListByStatus は指定承認状態の書籍を作成日時降順で返す。
	ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]*model.Book, error)

	// Update は書籍情報を更新する。
	Update(ctx context.Context, book *model.Book) error

	// DeleteByID は指定IDの書籍を削除する。
	// 会員のborrowed_booksに残る参照は削除しない（仕様どおり参照切れを許容する）。
	DeleteByID(ctx context.Context, id string) error

	// Decide は承認状態を条件付き更新（compare-and-swap）で遷移させる。
	// approval_status = 'pending' の行にのみ書き込み、遷移できた場合はtrueを返す。
	// 並行する承認・却下が同一書籍で競合しても片方しか成立しない。
	Decide(ctx context.Context, bookID, reviewerID string, status model.ApprovalStatus, decidedAt time.Time) (bool, error)
}

// MemberRepository は会員データの永続化インターフェース。
type MemberRepository interface {
	// Create は会員と貸出書籍ID列を同一トランザクションで作成する。
	// メールアドレスまたは会員番号の重複時はDuplicateKeyエラーを返す。
	Create(ctx context.Context, member *model.Member) error

	// FindByID は指定IDの会員を貸出書籍ID列付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Member, error)

	// List は全会員を貸出書籍ID列付きで作成日時順に返す。
	List(ctx context.Context) ([]*model.Member, error)

	// Update は会員情報を更新し、貸出書籍ID列を渡された内容で置き換える。
	Update(ctx context.Context, member *model.Member) error

	// DeleteByID は指定IDの会員を削除する。貸出書籍ID列はCASCADE削除される。
	// 参照されていた書籍自体には影響しない。
	DeleteByID(ctx context.Context, id string) error
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/librarium/internal/model"
)

// PostgresMemberRepo はPostgreSQLを使用した会員リポジトリ。
// 貸出書籍ID列はmember_borrowed_booksテーブルにposition順で保持する。
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo はPostgresMemberRepoを生成する。
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

const memberColumns = `id, name, email, membership_id, role, created_at, updated_at`

// Create は会員と貸出書籍ID列を同一トランザクションで作成する。
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.Member) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO members (id, name, email, membership_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		member.ID, member.Name, member.Email, member.MembershipID, member.Role,
		member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		if dup := translateError(err); dup != err {
			return dup
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if err := insertBorrowedBooks(ctx, tx, member.ID, member.BorrowedBookIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの会員を貸出書籍ID列付きで取得する。見つからない場合はnilを返す。
func (r *PostgresMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	member := &model.Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id,
	).Scan(&member.ID, &member.Name, &member.Email, &member.MembershipID, &member.Role,
		&member.CreatedAt, &member.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by ID: %w", err)
	}

	bookIDs, err := r.borrowedBookIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	member.BorrowedBookIDs = bookIDs

	return member, nil
}

// List は全会員を貸出書籍ID列付きで作成日時順に返す。
func (r *PostgresMemberRepo) List(ctx context.Context) ([]*model.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*model.Member{}
	byID := map[string]*model.Member{}
	for rows.Next() {
		member := &model.Member{BorrowedBookIDs: []string{}}
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.MembershipID,
			&member.Role, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
		byID[member.ID] = member
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	// 貸出書籍IDを一括で取得して各会員に振り分ける
	bookRows, err := r.db.QueryContext(ctx,
		`SELECT member_id, book_id FROM member_borrowed_books ORDER BY member_id, position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowed books: %w", err)
	}
	defer bookRows.Close()

	for bookRows.Next() {
		var memberID, bookID string
		if err := bookRows.Scan(&memberID, &bookID); err != nil {
			return nil, fmt.Errorf("failed to scan borrowed book: %w", err)
		}
		if member, ok := byID[memberID]; ok {
			member.BorrowedBookIDs = append(member.BorrowedBookIDs, bookID)
		}
	}
	if err := bookRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrowed books: %w", err)
	}

	return members, nil
}

// Update は会員情報を更新し、貸出書籍ID列を渡された内容で置き換える。
func (r *PostgresMemberRepo) Update(ctx context.Context, member *model.Member) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE members
		 SET name = $1, email = $2, membership_id = $3, role = $4, updated_at = now()
		 WHERE id = $5`,
		member.Name, member.Email, member.MembershipID, member.Role, member.ID,
	)
	if err != nil {
		if dup := translateError(err); dup != err {
			return dup
		}
		return fmt.Errorf("failed to update member: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewMemberNotFoundError(member.ID)
	}

	// 貸出書籍ID列を全置換する
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM member_borrowed_books WHERE member_id = $1`, member.ID,
	); err != nil {
		return fmt.Errorf("failed to clear borrowed books: %w", err)
	}
	if err := insertBorrowedBooks(ctx, tx, member.ID, member.BorrowedBookIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteByID は指定IDの会員を削除する。貸出書籍ID列はCASCADE削除される。
func (r *PostgresMemberRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewMemberNotFoundError(id)
	}
	return nil
}

// borrowedBookIDs は会員の貸出書籍IDをposition順で取得する。
func (r *PostgresMemberRepo) borrowedBookIDs(ctx context.Context, memberID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT book_id FROM member_borrowed_books WHERE member_id = $1 ORDER BY position ASC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowed books: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan borrowed book: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrowed books: %w", err)
	}

	return ids, nil
}

// insertBorrowedBooks は貸出書籍ID列をposition付きで挿入する。
func insertBorrowedBooks(ctx context.Context, tx *sql.Tx, memberID string, bookIDs []string) error {
	for i, bookID := range bookIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO member_borrowed_books (member_id, position, book_id) VALUES ($1, $2, $3)`,
			memberID, i, bookID,
		); err != nil {
			return fmt.Errorf("failed to insert borrowed book: %w", err)
		}
	}
	return nil
}

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)

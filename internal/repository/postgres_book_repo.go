package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/librarium/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

const bookColumns = `id, title, author, isbn, category, availability, approval_status,
	requested_by, reviewed_by, reviewed_at, created_at, updated_at`

func scanBookRow(scan func(dest ...any) error) (*model.Book, error) {
	book := &model.Book{}
	err := scan(
		&book.ID, &book.Title, &book.Author, &book.ISBN, &book.Category,
		&book.Availability, &book.ApprovalStatus,
		&book.RequestedBy, &book.ReviewedBy, &book.ReviewedAt,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Create は書籍を作成する。ISBN重複時はDuplicateKeyエラーを返す。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, isbn, category, availability, approval_status,
		                    requested_by, reviewed_by, reviewed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		book.ID, book.Title, book.Author, book.ISBN, book.Category,
		book.Availability, book.ApprovalStatus,
		book.RequestedBy, book.ReviewedBy, book.ReviewedAt,
		book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		if dup := translateError(err); dup != err {
			return dup
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id,
	)
	book, err := scanBookRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return book, nil
}

// FindByIDs は複数IDの書籍をまとめて取得し、ID→書籍のマップで返す。
// 存在しないIDはマップに含めない。
func (r *PostgresBookRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Book, error) {
	books := make(map[string]*model.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find books by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		book, err := scanBookRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books[book.ID] = book
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// ListAll は全書籍を作成日時降順で返す。
func (r *PostgresBookRepo) ListAll(ctx context.Context) ([]*model.Book, error) {
	return r.list(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at DESC`,
	)
}

// ListByStatus は指定承認状態の書籍を作成日時降順で返す。
func (r *PostgresBookRepo) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]*model.Book, error) {
	return r.list(ctx,
		`SELECT `+bookColumns+` FROM books WHERE approval_status = $1 ORDER BY created_at DESC`,
		status,
	)
}

func (r *PostgresBookRepo) list(ctx context.Context, query string, args ...any) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		book, err := scanBookRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// Update は書籍情報を更新する。承認状態のガードは行わない（管理者編集用）。
func (r *PostgresBookRepo) Update(ctx context.Context, book *model.Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books
		 SET title = $1, author = $2, isbn = $3, category = $4, availability = $5, updated_at = now()
		 WHERE id = $6`,
		book.Title, book.Author, book.ISBN, book.Category, book.Availability, book.ID,
	)
	if err != nil {
		if dup := translateError(err); dup != err {
			return dup
		}
		return fmt.Errorf("failed to update book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewBookNotFoundError(book.ID)
	}
	return nil
}

// DeleteByID は指定IDの書籍を削除する。
func (r *PostgresBookRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewBookNotFoundError(id)
	}
	return nil
}

// Decide は承認状態を条件付き更新で遷移させる。
// WHERE句でapproval_status = 'pending'を要求することで、
// 並行する承認・却下の二重決定を排除する（read-then-writeにしない）。
func (r *PostgresBookRepo) Decide(ctx context.Context, bookID, reviewerID string, status model.ApprovalStatus, decidedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books
		 SET approval_status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = now()
		 WHERE id = $4 AND approval_status = $5`,
		status, reviewerID, decidedAt, bookID, model.ApprovalStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to decide book approval: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)

// Package book は書籍カタログと承認ワークフローのドメインロジックを提供する。
package book

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/librarium/internal/model"
	"github.com/hitoshi/librarium/internal/repository"
	"github.com/hitoshi/librarium/internal/security"
)

// DecisionRecorder は承認決定のメトリクス記録インターフェース。
type DecisionRecorder interface {
	RecordApprovalDecision(decision string)
}

// Service は書籍管理のサービス層。
// 承認ワークフロー（pending→approved | pending→rejected、終端）と
// ロールに基づく可視性フィルタを実装する。
type Service struct {
	bookRepo  repository.BookRepository
	sanitizer security.InputSanitizerService
	metrics   DecisionRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（記録しない）。
func NewService(
	bookRepo repository.BookRepository,
	sanitizer security.InputSanitizerService,
	metrics DecisionRecorder,
) *Service {
	return &Service{
		bookRepo:  bookRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// SubmitInput は書籍登録申請の入力。
type SubmitInput struct {
	Title    string
	Author   string
	ISBN     string
	Category string
}

// UpdateInput は管理者による書籍編集の入力。nilフィールドは変更しない。
type UpdateInput struct {
	Title        *string
	Author       *string
	ISBN         *string
	Category     *string
	Availability *bool
}

// Submit は書籍の登録を申請する。認証済みユーザーなら誰でも実行できる。
// 承認状態は常にpendingで作成し、申請者を記録する。ISBN重複はDuplicateKeyエラー。
func (s *Service) Submit(ctx context.Context, requesterID string, input SubmitInput) (*model.Book, error) {
	input.Title = s.sanitizer.Sanitize(input.Title)
	input.Author = s.sanitizer.Sanitize(input.Author)
	input.Category = s.sanitizer.Sanitize(input.Category)

	if fields := validateSubmit(input); len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	now := time.Now()
	book := &model.Book{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Author:         input.Author,
		ISBN:           input.ISBN,
		Category:       input.Category,
		Availability:   true,
		ApprovalStatus: model.ApprovalStatusPending,
		RequestedBy:    requesterID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	slog.Info("book submitted",
		slog.String("book_id", book.ID),
		slog.String("requested_by", requesterID),
	)

	return book, nil
}

// List はロールに基づいてフィルタした書籍一覧を返す。
// 管理者は全状態（statusFilter指定時はその状態のみ）、非管理者は承認済みのみ。
func (s *Service) List(ctx context.Context, caller *model.User, statusFilter string) ([]*model.Book, error) {
	if caller.Role != model.RoleAdmin {
		return s.bookRepo.ListByStatus(ctx, model.ApprovalStatusApproved)
	}

	if statusFilter == "" {
		return s.bookRepo.ListAll(ctx)
	}

	status := model.ApprovalStatus(statusFilter)
	if !status.IsValid() {
		return nil, model.NewValidationError(model.FieldError{
			Field: "status", Message: "status must be pending, approved or rejected",
		})
	}
	return s.bookRepo.ListByStatus(ctx, status)
}

// ListPending は承認待ちの書籍一覧を返す。管理者向け。
func (s *Service) ListPending(ctx context.Context) ([]*model.Book, error) {
	return s.bookRepo.ListByStatus(ctx, model.ApprovalStatusPending)
}

// Get は指定IDの書籍を取得する。
// 非管理者が未承認の書籍を要求した場合はForbiddenを返す（存在は漏らす仕様）。
func (s *Service) Get(ctx context.Context, caller *model.User, bookID string) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}
	if caller.Role != model.RoleAdmin && book.ApprovalStatus != model.ApprovalStatusApproved {
		return nil, model.NewForbiddenError()
	}
	return book, nil
}

// Update は書籍情報を更新する。管理者専用、承認状態のガードは行わない。
func (s *Service) Update(ctx context.Context, bookID string, input UpdateInput) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	if input.Title != nil {
		book.Title = s.sanitizer.Sanitize(*input.Title)
	}
	if input.Author != nil {
		book.Author = s.sanitizer.Sanitize(*input.Author)
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Category != nil {
		book.Category = s.sanitizer.Sanitize(*input.Category)
	}
	if input.Availability != nil {
		book.Availability = *input.Availability
	}

	if fields := validateSubmit(SubmitInput{
		Title: book.Title, Author: book.Author, ISBN: book.ISBN, Category: book.Category,
	}); len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// Delete は書籍を削除する。管理者専用。
// 会員のborrowed_booksに残る参照は削除しない（参照切れを許容する仕様）。
func (s *Service) Delete(ctx context.Context, bookID string) error {
	return s.bookRepo.DeleteByID(ctx, bookID)
}

// Approve は承認待ちの書籍を承認する。決定済みの書籍にはAlreadyDecidedを返す。
func (s *Service) Approve(ctx context.Context, bookID, reviewerID string) (*model.Book, error) {
	return s.decide(ctx, bookID, reviewerID, model.ApprovalStatusApproved)
}

// Reject は承認待ちの書籍を却下する。決定済みの書籍にはAlreadyDecidedを返す。
func (s *Service) Reject(ctx context.Context, bookID, reviewerID string) (*model.Book, error) {
	return s.decide(ctx, bookID, reviewerID, model.ApprovalStatusRejected)
}

// decide は条件付き更新で承認状態を遷移させ、決定者と決定時刻を記録する。
// 更新が成立しなかった場合は現在の状態を読み直して未検出と決定済みを区別する。
func (s *Service) decide(ctx context.Context, bookID, reviewerID string, status model.ApprovalStatus) (*model.Book, error) {
	decidedAt := time.Now()

	ok, err := s.bookRepo.Decide(ctx, bookID, reviewerID, status, decidedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to decide approval: %w", err)
	}
	if !ok {
		book, err := s.bookRepo.FindByID(ctx, bookID)
		if err != nil {
			return nil, fmt.Errorf("failed to get book: %w", err)
		}
		if book == nil {
			return nil, model.NewBookNotFoundError(bookID)
		}
		return nil, model.NewAlreadyDecidedError(bookID, book.ApprovalStatus)
	}

	if s.metrics != nil {
		s.metrics.RecordApprovalDecision(string(status))
	}

	slog.Info("book approval decided",
		slog.String("book_id", bookID),
		slog.String("reviewed_by", reviewerID),
		slog.String("status", string(status)),
	)

	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}
	return book, nil
}

// validateSubmit は書籍入力のバリデーションを行う。
func validateSubmit(input SubmitInput) []model.FieldError {
	var fields []model.FieldError

	if input.Title == "" {
		fields = append(fields, model.FieldError{Field: "title", Message: "title is required"})
	}
	if input.Author == "" {
		fields = append(fields, model.FieldError{Field: "author", Message: "author is required"})
	}
	if input.ISBN == "" {
		fields = append(fields, model.FieldError{Field: "isbn", Message: "isbn is required"})
	}

	return fields
}

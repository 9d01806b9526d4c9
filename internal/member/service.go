// Package member は会員記録のドメインロジックを提供する。
package member

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/librarium/internal/model"
	"github.com/hitoshi/librarium/internal/repository"
	"github.com/hitoshi/librarium/internal/security"
)

// BookFinder は貸出書籍の展開に必要な書籍検索インターフェース。
// repository.BookRepositoryの部分集合として定義する。
type BookFinder interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Book, error)
}

// Service は会員管理のサービス層。
// 書き込みは常に書籍IDのみを受け付け、展開済みオブジェクトへの変換は
// リードパスでのみ行う。
type Service struct {
	memberRepo repository.MemberRepository
	bookFinder BookFinder
	sanitizer  security.InputSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	memberRepo repository.MemberRepository,
	bookFinder BookFinder,
	sanitizer security.InputSanitizerService,
) *Service {
	return &Service{
		memberRepo: memberRepo,
		bookFinder: bookFinder,
		sanitizer:  sanitizer,
	}
}

// CreateInput は会員作成の入力。BorrowedBookIDsは書籍IDのみ。
type CreateInput struct {
	Name            string
	Email           string
	MembershipID    string
	Role            model.Role
	BorrowedBookIDs []string
}

// UpdateInput は会員更新の入力。nilフィールドは変更しない。
type UpdateInput struct {
	Name            *string
	Email           *string
	MembershipID    *string
	Role            *model.Role
	BorrowedBookIDs *[]string
}

// Create は会員を作成する。管理者専用。
// メールアドレス・会員番号の重複はDuplicateKeyエラー。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.MemberWithBooks, error) {
	input.Name = s.sanitizer.Sanitize(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if fields := validateMember(input); len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}
	if input.Role == "" {
		input.Role = model.RoleMember
	}

	now := time.Now()
	member := &model.Member{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Email:           input.Email,
		MembershipID:    input.MembershipID,
		Role:            input.Role,
		BorrowedBookIDs: input.BorrowedBookIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if member.BorrowedBookIDs == nil {
		member.BorrowedBookIDs = []string{}
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return s.expand(ctx, member)
}

// List は全会員を貸出書籍の展開付きで返す。
func (s *Service) List(ctx context.Context) ([]*model.MemberWithBooks, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	result := make([]*model.MemberWithBooks, 0, len(members))
	for _, m := range members {
		expanded, err := s.expand(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, expanded)
	}

	return result, nil
}

// Get は指定IDの会員を貸出書籍の展開付きで返す。
func (s *Service) Get(ctx context.Context, memberID string) (*model.MemberWithBooks, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, model.NewMemberNotFoundError(memberID)
	}

	return s.expand(ctx, member)
}

// Update は会員情報を更新する。管理者専用。
func (s *Service) Update(ctx context.Context, memberID string, input UpdateInput) (*model.MemberWithBooks, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, model.NewMemberNotFoundError(memberID)
	}

	if input.Name != nil {
		member.Name = s.sanitizer.Sanitize(*input.Name)
	}
	if input.Email != nil {
		member.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.MembershipID != nil {
		member.MembershipID = *input.MembershipID
	}
	if input.Role != nil {
		member.Role = *input.Role
	}
	if input.BorrowedBookIDs != nil {
		member.BorrowedBookIDs = *input.BorrowedBookIDs
	}

	if fields := validateMember(CreateInput{
		Name: member.Name, Email: member.Email,
		MembershipID: member.MembershipID, Role: member.Role,
	}); len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return s.expand(ctx, member)
}

// Delete は会員を削除する。管理者専用。
// 参照されていた書籍ドキュメントには波及しない。
func (s *Service) Delete(ctx context.Context, memberID string) error {
	return s.memberRepo.DeleteByID(ctx, memberID)
}

// expand は貸出書籍IDを表示用の部分射影に展開する。
// 参照先が削除済みのIDはBook=nilのまま残す（参照切れは現状の仕様として露出する）。
func (s *Service) expand(ctx context.Context, member *model.Member) (*model.MemberWithBooks, error) {
	books, err := s.bookFinder.FindByIDs(ctx, member.BorrowedBookIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand borrowed books: %w", err)
	}

	borrowed := make([]model.BorrowedBook, 0, len(member.BorrowedBookIDs))
	for _, id := range member.BorrowedBookIDs {
		entry := model.BorrowedBook{BookID: id}
		if book, ok := books[id]; ok {
			entry.Book = &model.BorrowedBookInfo{
				Title:        book.Title,
				Author:       book.Author,
				ISBN:         book.ISBN,
				Availability: book.Availability,
			}
		}
		borrowed = append(borrowed, entry)
	}

	return &model.MemberWithBooks{Member: *member, BorrowedBooks: borrowed}, nil
}

// validateMember は会員入力のバリデーションを行う。
func validateMember(input CreateInput) []model.FieldError {
	var fields []model.FieldError

	if input.Name == "" {
		fields = append(fields, model.FieldError{Field: "name", Message: "name is required"})
	}
	if input.Email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		fields = append(fields, model.FieldError{Field: "email", Message: "email format is invalid"})
	}
	if input.MembershipID == "" {
		fields = append(fields, model.FieldError{Field: "membership_id", Message: "membership_id is required"})
	}
	if input.Role != "" && !input.Role.IsValid() {
		fields = append(fields, model.FieldError{Field: "role", Message: "role must be admin or member"})
	}

	return fields
}

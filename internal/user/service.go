// Package user はユーザー管理（管理者向け）のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/librarium/internal/model"
	"github.com/hitoshi/librarium/internal/repository"
)

// Service はユーザー管理のサービス層。
// ロール変更と削除は管理者専用で、自分自身を対象にできない。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// List は全ユーザーを返す。パスワードハッシュはJSONに含まれない。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateRole は指定ユーザーのロールを変更する。
// 呼び出し元自身を対象にした場合はForbiddenを返す。
// ロールはトークンではなくストアから毎リクエスト解決されるため、変更は即時に反映される。
func (s *Service) UpdateRole(ctx context.Context, callerID, targetID string, role model.Role) (*model.User, error) {
	if callerID == targetID {
		return nil, model.NewForbiddenError()
	}
	if !role.IsValid() {
		return nil, model.NewValidationError(model.FieldError{
			Field: "role", Message: "role must be admin or member",
		})
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}

	slog.Info("user role updated",
		slog.String("user_id", targetID),
		slog.String("role", string(role)),
		slog.String("updated_by", callerID),
	)

	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(targetID)
	}
	return user, nil
}

// Delete は指定ユーザーを削除する。
// 呼び出し元自身を対象にした場合はForbiddenを返す。
func (s *Service) Delete(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return model.NewForbiddenError()
	}

	if err := s.userRepo.DeleteByID(ctx, targetID); err != nil {
		return err
	}

	slog.Info("user deleted",
		slog.String("user_id", targetID),
		slog.String("deleted_by", callerID),
	)

	return nil
}

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/librarium/internal/model"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	listFn        func(ctx context.Context) ([]*model.User, error)
	updateRoleFn  func(ctx context.Context, id string, role model.Role) error
	deleteByIDFn  func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

// --- UpdateRole テスト ---

func TestService_UpdateRole_Success(t *testing.T) {
	updatedID := ""
	repo := &mockUserRepo{
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			updatedID = id
			if role != model.RoleAdmin {
				t.Errorf("role = %q, want %q", role, model.RoleAdmin)
			}
			return nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleAdmin}, nil
		},
	}
	svc := NewService(repo)

	user, err := svc.UpdateRole(context.Background(), "admin-1", "user-2", model.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}
	if updatedID != "user-2" {
		t.Errorf("updated ID = %q, want %q", updatedID, "user-2")
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", user.Role, model.RoleAdmin)
	}
}

func TestService_UpdateRole_SelfTargetForbidden(t *testing.T) {
	repo := &mockUserRepo{
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			t.Error("UpdateRole should not reach the repository for self-target")
			return nil
		},
	}
	svc := NewService(repo)

	_, err := svc.UpdateRole(context.Background(), "admin-1", "admin-1", model.RoleMember)
	assertForbidden(t, err)
}

func TestService_UpdateRole_InvalidRole(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	_, err := svc.UpdateRole(context.Background(), "admin-1", "user-2", "superuser")
	if err == nil {
		t.Fatal("UpdateRole() error = nil, want validation error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

// --- Delete テスト ---

func TestService_Delete_Success(t *testing.T) {
	deletedID := ""
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "admin-1", "user-2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deletedID != "user-2" {
		t.Errorf("deleted ID = %q, want %q", deletedID, "user-2")
	}
}

func TestService_Delete_SelfTargetForbidden(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Error("Delete should not reach the repository for self-target")
			return nil
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "admin-1", "admin-1")
	assertForbidden(t, err)
}

// assertForbidden は自分自身を対象とした操作が拒否されることを検証する。
func assertForbidden(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("error = nil, want forbidden error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeForbidden)
	}
}

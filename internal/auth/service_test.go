package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

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

// noopSanitizer はサニタイズを行わないテスト用実装。
type noopSanitizer struct{}

func (noopSanitizer) Sanitize(input string) string { return input }

func newTestService(repo *mockUserRepo) *Service {
	return NewService(
		repo,
		NewTokenManager([]byte("test-secret"), time.Hour),
		noopSanitizer{},
		ServiceConfig{BcryptCost: bcrypt.MinCost},
	)
}

// --- Register テスト ---

func TestService_Register_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Register(context.Background(), "山田太郎", "Taro@Example.COM", "password123", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if token == "" {
		t.Error("Register() should issue a token")
	}
	if user.Role != model.RoleMember {
		t.Errorf("role = %q, want default %q", user.Role, model.RoleMember)
	}
	if user.Email != "taro@example.com" {
		t.Errorf("email = %q, want lowercased %q", user.Email, "taro@example.com")
	}
	if created == nil {
		t.Fatal("Create() was not called")
	}
	if created.PasswordHash == "password123" {
		t.Error("password should be stored as a hash, not plaintext")
	}
	if !CheckPassword(created.PasswordHash, "password123") {
		t.Error("stored hash should verify against the original password")
	}
}

func TestService_Register_AdminRole(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	user, _, err := svc.Register(context.Background(), "admin", "admin@example.com", "password123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", user.Role, model.RoleAdmin)
	}
}

func TestService_Register_ValidationErrors(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     model.Role
		field    string
	}{
		{"名前が空", "", "a@example.com", "password123", "", "name"},
		{"メールが空", "user", "", "password123", "", "email"},
		{"メール形式不正", "user", "not-an-email", "password123", "", "email"},
		{"パスワードが短い", "user", "a@example.com", "12345", "", "password"},
		{"ロール不正", "user", "a@example.com", "password123", "superuser", "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password, tt.role)
			if err == nil {
				t.Fatal("Register() error = nil, want validation error")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error should be *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
			}

			found := false
			for _, f := range apiErr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("fields should contain %q, got %v", tt.field, apiErr.Fields)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return model.NewDuplicateKeyError("email")
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Register(context.Background(), "user", "dup@example.com", "password123", "")
	if err == nil {
		t.Fatal("Register() error = nil, want duplicate key error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateKey {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateKey)
	}
}

// --- Login テスト ---

func TestService_Login_Success(t *testing.T) {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "taro@example.com" {
				t.Errorf("email = %q, want lowercased %q", email, "taro@example.com")
			}
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash, Role: model.RoleMember}, nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Login(context.Background(), " Taro@Example.COM ", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if token == "" {
		t.Error("Login() should issue a token")
	}
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	assertInvalidCredentials(t, err)
}

func TestService_Login_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newTestService(repo)

	_, _, err = svc.Login(context.Background(), "taro@example.com", "wrong-password")
	assertInvalidCredentials(t, err)
}

// assertInvalidCredentials はユーザー不明とパスワード不一致が同一エラーであることを検証する。
func assertInvalidCredentials(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("Login() error = nil, want invalid credentials error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

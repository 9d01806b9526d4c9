package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/librarium/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error)
	loginFn    func(ctx context.Context, email, password string) (*model.User, string, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password, role)
	}
	return nil, "", nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, "", nil
}

// --- POST /auth/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error) {
			if name != "山田太郎" {
				t.Errorf("name = %q, want %q", name, "山田太郎")
			}
			if role != "" {
				t.Errorf("role = %q, want empty (defaulted by service)", role)
			}
			return &model.User{ID: "user-1", Name: name, Email: email, Role: model.RoleMember}, "signed-token", nil
		},
	}
	h := NewAuthHandler(svc)

	body := bytes.NewBufferString(`{"name":"山田太郎","email":"taro@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	result := assertSuccessEnvelope(t, w)
	data, ok := result["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data object in response")
	}
	if data["token"] != "signed-token" {
		t.Errorf("token = %v, want %q", data["token"], "signed-token")
	}

	user, ok := data["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user object in response data")
	}
	// パスワードハッシュはレスポンスに含まれない
	if _, exists := user["password_hash"]; exists {
		t.Error("response should not contain password_hash")
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{invalid"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	assertErrorEnvelope(t, w, model.ErrCodeValidation)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error) {
			return nil, "", model.NewDuplicateKeyError("email")
		},
	}
	h := NewAuthHandler(svc)

	body := bytes.NewBufferString(`{"name":"user","email":"dup@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	assertErrorEnvelope(t, w, model.ErrCodeDuplicateKey)
}

// --- POST /auth/login テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, string, error) {
			return &model.User{ID: "user-1", Email: email, Role: model.RoleMember}, "signed-token", nil
		},
	}
	h := NewAuthHandler(svc)

	body := bytes.NewBufferString(`{"email":"taro@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	assertSuccessEnvelope(t, w)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, string, error) {
			return nil, "", model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc)

	body := bytes.NewBufferString(`{"email":"taro@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	assertErrorEnvelope(t, w, model.ErrCodeInvalidCredentials)
}

// --- GET /auth/profile テスト ---

func TestAuthHandler_Profile_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req = withPrincipal(req, testMember)
	w := httptest.NewRecorder()

	h.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	result := assertSuccessEnvelope(t, w)
	data, ok := result["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data object in response")
	}
	if data["id"] != "member-1" {
		t.Errorf("id = %v, want %q", data["id"], "member-1")
	}
}

func TestAuthHandler_Profile_NoPrincipal(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	w := httptest.NewRecorder()

	h.Profile(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

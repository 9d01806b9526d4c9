package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/librarium/internal/model"
)

func TestClient_Login_EstablishesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/auth/login")
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["email"] != "taro@example.com" {
			t.Errorf("email = %q, want %q", body["email"], "taro@example.com")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "signed-token",
				"user":  map[string]any{"id": "user-1", "role": "member"},
			},
		})
	}))
	defer server.Close()

	sessions := NewSessionStore()
	c := NewClient(server.URL, sessions)

	user, err := c.Login(context.Background(), "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}

	session := sessions.Current()
	if session.Token != "signed-token" {
		t.Errorf("session token = %q, want %q", session.Token, "signed-token")
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer signed-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer signed-token")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []any{},
		})
	}))
	defer server.Close()

	sessions := NewSessionStore()
	sessions.Set("signed-token", &model.User{ID: "user-1"})
	c := NewClient(server.URL, sessions)

	if _, err := c.ListBooks(context.Background(), ""); err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
}

func TestClient_ErrorEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"code":    model.ErrCodeValidation,
			"message": "入力内容に誤りがあります。",
			"errors": []map[string]string{
				{"field": "title", "message": "title is required"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, NewSessionStore())

	_, err := c.SubmitBook(context.Background(), "", "", "", "")
	if err == nil {
		t.Fatal("SubmitBook() error = nil, want *model.APIError")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
	if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "title" {
		t.Errorf("fields = %v, want title field error", apiErr.Fields)
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"code":    model.ErrCodeTokenExpired,
			"message": "トークンの有効期限が切れています。",
		})
	}))
	defer server.Close()

	sessions := NewSessionStore()
	sessions.Set("expired-token", &model.User{ID: "user-1"})

	cleared := false
	sessions.Subscribe(func(s Session) {
		if !s.LoggedIn() {
			cleared = true
		}
	})

	c := NewClient(server.URL, sessions)

	_, err := c.Profile(context.Background())
	if err == nil {
		t.Fatal("Profile() error = nil, want error")
	}

	// 401を受けたらローカルセッションを破棄して購読者に通知する
	if sessions.Current().LoggedIn() {
		t.Error("session should be cleared after a 401 response")
	}
	if !cleared {
		t.Error("subscribers should be notified when the session is invalidated")
	}
}

func TestClient_Logout_ClearsLocalSession(t *testing.T) {
	sessions := NewSessionStore()
	sessions.Set("signed-token", &model.User{ID: "user-1"})

	c := NewClient("http://localhost:0", sessions)
	c.Logout()

	if sessions.Current().LoggedIn() {
		t.Error("session should be cleared after Logout")
	}
}

func TestClient_ListBooks_PassesStatusFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "pending" {
			t.Errorf("status query = %q, want %q", got, "pending")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []any{map[string]any{"id": "book-1", "approval_status": "pending"}},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, NewSessionStore())

	books, err := c.ListBooks(context.Background(), "pending")
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(books) != 1 || books[0].ID != "book-1" {
		t.Errorf("books = %v, want single book-1", books)
	}
}

func TestClient_CreateMember_SendsBareBookIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		// 貸出書籍はID文字列の配列で送る
		var ids []string
		if err := json.Unmarshal(body["borrowed_books"], &ids); err != nil {
			t.Fatalf("borrowed_books should be an array of strings: %v", err)
		}
		if len(ids) != 1 || ids[0] != "book-1" {
			t.Errorf("borrowed_books = %v, want [book-1]", ids)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "member-1"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, NewSessionStore())

	created, err := c.CreateMember(context.Background(), MemberInput{
		Name:          "田中花子",
		Email:         "hanako@example.com",
		MembershipID:  "M-0001",
		BorrowedBooks: []string{"book-1"},
	})
	if err != nil {
		t.Fatalf("CreateMember() error = %v", err)
	}
	if created.ID != "member-1" {
		t.Errorf("created.ID = %q, want %q", created.ID, "member-1")
	}
}

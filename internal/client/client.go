// Package client はAPIサーバーへのRESTクライアントとセッション管理を提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/librarium/internal/model"
)

// Client はAPIサーバーのRESTクライアント。
// セッションストアを注入して生成し、401応答を受けるとセッションを失効させる。
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *SessionStore
}

// NewClient はClientを生成する。
func NewClient(baseURL string, sessions *SessionStore) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sessions:   sessions,
	}
}

// Sessions はクライアントが使用するセッションストアを返す。
func (c *Client) Sessions() *SessionStore {
	return c.sessions
}

// envelope はAPIレスポンスの統一エンベロープ。
type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Message string             `json:"message"`
	Code    string             `json:"code"`
	Errors  []model.FieldError `json:"errors"`
}

// do はリクエストを送信し、成功エンベロープのdataをoutにデコードする。
// エラーエンベロープは*model.APIErrorとして返す。
// 401応答を受けた場合はセッションを失効させ、購読者に通知する。
func (c *Client) do(ctx context.Context, method, path string, body, out any) (string, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if session := c.sessions.Current(); session.LoggedIn() {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// トークン失効・ユーザー削除を検知したらセッションを破棄する
		c.sessions.Clear()
	}

	if !env.Success {
		return "", &model.APIError{
			Code:    env.Code,
			Message: env.Message,
			Fields:  env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return env.Message, nil
}

// --- 認証 ---

// authData は登録・ログイン応答のデータ部。
type authData struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register はユーザーを登録し、セッションを確立する。
func (c *Client) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	var data authData
	_, err := c.do(ctx, http.MethodPost, "/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	}, &data)
	if err != nil {
		return nil, err
	}

	c.sessions.Set(data.Token, data.User)
	return data.User, nil
}

// Login はログインし、セッションを確立する。
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var data authData
	_, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}

	c.sessions.Set(data.Token, data.User)
	return data.User, nil
}

// Logout はローカルのセッションを破棄する。
// トークンはステートレスなため、サーバー側の呼び出しは行わない。
func (c *Client) Logout() {
	c.sessions.Clear()
}

// Profile は認証済みプリンシパルの情報を取得する。
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- 書籍 ---

// ListBooks は書籍一覧を取得する。statusFilterは空文字列で全件（ロールに応じた範囲）。
func (c *Client) ListBooks(ctx context.Context, statusFilter string) ([]*model.Book, error) {
	path := "/books"
	if statusFilter != "" {
		path += "?status=" + statusFilter
	}

	var books []*model.Book
	if _, err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListPendingBooks は承認待ちの書籍一覧を取得する。管理者専用。
func (c *Client) ListPendingBooks(ctx context.Context) ([]*model.Book, error) {
	var books []*model.Book
	if _, err := c.do(ctx, http.MethodGet, "/books/pending", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook は書籍詳細を取得する。
func (c *Client) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, http.MethodGet, "/books/"+bookID, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// SubmitBook は書籍の登録を申請する。
func (c *Client) SubmitBook(ctx context.Context, title, author, isbn, category string) (*model.Book, error) {
	var book model.Book
	_, err := c.do(ctx, http.MethodPost, "/books", map[string]any{
		"title":    title,
		"author":   author,
		"isbn":     isbn,
		"category": category,
	}, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// BookUpdate は書籍更新のリクエスト。nilフィールドは変更しない。
type BookUpdate struct {
	Title        *string `json:"title,omitempty"`
	Author       *string `json:"author,omitempty"`
	ISBN         *string `json:"isbn,omitempty"`
	Category     *string `json:"category,omitempty"`
	Availability *bool   `json:"availability,omitempty"`
}

// UpdateBook は書籍情報を更新する。管理者専用。
func (c *Client) UpdateBook(ctx context.Context, bookID string, update BookUpdate) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, http.MethodPut, "/books/"+bookID, update, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook は書籍を削除する。管理者専用。
func (c *Client) DeleteBook(ctx context.Context, bookID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/books/"+bookID, nil, nil)
	return err
}

// ApproveBook は承認待ちの書籍を承認する。管理者専用。
func (c *Client) ApproveBook(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, http.MethodPut, "/books/"+bookID+"/approve", nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// RejectBook は承認待ちの書籍を却下する。管理者専用。
func (c *Client) RejectBook(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, http.MethodPut, "/books/"+bookID+"/reject", nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// --- 会員 ---

// MemberInput は会員作成・更新のリクエスト。
type MemberInput struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	MembershipID  string     `json:"membership_id"`
	Role          model.Role `json:"role,omitempty"`
	BorrowedBooks []string   `json:"borrowed_books"`
}

// ListMembers は会員一覧を取得する。
func (c *Client) ListMembers(ctx context.Context) ([]*model.MemberWithBooks, error) {
	var members []*model.MemberWithBooks
	if _, err := c.do(ctx, http.MethodGet, "/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember は会員詳細を取得する。
func (c *Client) GetMember(ctx context.Context, memberID string) (*model.MemberWithBooks, error) {
	var member model.MemberWithBooks
	if _, err := c.do(ctx, http.MethodGet, "/members/"+memberID, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// CreateMember は会員を作成する。管理者専用。
func (c *Client) CreateMember(ctx context.Context, input MemberInput) (*model.MemberWithBooks, error) {
	if input.BorrowedBooks == nil {
		input.BorrowedBooks = []string{}
	}

	var member model.MemberWithBooks
	if _, err := c.do(ctx, http.MethodPost, "/members", input, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMember は会員情報を更新する。管理者専用。
func (c *Client) UpdateMember(ctx context.Context, memberID string, input MemberInput) (*model.MemberWithBooks, error) {
	if input.BorrowedBooks == nil {
		input.BorrowedBooks = []string{}
	}

	var member model.MemberWithBooks
	if _, err := c.do(ctx, http.MethodPut, "/members/"+memberID, input, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// DeleteMember は会員を削除する。管理者専用。
func (c *Client) DeleteMember(ctx context.Context, memberID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/members/"+memberID, nil, nil)
	return err
}

// --- ユーザー管理 ---

// ListUsers は全ユーザーの一覧を取得する。管理者専用。
func (c *Client) ListUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if _, err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole はユーザーのロールを変更する。管理者専用。
func (c *Client) UpdateUserRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	var user model.User
	_, err := c.do(ctx, http.MethodPut, "/users/"+userID+"/role", map[string]any{
		"role": role,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser はユーザーを削除する。管理者専用。
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+userID, nil, nil)
	return err
}

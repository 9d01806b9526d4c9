package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/librarium/internal/member"
	"github.com/hitoshi/librarium/internal/middleware"
	"github.com/hitoshi/librarium/internal/model"
)

// MemberServiceInterface は会員ハンドラーが必要とするサービスインターフェース。
type MemberServiceInterface interface {
	// Create は会員を作成する。
	Create(ctx context.Context, input member.CreateInput) (*model.MemberWithBooks, error)
	// List は全会員を貸出書籍の展開付きで返す。
	List(ctx context.Context) ([]*model.MemberWithBooks, error)
	// Get は指定IDの会員を貸出書籍の展開付きで返す。
	Get(ctx context.Context, memberID string) (*model.MemberWithBooks, error)
	// Update は会員情報を更新する。
	Update(ctx context.Context, memberID string, input member.UpdateInput) (*model.MemberWithBooks, error)
	// Delete は会員を削除する。
	Delete(ctx context.Context, memberID string) error
}

// MemberHandler は会員管理のHTTPハンドラー。
type MemberHandler struct {
	service MemberServiceInterface
}

// NewMemberHandler はMemberHandlerを生成する。
func NewMemberHandler(service MemberServiceInterface) *MemberHandler {
	return &MemberHandler{service: service}
}

// createMemberRequest は会員作成リクエストのボディ。
// borrowed_booksは書籍ID文字列の配列のみを受け付ける。
type createMemberRequest struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	MembershipID  string            `json:"membership_id"`
	Role          model.Role        `json:"role"`
	BorrowedBooks []json.RawMessage `json:"borrowed_books"`
}

// updateMemberRequest は会員更新リクエストのボディ。省略されたフィールドは変更しない。
type updateMemberRequest struct {
	Name          *string            `json:"name"`
	Email         *string            `json:"email"`
	MembershipID  *string            `json:"membership_id"`
	Role          *model.Role        `json:"role"`
	BorrowedBooks *[]json.RawMessage `json:"borrowed_books"`
}

// decodeBorrowedBookIDs はborrowed_books配列を書籍ID列にデコードする。
// 展開済みオブジェクトなどID文字列以外の要素はバリデーションエラーとして拒否する。
// 書き込み時は常にIDのみを受け付け、展開はリードパスでのみ行う。
func decodeBorrowedBookIDs(raw []json.RawMessage) ([]string, *model.APIError) {
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		var id string
		if err := json.Unmarshal(entry, &id); err != nil {
			return nil, model.NewValidationError(model.FieldError{
				Field: "borrowed_books", Message: "borrowed_books must be an array of book ID strings",
			})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create は会員の作成を処理する。管理者専用。
// POST /members
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSONError(w)
		return
	}

	ids, apiErr := decodeBorrowedBookIDs(req.BorrowedBooks)
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), member.CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		MembershipID:    req.MembershipID,
		Role:            req.Role,
		BorrowedBookIDs: ids,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, "会員を登録しました。")
}

// List は会員一覧を返す。
// GET /members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, members, "")
}

// Get は会員詳細を返す。
// GET /members/:id
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, found, "")
}

// Update は会員情報を更新する。管理者専用。
// PUT /members/:id
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSONError(w)
		return
	}

	input := member.UpdateInput{
		Name:         req.Name,
		Email:        req.Email,
		MembershipID: req.MembershipID,
		Role:         req.Role,
	}
	if req.BorrowedBooks != nil {
		ids, apiErr := decodeBorrowedBookIDs(*req.BorrowedBooks)
		if apiErr != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		input.BorrowedBookIDs = &ids
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, "会員情報を更新しました。")
}

// Delete は会員を削除する。管理者専用。
// DELETE /members/:id
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "会員を削除しました。")
}

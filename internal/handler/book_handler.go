package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/librarium/internal/book"
	"github.com/hitoshi/librarium/internal/middleware"
	"github.com/hitoshi/librarium/internal/model"
)

// BookServiceInterface は書籍ハンドラーが必要とするサービスインターフェース。
type BookServiceInterface interface {
	// Submit は書籍の登録を申請する。承認状態は常にpendingで作成される。
	Submit(ctx context.Context, requesterID string, input book.SubmitInput) (*model.Book, error)
	// List はロールに基づいてフィルタした書籍一覧を返す。
	List(ctx context.Context, caller *model.User, statusFilter string) ([]*model.Book, error)
	// ListPending は承認待ちの書籍一覧を返す。
	ListPending(ctx context.Context) ([]*model.Book, error)
	// Get は指定IDの書籍を取得する。
	Get(ctx context.Context, caller *model.User, bookID string) (*model.Book, error)
	// Update は書籍情報を更新する。
	Update(ctx context.Context, bookID string, input book.UpdateInput) (*model.Book, error)
	// Delete は書籍を削除する。
	Delete(ctx context.Context, bookID string) error
	// Approve は承認待ちの書籍を承認する。
	Approve(ctx context.Context, bookID, reviewerID string) (*model.Book, error)
	// Reject は承認待ちの書籍を却下する。
	Reject(ctx context.Context, bookID, reviewerID string) (*model.Book, error)
}

// BookHandler は書籍カタログと承認ワークフローのHTTPハンドラー。
type BookHandler struct {
	service BookServiceInterface
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service BookServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

// submitBookRequest は書籍登録申請リクエストのボディ。
type submitBookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

// updateBookRequest は書籍更新リクエストのボディ。省略されたフィールドは変更しない。
type updateBookRequest struct {
	Title        *string `json:"title"`
	Author       *string `json:"author"`
	ISBN         *string `json:"isbn"`
	Category     *string `json:"category"`
	Availability *bool   `json:"availability"`
}

// Submit は書籍の登録申請を処理する。
// POST /books
func (h *BookHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req submitBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSONError(w)
		return
	}

	created, err := h.service.Submit(r.Context(), principal.ID, book.SubmitInput{
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Category: req.Category,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, "書籍の登録を申請しました。承認をお待ちください。")
}

// List は書籍一覧を返す。非管理者には承認済みのみ、管理者には全件を返す。
// GET /books?status=pending|approved|rejected
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	books, err := h.service.List(r.Context(), principal, r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, books, "")
}

// ListPending は承認待ちの書籍一覧を返す。管理者専用。
// GET /books/pending
func (h *BookHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListPending(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, books, "")
}

// Get は書籍詳細を返す。
// GET /books/:id
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	found, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, found, "")
}

// Update は書籍情報を更新する。管理者専用。
// PUT /books/:id
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSONError(w)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), book.UpdateInput{
		Title:        req.Title,
		Author:       req.Author,
		ISBN:         req.ISBN,
		Category:     req.Category,
		Availability: req.Availability,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, "書籍情報を更新しました。")
}

// Delete は書籍を削除する。管理者専用。
// DELETE /books/:id
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "書籍を削除しました。")
}

// Approve は承認待ちの書籍を承認する。管理者専用。
// PUT /books/:id/approve
func (h *BookHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve, "書籍を承認しました。")
}

// Reject は承認待ちの書籍を却下する。管理者専用。
// PUT /books/:id/reject
func (h *BookHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject, "書籍を却下しました。")
}

// decide は承認・却下に共通する決定処理を行う。
func (h *BookHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, bookID, reviewerID string) (*model.Book, error),
	message string,
) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	decided, err := op(r.Context(), chi.URLParam(r, "id"), principal.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, decided, message)
}

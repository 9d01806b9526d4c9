// Package model はドメインモデルを定義する。
package model

import "fmt"

// FieldError はバリデーションエラーのフィールド単位の詳細を表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError は統一エラーフォーマットを表す。
// ハンドラー層でHTTPステータスコードにマッピングされる。
type APIError struct {
	Code    string       // エラーコード
	Message string       // エラーメッセージ
	Fields  []FieldError // バリデーションエラーの詳細（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDuplicateKey       = "DUPLICATE_KEY"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyDecided     = "ALREADY_DECIDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(fields ...FieldError) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "入力内容に誤りがあります。",
		Fields:  fields,
	}
}

// NewDuplicateKeyError は一意制約違反エラーを生成する。
// fieldには違反したフィールド名（email, isbn, membership_id）を指定する。
func NewDuplicateKeyError(field string) *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateKey,
		Message: fmt.Sprintf("この%sは既に登録されています。", field),
		Fields:  []FieldError{{Field: field, Message: "already exists"}},
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不明とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewUnauthenticatedError はトークン欠落・不正エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "認証が必要です。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
// 不正トークンとは区別したコードを返す。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenExpired,
		Message: "トークンの有効期限が切れています。再度ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: "この操作を実行する権限がありません。",
	}
}

// NewBookNotFoundError は書籍未検出エラーを生成する。
func NewBookNotFoundError(bookID string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("指定された書籍が見つかりません: %s", bookID),
	}
}

// NewMemberNotFoundError は会員未検出エラーを生成する。
func NewMemberNotFoundError(memberID string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("指定された会員が見つかりません: %s", memberID),
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
	}
}

// NewAlreadyDecidedError は決定済み書籍への再遷移エラーを生成する。
func NewAlreadyDecidedError(bookID string, status ApprovalStatus) *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyDecided,
		Message: fmt.Sprintf("この書籍は既に決定済みです（現在の状態: %s）。", status),
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "内部エラーが発生しました。しばらく待ってから再度お試しください。",
	}
}

package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/librarium/internal/model"
)

func TestTranslateError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantField  string
	}{
		{name: "ユーザーのメールアドレス重複", constraint: "users_email_key", wantField: "email"},
		{name: "ISBN重複", constraint: "books_isbn_key", wantField: "isbn"},
		{name: "会員のメールアドレス重複", constraint: "members_email_key", wantField: "email"},
		{name: "会員番号重複", constraint: "members_membership_id_key", wantField: "membership_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *model.APIError", err)
			}
			if apiErr.Code != model.ErrCodeDuplicateKey {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateKey)
			}
			if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != tt.wantField {
				t.Errorf("fields = %v, want field %q", apiErr.Fields, tt.wantField)
			}
		})
	}
}

func TestTranslateError_UnknownConstraintPassesThrough(t *testing.T) {
	original := &pq.Error{Code: uniqueViolation, Constraint: "unknown_constraint"}

	err := translateError(original)
	if !errors.Is(err, original) {
		t.Errorf("translateError() = %v, want original error", err)
	}
}

func TestTranslateError_OtherErrorsPassThrough(t *testing.T) {
	original := errors.New("connection refused")

	err := translateError(original)
	if !errors.Is(err, original) {
		t.Errorf("translateError() = %v, want original error", err)
	}
}

func TestTranslateError_Nil(t *testing.T) {
	if err := translateError(nil); err != nil {
		t.Errorf("translateError(nil) = %v, want nil", err)
	}
}

package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/librarium/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATEコード。
const uniqueViolation = "23505"

// constraintFields は一意制約名からAPIエラーで報告するフィールド名へのマッピング。
var constraintFields = map[string]string{
	"users_email_key":           "email",
	"books_isbn_key":            "isbn",
	"members_email_key":         "email",
	"members_membership_id_key": "membership_id",
}

// translateError は一意制約違反をDuplicateKeyのAPIErrorに変換する。
// それ以外のエラーはそのまま返す。
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if field, ok := constraintFields[pqErr.Constraint]; ok {
			return model.NewDuplicateKeyError(field)
		}
	}

	return err
}

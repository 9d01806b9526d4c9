package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/librarium/internal/model"
)

// Claims はJWTのクレーム構造。標準クレームにユーザーIDを追加する。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenManager は署名付きセッショントークンの発行と検証を行う。
// トークンは固定の有効期間（デフォルト30日）を持つ。
type TokenManager struct {
	secret   []byte
	validity time.Duration
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret []byte, validity time.Duration) *TokenManager {
	return &TokenManager{secret: secret, validity: validity}
}

// Issue は指定ユーザーIDのHS256署名トークンを発行する。
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		UserID: userID,
	})

	return token.SignedString(m.secret)
}

// Verify はトークンを検証してユーザーIDを返す。
// 期限切れと不正トークンは区別したエラーを返す。検証失敗はリクエストに対して終端的。
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.NewTokenExpiredError()
		}
		return "", model.NewUnauthenticatedError()
	}

	if !token.Valid || claims.UserID == "" {
		return "", model.NewUnauthenticatedError()
	}

	return claims.UserID, nil
}

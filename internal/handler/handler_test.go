package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/librarium/internal/middleware"
	"github.com/hitoshi/librarium/internal/model"
)

// --- テストヘルパー ---

// withPrincipal はテスト用に認証済みプリンシパルをコンテキストに注入するヘルパー。
func withPrincipal(r *http.Request, user *model.User) *http.Request {
	ctx := middleware.ContextWithPrincipal(r.Context(), user)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// testAdmin / testMember はテストで共有するプリンシパル。
var (
	testAdmin  = &model.User{ID: "admin-1", Name: "管理者", Role: model.RoleAdmin}
	testMember = &model.User{ID: "member-1", Name: "会員", Role: model.RoleMember}
)

// parseEnvelope はレスポンスボディから統一エンベロープをパースするヘルパー。
func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

// assertSuccessEnvelope はsuccess=trueのエンベロープであることを検証する。
func assertSuccessEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	result := parseEnvelope(t, w)
	if success, _ := result["success"].(bool); !success {
		t.Errorf("success = %v, want true (body: %v)", result["success"], result)
	}
	return result
}

// assertErrorEnvelope はsuccess=falseかつ指定コードのエンベロープであることを検証する。
func assertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantCode string) {
	t.Helper()

	result := parseEnvelope(t, w)
	if success, _ := result["success"].(bool); success {
		t.Errorf("success = true, want false (body: %v)", result)
	}
	if code, _ := result["code"].(string); code != wantCode {
		t.Errorf("code = %q, want %q", code, wantCode)
	}
}

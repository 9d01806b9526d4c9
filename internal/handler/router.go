package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/librarium/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	// MetricsRecorder はnil可（記録しない）。
	MetricsRecorder middleware.RequestRecorder
	Logger          *slog.Logger

	// ヘルスチェック
	DB Pinger

	// サービス
	AuthService   AuthServiceInterface
	BookService   BookServiceInterface
	MemberService MemberServiceInterface
	UserService   UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Logging → Metrics → (Auth → RateLimit(General))
//
// 認証不要のルート（/health、/auth/register、/auth/login）は認証ミドルウェアの外に
// 配置し、登録・ログインにはIP単位の専用レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	bookHandler := NewBookHandler(deps.BookService)
	memberHandler := NewMemberHandler(deps.MemberService)
	userHandler := NewUserHandler(deps.UserService)
	healthHandler := NewHealthHandler(deps.DB)

	authMiddleware := middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder)
	requireAdmin := middleware.NewRequireAdminMiddleware()

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	// 登録・ログインにはブルートフォース対策のIP単位レート制限を適用
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/profile", authHandler.Profile)

		// 書籍カタログと承認ワークフロー
		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Post("/", bookHandler.Submit)
			r.With(requireAdmin).Get("/pending", bookHandler.ListPending)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookHandler.Get)

				// 管理者専用の編集・削除・承認決定
				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Put("/", bookHandler.Update)
					r.Delete("/", bookHandler.Delete)
					r.Put("/approve", bookHandler.Approve)
					r.Put("/reject", bookHandler.Reject)
				})
			})
		})

		// 会員管理（参照は全認証ユーザー、書き込みは管理者専用）
		r.Route("/members", func(r chi.Router) {
			r.Get("/", memberHandler.List)
			r.With(requireAdmin).Post("/", memberHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", memberHandler.Get)
				r.With(requireAdmin).Put("/", memberHandler.Update)
				r.With(requireAdmin).Delete("/", memberHandler.Delete)
			})
		})

		// ユーザー管理（管理者専用）
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", userHandler.List)
			r.Put("/{id}/role", userHandler.UpdateRole)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}

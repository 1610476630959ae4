package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/middleware"
)

// HealthChecker はヘルスチェックのためのDB疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Cookie            *auth.SessionCookie
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// ヘルスチェック・メトリクス公開
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ドメインサービス
	AuthService        AuthServiceInterface
	AuthMetrics        AuthMetricsRecorder
	ApplicationService ApplicationServiceInterface
	ContactService     ContactServiceInterface
	InterviewService   InterviewServiceInterface
	DashboardService   DashboardServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → Auth → CSRF → RateLimit
//
// 認証ルート（/auth/*）とヘルスチェックは認証ミドルウェアの外に配置する。
// /auth/meはCookieのトークンをハンドラー内で独立に検証する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookie, deps.AuthMetrics)
	appHandler := NewApplicationHandler(deps.ApplicationService)
	contactHandler := NewContactHandler(deps.ContactService)
	interviewHandler := NewInterviewHandler(deps.InterviewService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → CSRF → RateLimit(General) → RateLimit(Mutation)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Cookie, deps.TokenVerifier, deps.UserFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.MutationMiddleware())
		}

		// 応募管理
		r.Route("/api/applications", func(r chi.Router) {
			r.Get("/", appHandler.List)
			r.Post("/", appHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", appHandler.Get)
				r.Put("/", appHandler.Update)
				r.Delete("/", appHandler.Delete)

				// GET /api/applications/{id}/history - ステータス履歴
				r.Get("/history", appHandler.History)

				// 連絡先・面接は応募にネストして作成・一覧する
				r.Get("/contacts", contactHandler.List)
				r.Post("/contacts", contactHandler.Create)
				r.Get("/interviews", interviewHandler.List)
				r.Post("/interviews", interviewHandler.Create)
			})
		})

		// 連絡先の更新・削除はトップレベルのIDで行う
		r.Route("/api/contacts/{contactId}", func(r chi.Router) {
			r.Put("/", contactHandler.Update)
			r.Delete("/", contactHandler.Delete)
		})

		// 面接の更新・削除はトップレベルのIDで行う
		r.Route("/api/interviews/{interviewId}", func(r chi.Router) {
			r.Put("/", interviewHandler.Update)
			r.Delete("/", interviewHandler.Delete)
		})

		// ダッシュボード
		r.Get("/api/dashboard/stats", dashboardHandler.GetStats)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

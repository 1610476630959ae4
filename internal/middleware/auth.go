// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder はユーザー行の存在確認に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewAuthMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 署名と有効期限を検証するミドルウェア（リクエストゲート）を返す。
// 検証に成功したユーザーIDでユーザー行を引き、アカウントが現存することを
// 確認したうえでユーザーIDをリクエストコンテキストに注入する。
// トークンが有効でもアカウントが削除済みなら未認証として扱う。
// 行の所有権は各ハンドラーがユーザーIDで独立に検証する。
//
// 未認証リクエストへの応答はルート種別で分岐する:
//   - APIルート（/api/で始まるパス）は401を返す。失敗理由は本文に含めない。
//   - それ以外（ページルート）は/loginへリダイレクトする。
func NewAuthMiddleware(cookie *auth.SessionCookie, verifier TokenVerifier, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからトークンを取得
			token, ok := cookie.Read(r)
			if !ok {
				rejectUnauthenticated(w, r)
				return
			}

			// 2. トークンの署名と有効期限を検証
			userID, err := verifier.Verify(token)
			if err != nil {
				// 期限切れか改ざんかは応答で区別しない（内部ログのみ）
				slog.Warn("token verification failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				rejectUnauthenticated(w, r)
				return
			}

			// 3. アカウントが現存することを確認（参照エラー時は閉じる側に倒す）
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Warn("user lookup failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				rejectUnauthenticated(w, r)
				return
			}
			if user == nil {
				slog.Warn("token refers to deleted account",
					slog.String("path", r.URL.Path),
				)
				rejectUnauthenticated(w, r)
				return
			}

			// 4. 認証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthenticated は未認証リクエストへの応答をルート種別で分岐する。
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeUnauthorizedResponse(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、セッショントークンを発行する。
	Register(ctx context.Context, input auth.RegisterInput) (*model.User, string, error)
	// Login は認証情報を照合し、セッショントークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	// CurrentUser はトークンから現在のユーザーを解決する。無効なトークンはnilを返す。
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// AuthMetricsRecorder は認証イベントのメトリクス記録インターフェース。
type AuthMetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRegistration()
}

// AuthHandler は登録・ログイン・ログアウト・カレントユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookie  *auth.SessionCookie
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
// metricsはnilを許容する（テスト用）。
func NewAuthHandler(service AuthServiceInterface, cookie *auth.SessionCookie, metrics AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		metrics: metrics,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュは決して含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Register はユーザー登録を処理する。
// POST /auth/register
// 成功時は201でユーザー情報を返し、セッションCookieを設定する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, token, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	h.cookie.Attach(w, token)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Login はログインを処理する。
// POST /auth/login
// メールアドレス不明とパスワード誤りは同一の401を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	h.cookie.Attach(w, token)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Logout はログアウトを処理する。
// POST /auth/logout
// サーバー側に破棄する状態はなく、Cookieの削除のみを行う。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のユーザー情報を返す。
// GET /auth/me
// Cookieのトークンを独立に検証する。無効・欠落・ユーザー不在はすべて同一の401。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, _ := h.cookie.Read(r)

	user, err := h.service.CurrentUser(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

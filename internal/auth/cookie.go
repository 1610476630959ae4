package auth

import (
	"net/http"
	"time"
)

// TokenCookieName はセッショントークンを保持するCookieの名前。
const TokenCookieName = "token"

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// SessionCookie はセッショントークンのCookie入出力を担う境界アダプタ。
// トークンの中身は一切解釈しない。
// HttpOnly・SameSite=Lax・ルートパスの属性は固定とする。
type SessionCookie struct {
	config CookieConfig
}

// NewSessionCookie はSessionCookieを生成する。
func NewSessionCookie(config CookieConfig) *SessionCookie {
	return &SessionCookie{config: config}
}

// Attach はレスポンスにセッションCookieを設定する。
func (c *SessionCookie) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   int(c.config.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read はリクエストからセッショントークンを取り出す。
// Cookieが存在しない、または空の場合はfalseを返す。
func (c *SessionCookie) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Clear はレスポンスでセッションCookieを削除する。
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
